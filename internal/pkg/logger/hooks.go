package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/danielolaviobr/ubio/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logFileNames 日志类型与文件名的对应关系
var logFileNames = map[LogType]string{
	AccessLog:   "access.log",
	BusinessLog: "business.log",
	ErrorLog:    "error.log",
	SystemLog:   "system.log",
	SweepLog:    "sweep.log",
}

// FileHook 按 type 字段把日志写入不同文件，文件由 lumberjack 负责滚动
type FileHook struct {
	logConfig *config.LogConfig
	writers   map[string]io.Writer
	formatter logrus.Formatter
	mutex     sync.Mutex
}

// NewFileHook 创建一个新的FileHook实例
func NewFileHook(logConfig *config.LogConfig) *FileHook {
	hook := &FileHook{
		logConfig: logConfig,
		writers:   make(map[string]io.Writer),
		formatter: &logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		},
	}

	if logConfig.FilePath != "" {
		_ = os.MkdirAll(filepath.Dir(logConfig.FilePath), 0755)
		hook.writers["default"] = hook.newRotatingWriter(logConfig.FilePath)
	}

	return hook
}

// Levels 返回此Hook关心的所有日志级别
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 在日志触发时执行
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	logType := "default"
	if lt, ok := entry.Data["type"]; ok {
		switch t := lt.(type) {
		case LogType:
			logType = string(t)
		case string:
			logType = t
		}
	}

	formatted, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	writer := hook.getWriter(logType)
	if writer == nil {
		return nil
	}
	_, err = writer.Write(formatted)
	return err
}

// getWriter 获取指定类型的writer，如果不存在则创建，调用方需持有锁
func (hook *FileHook) getWriter(logType string) io.Writer {
	if writer, exists := hook.writers[logType]; exists {
		return writer
	}

	name, known := logFileNames[LogType(logType)]
	if !known || hook.logConfig.FilePath == "" {
		return hook.writers["default"]
	}

	filename := filepath.Join(filepath.Dir(hook.logConfig.FilePath), name)
	writer := hook.newRotatingWriter(filename)
	hook.writers[logType] = writer
	return writer
}

// newRotatingWriter 创建lumberjack滚动写入器
func (hook *FileHook) newRotatingWriter(filename string) io.Writer {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    hook.logConfig.MaxSize,
		MaxBackups: hook.logConfig.MaxBackups,
		MaxAge:     hook.logConfig.MaxAge,
		Compress:   hook.logConfig.Compress,
	}
}
