package logger

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronLogger 把 cron 的内部日志(调度、跳过、panic 恢复)接入 logrus
type CronLogger struct{}

var _ cron.Logger = CronLogger{}

// Info cron 调度信息，降级为 debug 避免每次触发都刷屏
func (CronLogger) Info(msg string, keysAndValues ...interface{}) {
	WithFields(cronFields(keysAndValues)).Debug("cron: " + msg)
}

// Error cron 任务错误(包括 Recover 捕获的 panic)
func (CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cronFields(keysAndValues)
	fields["error"] = err
	WithFields(fields).Error("cron: " + msg)
}

// cronFields 把 k1,v1,k2,v2 形式的参数转换为 logrus.Fields
func cronFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{"type": SweepLog}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
