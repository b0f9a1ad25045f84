// Package version 版本信息，BuildTime/GitCommit/GoVersion 在构建时通过 -ldflags 注入
//
//	go build -ldflags "-X github.com/danielolaviobr/ubio/internal/pkg/version.GitCommit=$(git rev-parse --short HEAD)"
package version

var (
	Version    = "0.3.0" // 版本号 -- 发布时候更新版本号
	APIVersion = "v1"
	BuildTime  string
	GitCommit  string
	GoVersion  string
)

func GetVersion() string {
	return Version
}

// GetUserAgent NATS 连接名等场景使用的客户端标识
func GetUserAgent() string {
	return "ubio/" + Version
}
