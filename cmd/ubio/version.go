package main

import (
	"github.com/danielolaviobr/ubio/internal/pkg/version"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Long:  "显示 ubio 的版本信息，包括版本号、构建时间、Git 提交和 Go 版本。",
	Run: func(cmd *cobra.Command, args []string) {
		pterm.Printfln("ubio %s", version.GetVersion())
		pterm.Printfln("API Version: %s", version.APIVersion)
		pterm.Printfln("Build Time: %s", version.BuildTime)
		pterm.Printfln("Git Commit: %s", version.GitCommit)
		pterm.Printfln("Go Version: %s", version.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
