/*
 * @date: 2026.10.14
 * @description: 主程序入口
 * @func: 子命令见 root.go
 */

package main

func main() {
	Execute()
}
