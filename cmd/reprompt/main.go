package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env 是可选的：只用于填充 REPROMPT_* 环境变量。
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "错误：%v\n", err)
		os.Exit(2)
	}
}

// exitError 携带进程退出码：1 表示提取失败，2 表示参数/配置错误。
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
