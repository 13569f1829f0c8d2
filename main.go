package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const AppVersion = "1.0.0"

func main() {
	// 中断信号处理，取消后正在进行的发现和请求会尽快返回
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(sigCtx)
	closeLogWriter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
