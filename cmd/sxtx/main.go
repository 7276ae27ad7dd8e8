package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.ExecuteMain(ctx)
	stop()
	os.Exit(code)
}
