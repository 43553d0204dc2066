package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TEENet-io/devchain/cmd"
	logger "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		logger.WithError(err).Error("devnet command failed")
		stop()
		os.Exit(1)
	}
}
