package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"mortgage-triage-go/internal/cli"
	"mortgage-triage-go/internal/config"
	"mortgage-triage-go/internal/logger"
)

func main() {
	config.LoadEnv()

	log := logger.NewWithOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args[1:], os.Stdout, log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.WithError(err).Error("triage failed")
		stop()
		os.Exit(1)
	}
}
