package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgellow/mailfold/internal/cli"
)

var BuildVersion = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Stdin:   os.Stdin,
		Version: BuildVersion,
	}

	code := app.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
