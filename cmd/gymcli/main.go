package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gymhub/gymclient/internal/client/cli"
	"github.com/gymhub/gymclient/internal/client/config"
	"github.com/gymhub/gymclient/internal/logging"
)

func main() {

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
