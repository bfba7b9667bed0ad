package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/visitorhub/internal/client/cli"
	"github.com/dmitrijs2005/visitorhub/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, cli.CommandArgs(os.Args[1:])); err != nil {
		stop()
		log.Fatalf("%v", err)
	}

}
