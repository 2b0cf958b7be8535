package main

import (
	"context"
	"log"
	"os"

	"github.com/tickerlens/tickerlens/internal/buildinfo"
	"github.com/tickerlens/tickerlens/internal/client/cli"
	"github.com/tickerlens/tickerlens/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
