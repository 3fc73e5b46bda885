package main

import (
	"log"

	"github.com/fixedgearperm/market-bot/internal/app"
	"github.com/fixedgearperm/market-bot/internal/app/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	application.Run()
}
