package main

import (
	"context"
	"log"

	"github.com/orgvault/orgvault/internal/app"
	"github.com/orgvault/orgvault/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer a.Close()

	if err := a.RunWithTimeout(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
