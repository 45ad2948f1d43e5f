package main

import (
	"context"
	"flag"
	"log"

	"github.com/viralforge/view-reward-engine/internal/app/bootstrap"
)

func main() {
	configPath := flag.String("config", "configs/default.yaml", "path to the service config file")
	flag.Parse()

	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, *configPath)
	if err != nil {
		log.Fatalf("bootstrap reward engine: %v", err)
	}
	if err := runtime.RunAPI(ctx); err != nil {
		log.Fatalf("run reward engine: %v", err)
	}
}
