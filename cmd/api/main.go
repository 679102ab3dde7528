package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"vvengine/internal"
	"vvengine/internal/api"
	"vvengine/internal/config"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	server := api.NewServer(logger)
	addr := ":" + cfg.Server.Port
	logger.Info("decision engine API listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}
