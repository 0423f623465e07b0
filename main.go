package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/insightdelivered/payment-advice-converter/cmd"
	"github.com/insightdelivered/payment-advice-converter/internal/logger"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	// Until the config is read, log with defaults.
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cmd.Execute()
}
