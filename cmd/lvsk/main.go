package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/draytht/lvsk-calendar-extended/internal/cli"
)

func main() {
	// Load a .env file if present; absence is fine.
	_ = godotenv.Load()

	if err := cli.New().Run(os.Args); err != nil {
		slog.Error("lvsk failed", "error", err)
		os.Exit(1)
	}
}
