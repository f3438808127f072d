package main

import (
	"github.com/joho/godotenv"

	"coachlab/internal/cli"
)

func main() {
	// Optional .env with COACHLAB_* overrides
	_ = godotenv.Load()

	cli.Execute()
}
