package main

import (
	"github.com/joho/godotenv"

	"github.com/hundredx/go100x/internal/cli"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()
	cli.Execute()
}
