// Package main is the Glassroot CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/glassroot/glassroot/internal/cli"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		cli.RenderError(os.Stderr, err)
		os.Exit(1)
	}
}
