// Package main is the entry point for the fshift CLI tool.
package main

import (
	"os"

	"github.com/fieldshift/fieldshift/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
