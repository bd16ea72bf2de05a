// Package main is the entry point for the xatag CLI tool.
package main

import (
	"os"

	"github.com/ohspite/xatag/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
