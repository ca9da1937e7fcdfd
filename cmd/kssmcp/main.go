// Package main provides the entry point for the kssmcp CLI.
package main

import (
	"os"

	"github.com/dshills/kss-mcp/cmd/kssmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
