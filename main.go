// ABOUTME: Entry point for examctl CLI
// ABOUTME: Command-line and terminal client for the online exam platform

package main

import (
	"os"

	"github.com/waynezhang680/examctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
