// Package main is the entry point for the cmdbox CLI.
package main

import (
	"os"

	"github.com/runger/cmdbox/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
