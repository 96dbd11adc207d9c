// Package main provides the entry point for the wfkit CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/wfkit/cmd/wfkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
