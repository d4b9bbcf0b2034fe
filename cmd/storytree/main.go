// Package main provides the entry point for the storytree CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/storytree/cmd/storytree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
