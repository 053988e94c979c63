// Package main provides the entry point for the credcascade CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/credcascade/cmd/credcascade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
