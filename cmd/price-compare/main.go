// Package main is the entry point for the price-compare BFF server.
package main

import (
	"os"

	"github.com/donaldgifford/price-compare/cmd/price-compare/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
