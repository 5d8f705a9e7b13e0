// Package main is the entry point for the pcmp CLI.
package main

import "github.com/donaldgifford/price-compare/cmd/pcmp/cmd"

func main() {
	cmd.Execute()
}
