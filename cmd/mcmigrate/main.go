// Package main is the entry point for the mcmigrate CLI binary.
package main

import (
	"os"

	cli "mcmigrate/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
