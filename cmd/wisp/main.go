package main

import (
	"os"

	"github.com/jvcmarcenes/wisp/cmd/wisp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
