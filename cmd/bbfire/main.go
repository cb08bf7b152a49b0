package main

import (
	"os"

	"github.com/bbfire/builders/cmd/bbfire/root"
)

func main() {
	cmd := root.NewCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
