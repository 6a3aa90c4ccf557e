package main

import (
	"os"

	"github.com/rustyeddy/tvue/cmd/tvue/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
