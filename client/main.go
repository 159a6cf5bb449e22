package main

import (
	"os"

	"github.com/upcheckio/upcheck/client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
