package main

import (
	"os"

	"github.com/techdufus/axon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
