package main

import (
	"os"

	"github.com/TheusHen/chaoskey/cmd/chaoskey/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
