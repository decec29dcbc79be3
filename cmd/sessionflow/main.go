package main

import (
	"os"

	"github.com/petrijr/sessionflow/cmd/sessionflow/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
