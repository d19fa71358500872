package main

import (
	"os"

	"PrimeTerminal/cmd/primeterminal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
