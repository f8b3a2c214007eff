package main

import (
	"fmt"
	"os"

	"github.com/charlesng35/remotefs/cmd/remotefs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
