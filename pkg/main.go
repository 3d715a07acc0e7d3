package main

import (
	"fmt"
	"os"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
