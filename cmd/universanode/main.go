package main

import (
	"fmt"
	"os"

	"github.com/universa-network/clientendpoint/cmd/universanode/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
