// Command ectl is a command-line client for aMule's External Connections
// protocol, built on package amulec.
package main

import (
	"fmt"
	"os"

	"github.com/go-amule/amulec/cmd/ectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
