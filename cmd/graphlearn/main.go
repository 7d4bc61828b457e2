// graphlearn - headless client for the graph learning platform.
package main

import (
	"os"

	"graphlearn/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
