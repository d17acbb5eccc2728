// CLI entry point for SafeSpeak.
package main

import (
	"os"

	"github.com/turtacn/safespeak/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
