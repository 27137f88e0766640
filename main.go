// lore turns a codebase into a cross-referenced set of markdown
// documents that AI agents can navigate, and serves them over MCP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lorekeep/lore/cmd"
)

func main() {
	// Load .env if present; absence is not an error.
	_ = godotenv.Load()

	cli := cmd.NewCLI()
	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
