// Where: cmd/skiff/main.go
// What: CLI entrypoint.
// Why: Execute skiff commands with configured dependencies.
package main

import (
	"os"

	"github.com/skiffhq/skiff-cli/internal/command"
)

func main() {
	os.Exit(command.Run(os.Args[1:], buildDependencies()))
}
