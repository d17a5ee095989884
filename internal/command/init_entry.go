// Where: internal/command/init_entry.go
// What: Init command wiring.
// Why: Turn an empty directory into a deployable project skeleton.
package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/skiffhq/skiff-cli/internal/domain/function"
	"github.com/skiffhq/skiff-cli/internal/infra/manifest"
	"github.com/skiffhq/skiff-cli/internal/infra/scaffold"
)

// runInit executes the init command: resolve a function name, then write
// the starter files that do not exist yet.
func runInit(cli CLI, deps Dependencies, out io.Writer) int {
	console := legacyUI(out)

	projectDir, err := deps.ProjectDir()
	if err != nil {
		return exitWithError(out, fmt.Errorf("resolve project dir: %w", err))
	}

	name, err := resolveInitName(cli.Init, deps, projectDir)
	if err != nil {
		return exitWithError(out, err)
	}

	results, err := scaffold.Apply(projectDir, scaffold.Data{
		FunctionName: name,
		Runtime:      cli.Init.Runtime,
		Role:         cli.Init.Role,
		Regions:      cli.Init.Regions,
	})
	for _, res := range results {
		if res.Created {
			console.Success("Created " + res.Path)
		} else {
			console.Info("Kept " + res.Path + " (already exists)")
		}
	}
	if err != nil {
		return exitWithError(out, err)
	}

	console.Info("")
	console.Info(fmt.Sprintf("Next: set the execution role in %s, then run `%s deploy`.", manifestHint(), cliName()))
	return 0
}

// resolveInitName resolves the scaffold name: flag, then the package
// manifest, then an interactive prompt. A blank answer falls back to
// the template default.
func resolveInitName(flags InitCmd, deps Dependencies, projectDir string) (string, error) {
	if name := strings.TrimSpace(flags.Name); name != "" {
		return function.SanitizeName(name), nil
	}

	name, err := manifest.FallbackFunctionName(projectDir)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}

	if deps.Interactive() && deps.Prompter != nil {
		answer, err := deps.Prompter.Input("Function name", []string{"my-function"})
		if err != nil {
			return "", fmt.Errorf("prompt function name: %w", err)
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			return function.SanitizeName(answer), nil
		}
	}
	return "", nil
}
