// Where: cmd/skiff/cli.go
// What: CLI dependency wiring.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"os"

	"github.com/skiffhq/skiff-cli/internal/command"
	"github.com/skiffhq/skiff-cli/internal/infra/awsdeploy"
	"github.com/skiffhq/skiff-cli/internal/infra/container"
	"github.com/skiffhq/skiff-cli/internal/infra/execx"
	"github.com/skiffhq/skiff-cli/internal/infra/interaction"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
	usecase "github.com/skiffhq/skiff-cli/internal/usecase/deploy"
)

var getwd = os.Getwd

// buildDependencies constructs the runtime dependencies for the CLI:
// process streams, interactive prompting, and the deploy-side infra.
func buildDependencies() command.Dependencies {
	runner := execx.ExecRunner{Out: os.Stdout, ErrOut: os.Stderr}
	return command.Dependencies{
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		Stdin:       os.Stdin,
		Prompter:    interaction.HuhPrompter{},
		ProjectDir:  getwd,
		Interactive: func() bool { return interaction.Interactive(os.Stdin) },
		Deploy: command.DeployDeps{
			Runner:       runner,
			DockerClient: container.NewDockerClient,
			NewPlatform: func(ctx context.Context, region string, opts awsdeploy.Options) (usecase.PlatformClient, error) {
				return awsdeploy.New(ctx, region, opts)
			},
			NewDeployUI: ui.NewDeployUI,
		},
	}
}
