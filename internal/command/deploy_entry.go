// Where: internal/command/deploy_entry.go
// What: Deploy command wiring.
// Why: Assemble the workflow from injected deps and keep Run() thin.
package command

import (
	"context"
	"fmt"
	"io"

	"github.com/skiffhq/skiff-cli/internal/infra/archive"
	"github.com/skiffhq/skiff-cli/internal/infra/awsdeploy"
	"github.com/skiffhq/skiff-cli/internal/infra/buildstep"
	"github.com/skiffhq/skiff-cli/internal/infra/container"
	"github.com/skiffhq/skiff-cli/internal/infra/interaction"
	"github.com/skiffhq/skiff-cli/internal/infra/staging"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
	"github.com/skiffhq/skiff-cli/internal/meta"
	usecase "github.com/skiffhq/skiff-cli/internal/usecase/deploy"
)

// runDeploy executes the deploy command workflow.
func runDeploy(cli CLI, deps Dependencies, out io.Writer) int {
	emojiEnabled, err := resolveEmojiEnabled(out, cli.Deploy.Emoji, cli.Deploy.NoEmoji)
	if err != nil {
		return exitWithError(out, err)
	}
	console := deps.Deploy.NewDeployUI(out, emojiEnabled)

	inputs, err := resolveDeployInputs(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	if proceed, err := confirmUnbindAll(cli, deps, out, inputs.request); err != nil {
		return exitWithError(out, err)
	} else if !proceed {
		console.Info("Aborted.")
		return 0
	}

	workflow := newDeployWorkflow(deps.Deploy, out, console, inputs.options)

	results, err := workflow.Run(context.Background(), inputs.request)
	if len(results) > 0 {
		printDeploySummary(console, results, inputs.request.ManageBindings)
		if err != nil {
			return 1
		}
		return 0
	}
	if err != nil {
		return exitWithError(out, err)
	}
	return 0
}

// confirmUnbindAll asks before a deploy that would strip every event
// source mapping from the function: a bindings file that declares none
// converges each region to zero. Skipped with --yes or without a TTY.
func confirmUnbindAll(cli CLI, deps Dependencies, out io.Writer, req usecase.Request) (bool, error) {
	if !req.ManageBindings || len(req.Desired.Mappings) > 0 {
		return true, nil
	}
	if cli.Deploy.Yes || !deps.Interactive() {
		return true, nil
	}
	message := fmt.Sprintf("%s declares no event source mappings; existing mappings of %s will be removed in every region. Continue?",
		meta.EventSourcesFile, req.Config.Name)
	return interaction.PromptYesNoWithIO(deps.Stdin, out, message)
}

// newDeployWorkflow wires the packaging steps and the regional client
// factory into a workflow. The install step pulls the build image first
// when one is requested.
func newDeployWorkflow(d DeployDeps, out io.Writer, console ui.UserInterface, opts awsdeploy.Options) usecase.Workflow {
	builder := buildstep.Builder{Runner: d.Runner, Out: out}
	archiver := archive.Builder{Runner: d.Runner}

	install := func(ctx context.Context, stagedDir, dockerImage string) error {
		if dockerImage != "" && d.DockerClient != nil {
			dc, err := d.DockerClient()
			if err != nil {
				return fmt.Errorf("docker client: %w", err)
			}
			if err := container.EnsureImage(ctx, dc, d.Runner, dockerImage); err != nil {
				return err
			}
		}
		return builder.Install(ctx, stagedDir, dockerImage)
	}

	clients := func(ctx context.Context, region string) (usecase.PlatformClient, error) {
		return d.NewPlatform(ctx, region, opts)
	}

	return usecase.NewDeployWorkflow(
		staging.Stage,
		install,
		builder.RunPostBuildHook,
		archiver.Create,
		archive.ReadExisting,
		clients,
		console,
	)
}
