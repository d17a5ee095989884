// Where: internal/command/package_entry.go
// What: Package command wiring.
// Why: Build the archive through the same pipeline deploy uses, then stop.
package command

import (
	"context"
	"io"

	"github.com/skiffhq/skiff-cli/internal/infra/awsdeploy"
)

// runPackage executes the package command: stage, install, hook, and
// archive into the output directory, with no remote calls.
func runPackage(cli CLI, deps Dependencies, out io.Writer) int {
	emojiEnabled, err := resolveEmojiEnabled(out, cli.Package.Emoji, cli.Package.NoEmoji)
	if err != nil {
		return exitWithError(out, err)
	}
	console := deps.Deploy.NewDeployUI(out, emojiEnabled)

	req, err := resolvePackageInputs(cli, deps)
	if err != nil {
		return exitWithError(out, err)
	}

	workflow := newDeployWorkflow(deps.Deploy, out, console, awsdeploy.Options{})

	payload, err := workflow.BuildPayload(context.Background(), req)
	if err != nil {
		return exitWithError(out, err)
	}

	printPackageSummary(console, req.Config.Name, req.ArchivePath, len(payload))
	return 0
}
