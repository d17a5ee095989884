// Where: internal/infra/buildstep/buildstep.go
// What: Dependency install and post-build hook execution for staged trees.
// Why: Install tools are external commands with a pass/fail contract only.
package buildstep

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/skiffhq/skiff-cli/internal/infra/execx"
	"github.com/skiffhq/skiff-cli/internal/infra/fileops"
	"github.com/skiffhq/skiff-cli/internal/meta"
)

// containerWorkdir is where the staged tree is mounted when the install
// runs inside a container image.
const containerWorkdir = "/var/task"

var installArgs = []string{"install", "--production"}

// Builder runs the dependency install and the optional post-build hook.
// Out receives forwarded hook output; nil discards it.
type Builder struct {
	Runner execx.CommandRunner
	Out    io.Writer
}

// Install fetches production dependencies into the staged directory. A
// non-empty dockerImage routes the install through that container image
// with the staged tree bind-mounted instead of running on the host.
func (b Builder) Install(ctx context.Context, stagedDir, dockerImage string) error {
	if b.Runner == nil {
		return fmt.Errorf("install requires a command runner")
	}

	name, args, err := installCommand(stagedDir, dockerImage)
	if err != nil {
		return err
	}
	output, err := b.Runner.RunOutput(ctx, stagedDir, name, args...)
	if err != nil {
		return fmt.Errorf("install dependencies: %w%s", err, outputSuffix(output))
	}
	return nil
}

// RunPostBuildHook executes the post-build script when one exists in the
// staged directory, passing the environment name as its sole argument.
// A missing script is a silent no-op. Captured output is forwarded on
// success and embedded in the error on failure.
func (b Builder) RunPostBuildHook(ctx context.Context, stagedDir, environment string) error {
	if b.Runner == nil {
		return fmt.Errorf("post-build hook requires a command runner")
	}

	hookPath := filepath.Join(stagedDir, meta.PostBuildScript)
	if !fileops.FileExists(hookPath) {
		return nil
	}
	if abs, err := filepath.Abs(hookPath); err == nil {
		hookPath = abs
	}

	output, err := b.Runner.RunOutput(ctx, stagedDir, hookPath, environment)
	if err != nil {
		return fmt.Errorf("run %s: %w%s", meta.PostBuildScript, err, outputSuffix(output))
	}
	if len(output) > 0 && b.Out != nil {
		fmt.Fprintf(b.Out, "%s", output)
	}
	return nil
}

func installCommand(stagedDir, dockerImage string) (string, []string, error) {
	if dockerImage == "" {
		return "npm", installArgs, nil
	}

	absStaged, err := filepath.Abs(stagedDir)
	if err != nil {
		return "", nil, fmt.Errorf("resolve staged dir: %w", err)
	}
	args := []string{
		"run", "--rm",
		"-v", absStaged + ":" + containerWorkdir,
		"-w", containerWorkdir,
		dockerImage,
		"npm",
	}
	return "docker", append(args, installArgs...), nil
}

func outputSuffix(output []byte) string {
	text := strings.TrimSpace(string(output))
	if text == "" {
		return ""
	}
	return "\n" + text
}
