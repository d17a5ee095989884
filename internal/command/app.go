// Where: internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/skiffhq/skiff-cli/internal/infra/awsdeploy"
	"github.com/skiffhq/skiff-cli/internal/infra/container"
	"github.com/skiffhq/skiff-cli/internal/infra/execx"
	"github.com/skiffhq/skiff-cli/internal/infra/interaction"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
	"github.com/skiffhq/skiff-cli/internal/meta"
	usecase "github.com/skiffhq/skiff-cli/internal/usecase/deploy"
	"github.com/skiffhq/skiff-cli/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of various subsystems.
type Dependencies struct {
	Out         io.Writer
	ErrOut      io.Writer
	Stdin       io.Reader
	Prompter    interaction.Prompter
	ProjectDir  func() (string, error)
	Interactive func() bool
	Deploy      DeployDeps
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Env          string     `short:"e" name:"env" help:"Deployment environment name appended to the function name"`
	BootstrapEnv string     `name:"env-file" help:"Env file loaded into the process at startup (default: ./.env)"`
	Deploy       DeployCmd  `cmd:"" help:"Package the project and deploy it to every configured region"`
	Package      PackageCmd `cmd:"" help:"Build the deployment archive without deploying"`
	Init         InitCmd    `cmd:"" help:"Write starter files into the project"`
	Version      VersionCmd `cmd:"" help:"Show version information"`
}

type (
	// DeployCmd defines the deploy command flags.
	DeployCmd struct {
		Name             string   `short:"n" help:"Function base name (default: skiff.yml function_name, then package.json name)"`
		FunctionVersion  string   `name:"function-version" help:"Version suffix appended to the function name"`
		Handler          string   `help:"Function handler (default: index.handler)"`
		Role             string   `help:"Execution role ARN"`
		Runtime          string   `help:"Runtime identifier (default: nodejs22.x)"`
		Memory           int32    `help:"Memory size in MB (default: 128)"`
		Timeout          int32    `help:"Timeout in seconds (default: 60)"`
		Description      string   `help:"Function description"`
		Regions          []string `short:"r" name:"regions" sep:"," help:"Target regions (repeatable or comma-separated)"`
		SubnetIDs        []string `name:"subnet-ids" sep:"," help:"VPC subnet ids (requires --security-group-ids)"`
		SecurityGroupIDs []string `name:"security-group-ids" sep:"," help:"VPC security group ids (requires --subnet-ids)"`
		FunctionEnvFile  string   `name:"function-env-file" help:"KEY=VALUE file applied as the function environment (default: deploy.env when present)"`
		DeadLetterArn    *string  `name:"dead-letter-arn" help:"Dead-letter queue or topic ARN (empty string clears the remote target)"`
		TracingMode      string   `name:"tracing-mode" help:"Tracing mode (Active or PassThrough)"`
		Publish          bool     `help:"Publish a version on deploy"`
		EventSources     string   `name:"event-sources" help:"Declarative event source file (default: event_sources.json when present)"`

		Exclude             []string `name:"exclude" sep:"," help:"Glob patterns excluded from the package"`
		ExcludeDependencies bool     `name:"exclude-dependencies" help:"Exclude node_modules from the package"`
		SkipInstall         bool     `name:"skip-install" help:"Skip staging and dependency install; archive the stage dir as-is"`
		PrebuiltDir         string   `name:"prebuilt-dir" help:"Stage from an already built tree (skips install and hook)"`
		ArchiveFile         string   `name:"archive-file" help:"Reuse this archive when it exists instead of rebuilding"`
		DockerImage         string   `name:"docker-image" help:"Run the dependency install inside this image"`

		Profile   string `help:"AWS shared config profile"`
		AccessKey string `name:"access-key" help:"Static AWS access key id"`
		SecretKey string `name:"secret-key" help:"Static AWS secret access key"`
		S3Bucket  string `name:"s3-bucket" help:"Upload the payload to this bucket instead of inlining it"`
		S3Key     string `name:"s3-key" help:"Object key for the uploaded payload (default: <function-name>.zip)"`

		Yes     bool `short:"y" help:"Skip confirmation prompts"`
		Emoji   bool `name:"emoji" help:"Enable emoji output (default: auto)"`
		NoEmoji bool `name:"no-emoji" help:"Disable emoji output"`
	}

	// PackageCmd defines the package command flags.
	PackageCmd struct {
		Name            string `short:"n" help:"Function base name (default: skiff.yml function_name, then package.json name)"`
		FunctionVersion string `name:"function-version" help:"Version suffix appended to the function name"`
		OutputDir       string `short:"o" name:"output-dir" help:"Directory receiving the named archive (default: .skiff/dist)"`

		Exclude             []string `name:"exclude" sep:"," help:"Glob patterns excluded from the package"`
		ExcludeDependencies bool     `name:"exclude-dependencies" help:"Exclude node_modules from the package"`
		SkipInstall         bool     `name:"skip-install" help:"Skip staging and dependency install; archive the stage dir as-is"`
		PrebuiltDir         string   `name:"prebuilt-dir" help:"Stage from an already built tree (skips install and hook)"`
		DockerImage         string   `name:"docker-image" help:"Run the dependency install inside this image"`

		Emoji   bool `name:"emoji" help:"Enable emoji output (default: auto)"`
		NoEmoji bool `name:"no-emoji" help:"Disable emoji output"`
	}

	// InitCmd defines the init command flags.
	InitCmd struct {
		Name    string   `short:"n" help:"Function base name (default: package.json name, prompted when interactive)"`
		Runtime string   `help:"Runtime identifier written to skiff.yml"`
		Role    string   `help:"Execution role ARN written to skiff.yml"`
		Regions []string `short:"r" name:"regions" sep:"," help:"Regions written to skiff.yml"`
	}

	VersionCmd struct{}

	// DeployDeps carries the infra hooks the deploy and package
	// commands assemble their workflow from.
	DeployDeps struct {
		Runner       execx.CommandRunner
		DockerClient DockerClientFactory
		NewPlatform  PlatformFactory
		NewDeployUI  func(io.Writer, bool) ui.UserInterface
	}
)

type (
	DockerClientFactory func() (container.DockerClient, error)

	PlatformFactory func(ctx context.Context, region string, opts awsdeploy.Options) (usecase.PlatformClient, error)
)

// Run is the main entry point for CLI command execution. It parses the
// command-line arguments, identifies the requested command, and
// dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	deps = withDefaults(deps)
	out := deps.Out

	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return handleParseError(args, err, out)
	}

	loadBootstrapEnv(cli, out)

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	legacyUI(out).Warn("unknown command")
	return 1
}

func withDefaults(deps Dependencies) Dependencies {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Prompter == nil {
		deps.Prompter = interaction.HuhPrompter{}
	}
	if deps.ProjectDir == nil {
		deps.ProjectDir = os.Getwd
	}
	if deps.Interactive == nil {
		deps.Interactive = func() bool { return interaction.Interactive(os.Stdin) }
	}
	if deps.Deploy.Runner == nil {
		deps.Deploy.Runner = execx.ExecRunner{Out: deps.Out, ErrOut: deps.ErrOut}
	}
	if deps.Deploy.DockerClient == nil {
		deps.Deploy.DockerClient = container.NewDockerClient
	}
	if deps.Deploy.NewPlatform == nil {
		deps.Deploy.NewPlatform = func(ctx context.Context, region string, opts awsdeploy.Options) (usecase.PlatformClient, error) {
			return awsdeploy.New(ctx, region, opts)
		}
	}
	if deps.Deploy.NewDeployUI == nil {
		deps.Deploy.NewDeployUI = ui.NewDeployUI
	}
	return deps
}

// loadBootstrapEnv loads the startup env file into the process. A named
// file that fails to load is worth a warning; the implicit ./.env is
// best-effort.
func loadBootstrapEnv(cli CLI, out io.Writer) {
	if cli.BootstrapEnv != "" {
		if err := godotenv.Load(cli.BootstrapEnv); err != nil {
			legacyUI(out).Warn(fmt.Sprintf("Warning: failed to load env file %s: %v", cli.BootstrapEnv, err))
		}
		return
	}
	if _, err := os.Stat(meta.DefaultEnvFile); err == nil {
		if err := godotenv.Load(); err != nil {
			legacyUI(out).Warn(fmt.Sprintf("Warning: failed to load %s: %v", meta.DefaultEnvFile, err))
		}
	}
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"deploy":  runDeploy,
		"package": runPackage,
		"init":    runInit,
		"version": func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	legacyUI(out).Info(version.GetVersion())
	return 0
}

// commandName extracts the first non-flag argument from the command line,
// which represents the command name. Recognizes and skips known flag pairs.
func commandName(args []string) string {
	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			switch arg {
			case "-e", "--env", "--env-file", "-n", "--name", "-r", "--regions", "-o", "--output-dir", "--profile":
				skipNext = true
			}
			continue
		}
		return arg
	}
	return ""
}

// runNoArgs handles the case when the CLI is invoked without arguments.
func runNoArgs(out io.Writer) int {
	console := legacyUI(out)
	cmd := cliName()
	console.Info("Usage:")
	console.Info(fmt.Sprintf("  %s init                      write starter files", cmd))
	console.Info(fmt.Sprintf("  %s deploy -e <env> [flags]   package and deploy to every region", cmd))
	console.Info(fmt.Sprintf("  %s package [flags]           build the archive only", cmd))
	console.Info("")
	console.Info(fmt.Sprintf("Try: %s deploy --help", cmd))
	return 0
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(args []string, err error, out io.Writer) int {
	msg := err.Error()
	if strings.Contains(msg, "expected string value") || strings.Contains(msg, "expected \"") {
		console := legacyUI(out)
		name := cliName()
		command := commandName(args)
		if command == "" {
			command = "deploy"
		}
		switch {
		case strings.Contains(msg, "--env") && !strings.Contains(msg, "--env-file"):
			console.Warn("`-e/--env` expects a value. Provide an environment name.")
			console.Info(fmt.Sprintf("Example: %s %s -e prod", name, command))
			return 1
		case strings.Contains(msg, "--regions"):
			console.Warn("`-r/--regions` expects a value. Provide one or more regions.")
			console.Info(fmt.Sprintf("Example: %s %s -r us-east-1,eu-west-1", name, command))
			return 1
		case strings.Contains(msg, "--name"):
			console.Warn("`-n/--name` expects a value. Provide a function name or declare function_name in " + manifestHint() + ".")
			console.Info(fmt.Sprintf("Example: %s %s -n orders", name, command))
			return 1
		}
	}
	return exitWithError(out, err)
}

func manifestHint() string {
	return meta.ManifestFile
}
