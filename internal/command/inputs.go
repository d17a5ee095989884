// Where: internal/command/inputs.go
// What: Flag, manifest, and environment resolution for deploy and package.
// Why: Commands share one precedence story; keep it in one place.
package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skiffhq/skiff-cli/internal/constants"
	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
	"github.com/skiffhq/skiff-cli/internal/domain/function"
	"github.com/skiffhq/skiff-cli/internal/infra/awsdeploy"
	"github.com/skiffhq/skiff-cli/internal/infra/envfile"
	"github.com/skiffhq/skiff-cli/internal/infra/eventsfile"
	"github.com/skiffhq/skiff-cli/internal/infra/fileops"
	"github.com/skiffhq/skiff-cli/internal/infra/manifest"
	"github.com/skiffhq/skiff-cli/internal/meta"
	usecase "github.com/skiffhq/skiff-cli/internal/usecase/deploy"
)

// Defaults applied when neither flag nor manifest declares a value.
const (
	defaultHandler    = "index.handler"
	defaultRuntime    = "nodejs22.x"
	defaultMemorySize = int32(128)
	defaultTimeout    = int32(60)
)

type deployInputs struct {
	request usecase.Request
	options awsdeploy.Options
}

// buildFlags is the subset of flags shared by deploy and package.
type buildFlags struct {
	Name                string
	FunctionVersion     string
	Exclude             []string
	ExcludeDependencies bool
	SkipInstall         bool
	PrebuiltDir         string
	ArchiveFile         string
	DockerImage         string
}

func (c DeployCmd) buildFlags() buildFlags {
	return buildFlags{
		Name:                c.Name,
		FunctionVersion:     c.FunctionVersion,
		Exclude:             c.Exclude,
		ExcludeDependencies: c.ExcludeDependencies,
		SkipInstall:         c.SkipInstall,
		PrebuiltDir:         c.PrebuiltDir,
		ArchiveFile:         c.ArchiveFile,
		DockerImage:         c.DockerImage,
	}
}

func (c PackageCmd) buildFlags() buildFlags {
	return buildFlags{
		Name:                c.Name,
		FunctionVersion:     c.FunctionVersion,
		Exclude:             c.Exclude,
		ExcludeDependencies: c.ExcludeDependencies,
		SkipInstall:         c.SkipInstall,
		PrebuiltDir:         c.PrebuiltDir,
		DockerImage:         c.DockerImage,
	}
}

// resolveDeployInputs turns the raw command line into a full deploy
// request. Precedence is flag, then manifest, then environment; input
// problems are reported here, before anything remote is touched.
func resolveDeployInputs(cli CLI, deps Dependencies) (deployInputs, error) {
	projectDir, err := deps.ProjectDir()
	if err != nil {
		return deployInputs{}, fmt.Errorf("resolve project dir: %w", err)
	}
	m, _, err := manifest.LoadOptional(projectDir)
	if err != nil {
		return deployInputs{}, err
	}

	flags := cli.Deploy
	environment := resolveEnvironment(cli)

	req, baseName, err := resolveBuildRequest(projectDir, environment, flags.buildFlags(), m)
	if err != nil {
		return deployInputs{}, err
	}

	role := firstNonEmpty(flags.Role, m.Role)
	if role == "" {
		return deployInputs{}, errors.New("execution role is required: pass --role or declare role in " + meta.ManifestFile)
	}

	regions, err := resolveRegions(flags.Regions, m)
	if err != nil {
		return deployInputs{}, err
	}

	envVars, err := resolveEnvVars(projectDir, flags.FunctionEnvFile, m)
	if err != nil {
		return deployInputs{}, err
	}

	desired, managed, err := resolveDesiredState(projectDir, flags.EventSources, m)
	if err != nil {
		return deployInputs{}, err
	}

	tracing := firstNonEmpty(flags.TracingMode, m.TracingMode)
	if err := validateTracingMode(tracing); err != nil {
		return deployInputs{}, err
	}

	subnets := flags.SubnetIDs
	groups := flags.SecurityGroupIDs
	if len(subnets) == 0 && len(groups) == 0 {
		subnets, groups = m.SubnetIDs, m.SecurityGroupIDs
	}

	req.Config = function.Synthesize(function.Input{
		Name:             baseName,
		Environment:      environment,
		Version:          flags.FunctionVersion,
		Handler:          firstNonEmpty(flags.Handler, m.Handler, defaultHandler),
		Role:             role,
		Runtime:          firstNonEmpty(flags.Runtime, m.Runtime, defaultRuntime),
		MemorySize:       firstPositive(flags.Memory, m.MemorySize, defaultMemorySize),
		Timeout:          firstPositive(flags.Timeout, m.Timeout, defaultTimeout),
		Description:      firstNonEmpty(flags.Description, m.Description),
		SubnetIDs:        subnets,
		SecurityGroupIDs: groups,
		EnvVars:          envVars,
		DeadLetterArn:    resolveDeadLetter(flags.DeadLetterArn, m),
		TracingMode:      tracing,
		Publish:          flags.Publish,
	})
	req.Desired = desired
	req.ManageBindings = managed
	req.Regions = regions

	return deployInputs{
		request: req,
		options: awsdeploy.Options{
			Profile:   resolveProfile(flags.Profile, m),
			AccessKey: flags.AccessKey,
			SecretKey: flags.SecretKey,
			S3Bucket:  firstNonEmpty(flags.S3Bucket, m.S3Bucket),
			S3Key:     firstNonEmpty(flags.S3Key, m.S3Key),
		},
	}, nil
}

// resolvePackageInputs resolves everything package needs: the build
// request plus the destination archive path. Role, regions, and event
// sources are deploy concerns and are not required here.
func resolvePackageInputs(cli CLI, deps Dependencies) (usecase.Request, error) {
	projectDir, err := deps.ProjectDir()
	if err != nil {
		return usecase.Request{}, fmt.Errorf("resolve project dir: %w", err)
	}
	m, _, err := manifest.LoadOptional(projectDir)
	if err != nil {
		return usecase.Request{}, err
	}

	environment := resolveEnvironment(cli)
	req, _, err := resolveBuildRequest(projectDir, environment, cli.Package.buildFlags(), m)
	if err != nil {
		return usecase.Request{}, err
	}

	outputDir := cli.Package.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(projectDir, meta.DistDir)
	} else if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(projectDir, outputDir)
	}
	req.ArchivePath = filepath.Join(outputDir, req.Config.Name+".zip")
	return req, nil
}

// resolveBuildRequest fills the packaging fields shared by deploy and
// package and returns the resolved base name alongside.
func resolveBuildRequest(projectDir, environment string, flags buildFlags, m manifest.Manifest) (usecase.Request, string, error) {
	baseName, err := resolveFunctionName(projectDir, flags.Name, m)
	if err != nil {
		return usecase.Request{}, "", err
	}
	fullName := function.FunctionName(baseName, environment, flags.FunctionVersion)

	req := usecase.Request{
		ProjectDir:          projectDir,
		StageDir:            filepath.Join(projectDir, meta.StageDir),
		ArchivePath:         filepath.Join(projectDir, meta.DistDir, fullName+".zip"),
		ArchiveFile:         flags.ArchiveFile,
		PrebuiltDir:         flags.PrebuiltDir,
		SkipInstall:         flags.SkipInstall,
		Excludes:            append(append([]string{}, m.Excludes...), flags.Exclude...),
		ExcludeDependencies: flags.ExcludeDependencies,
		DockerImage:         resolveDockerImage(flags.DockerImage, m),
		Environment:         environment,
	}
	req.Config.Name = fullName
	return req, baseName, nil
}

// resolveFunctionName resolves the base name: flag, then manifest, then
// the package manifest's name field.
func resolveFunctionName(projectDir, flag string, m manifest.Manifest) (string, error) {
	if name := strings.TrimSpace(flag); name != "" {
		return name, nil
	}
	if m.FunctionName != "" {
		return m.FunctionName, nil
	}
	name, err := manifest.FallbackFunctionName(projectDir)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("function name is required: pass --name or declare function_name in " + meta.ManifestFile)
	}
	return name, nil
}

// resolveRegions resolves the rollout targets: flag, then manifest, then
// the usual region environment variables.
func resolveRegions(flag []string, m manifest.Manifest) ([]string, error) {
	if len(flag) > 0 {
		return flag, nil
	}
	if len(m.Regions) > 0 {
		return m.Regions, nil
	}
	for _, key := range []string{constants.EnvSkiffRegion, constants.EnvAWSRegion, constants.EnvAWSDefaultRegion} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return []string{v}, nil
		}
	}
	return nil, errors.New("no regions configured: pass --regions, declare regions in " + meta.ManifestFile + ", or set " + constants.EnvSkiffRegion)
}

// resolveEnvVars reads the function environment file. An explicitly
// named file must exist; the conventional deploy.env is picked up only
// when present. No file at all leaves the remote environment untouched.
func resolveEnvVars(projectDir, flag string, m manifest.Manifest) (map[string]string, error) {
	if path := firstNonEmpty(flag, m.EnvFile); path != "" {
		return envfile.Read(projectPath(projectDir, path))
	}
	fallback := filepath.Join(projectDir, meta.SecretsEnvFile)
	if fileops.FileExists(fallback) {
		return envfile.Read(fallback)
	}
	return nil, nil
}

// resolveDesiredState loads the declarative bindings. An explicitly
// named file must load; the conventional event_sources.json is optional.
// The second return reports whether bindings are managed at all.
func resolveDesiredState(projectDir, flag string, m manifest.Manifest) (eventsource.DesiredState, bool, error) {
	if path := firstNonEmpty(flag, m.EventSourcesFile); path != "" {
		desired, err := eventsfile.Load(projectPath(projectDir, path))
		if err != nil {
			return eventsource.DesiredState{}, false, err
		}
		return desired, true, nil
	}
	return eventsfile.LoadOptional(filepath.Join(projectDir, meta.EventSourcesFile))
}

func resolveDeadLetter(flag *string, m manifest.Manifest) function.OptionalString {
	if flag != nil {
		return function.SetString(*flag)
	}
	if m.DeadLetterArn != nil {
		return function.SetString(*m.DeadLetterArn)
	}
	return function.OptionalString{}
}

// resolveDockerImage prefers the flag, then the per-machine environment
// override, then the project manifest.
func resolveDockerImage(flag string, m manifest.Manifest) string {
	return firstNonEmpty(flag, os.Getenv(constants.EnvSkiffDockerImage), m.DockerImage)
}

// resolveProfile prefers the flag, then the per-user environment
// override, then the project manifest. Profiles are a per-machine
// concern, so the environment beats the shared manifest.
func resolveProfile(flag string, m manifest.Manifest) string {
	return firstNonEmpty(flag, os.Getenv(constants.EnvSkiffProfile), m.Profile)
}

func resolveEnvironment(cli CLI) string {
	return firstNonEmpty(cli.Env, os.Getenv(constants.EnvSkiffEnv))
}

func validateTracingMode(mode string) error {
	switch mode {
	case "", "Active", "PassThrough":
		return nil
	}
	return fmt.Errorf("invalid tracing mode %q: use Active or PassThrough", mode)
}

// projectPath anchors a relative path at the project directory.
func projectPath(projectDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int32) int32 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
