// Where: internal/usecase/deploy/workflow.go
// What: Deploy workflow orchestration.
// Why: Encapsulate packaging and rollout logic without CLI concerns.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
	"github.com/skiffhq/skiff-cli/internal/domain/function"
	"github.com/skiffhq/skiff-cli/internal/infra/staging"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
)

var (
	errStagerNotConfigured   = errors.New("stager is not configured")
	errArchiverNotConfigured = errors.New("archiver is not configured")
	errClientsNotConfigured  = errors.New("client factory is not configured")
	errNoRegions             = errors.New("at least one region is required")
)

// PlatformClient is the remote compute platform surface the workflow
// consumes. One client serves one region.
type PlatformClient interface {
	FunctionExists(ctx context.Context, name string) (bool, error)
	CreateFunction(ctx context.Context, cfg function.Config, payload []byte) (string, error)
	UpdateFunctionCode(ctx context.Context, name string, payload []byte, publish bool) (string, error)
	UpdateFunctionConfiguration(ctx context.Context, cfg function.Config) error

	ListEventSourceMappings(ctx context.Context, functionName string) ([]eventsource.Mapping, error)
	CreateEventSourceMapping(ctx context.Context, functionName string, m eventsource.Mapping) error
	UpdateEventSourceMapping(ctx context.Context, op eventsource.UpdateOp) error
	DeleteEventSourceMapping(ctx context.Context, uuid string) error

	PutScheduleRule(ctx context.Context, s eventsource.Schedule) (string, error)
	AddInvokePermission(ctx context.Context, functionName, ruleName, ruleArn string) error
	PutScheduleTarget(ctx context.Context, ruleName, functionArn string) error
}

// ClientFactory opens a platform client bound to one region.
type ClientFactory func(ctx context.Context, region string) (PlatformClient, error)

// Request captures the inputs required to run a deploy. ManageBindings
// reconciles the declared event sources and schedules; when false (no
// declarative file) the remote binding set is left untouched.
type Request struct {
	Config         function.Config
	Desired        eventsource.DesiredState
	ManageBindings bool
	Regions        []string

	ProjectDir          string
	StageDir            string
	ArchivePath         string
	ArchiveFile         string
	PrebuiltDir         string
	SkipInstall         bool
	Excludes            []string
	ExcludeDependencies bool
	DockerImage         string
	Environment         string
}

// Workflow executes the packaging pipeline and the region rollout.
type Workflow struct {
	Stage         func(spec staging.Spec) error
	Install       func(ctx context.Context, stagedDir, dockerImage string) error
	PostBuild     func(ctx context.Context, stagedDir, environment string) error
	BuildArchive  func(ctx context.Context, stagedDir, outPath string) ([]byte, error)
	ReadArchive   func(path string) ([]byte, bool, error)
	Clients       ClientFactory
	UserInterface ui.UserInterface
}

// NewDeployWorkflow constructs a Workflow.
func NewDeployWorkflow(
	stage func(spec staging.Spec) error,
	install func(ctx context.Context, stagedDir, dockerImage string) error,
	postBuild func(ctx context.Context, stagedDir, environment string) error,
	buildArchive func(ctx context.Context, stagedDir, outPath string) ([]byte, error),
	readArchive func(path string) ([]byte, bool, error),
	clients ClientFactory,
	ui ui.UserInterface,
) Workflow {
	return Workflow{
		Stage:         stage,
		Install:       install,
		PostBuild:     postBuild,
		BuildArchive:  buildArchive,
		ReadArchive:   readArchive,
		Clients:       clients,
		UserInterface: ui,
	}
}

// Run builds the payload once and rolls it out to every requested
// region. Results are returned even when some regions failed; the
// error joins the per-region failures.
func (w Workflow) Run(ctx context.Context, req Request) ([]RegionResult, error) {
	if w.Clients == nil {
		return nil, errClientsNotConfigured
	}
	if len(req.Regions) == 0 {
		return nil, errNoRegions
	}

	payload, err := w.BuildPayload(ctx, req)
	if err != nil {
		return nil, err
	}
	results := w.rollOut(ctx, req, payload)
	return results, joinRegionErrs(results)
}

// BuildPayload produces the deployable archive bytes. A declared
// pre-built payload that exists on disk is reused as-is; a missing one
// just falls back to building.
func (w Workflow) BuildPayload(ctx context.Context, req Request) ([]byte, error) {
	if w.Stage == nil {
		return nil, errStagerNotConfigured
	}
	if w.BuildArchive == nil {
		return nil, errArchiverNotConfigured
	}

	if req.ArchiveFile != "" && w.ReadArchive != nil {
		payload, ok, err := w.ReadArchive(req.ArchiveFile)
		if err != nil {
			return nil, err
		}
		if ok {
			w.info("Reusing archive " + req.ArchiveFile)
			return payload, nil
		}
	}

	if !req.SkipInstall {
		source := req.ProjectDir
		prebuilt := req.PrebuiltDir != ""
		if prebuilt {
			source = req.PrebuiltDir
		}
		w.info("Staging " + source)
		if err := w.Stage(staging.Spec{
			SourceDir:           source,
			DestDir:             req.StageDir,
			ExcludeGlobs:        req.Excludes,
			ExcludeDependencies: req.ExcludeDependencies,
			PrebuiltSource:      prebuilt,
		}); err != nil {
			return nil, err
		}
		if !prebuilt {
			if err := w.Install(ctx, req.StageDir, req.DockerImage); err != nil {
				return nil, err
			}
			if err := w.PostBuild(ctx, req.StageDir, req.Environment); err != nil {
				return nil, err
			}
		}
	}

	return w.BuildArchive(ctx, req.StageDir, req.ArchivePath)
}

func (w Workflow) rollOut(ctx context.Context, req Request, payload []byte) []RegionResult {
	results := make([]RegionResult, len(req.Regions))
	var wg sync.WaitGroup
	for i, region := range req.Regions {
		wg.Add(1)
		go func(idx int, region string) {
			defer wg.Done()
			results[idx] = w.deployRegion(ctx, req, payload, region)
		}(i, region)
	}
	wg.Wait()
	return results
}

func joinRegionErrs(results []RegionResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Region, r.Err))
		}
	}
	return errors.Join(errs...)
}

func (w Workflow) info(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Info(msg)
	}
}

func (w Workflow) success(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Success(msg)
	}
}
