package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
	"github.com/skiffhq/skiff-cli/internal/domain/function"
	"github.com/skiffhq/skiff-cli/internal/infra/awsdeploy"
	"github.com/skiffhq/skiff-cli/internal/infra/execx"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
	usecase "github.com/skiffhq/skiff-cli/internal/usecase/deploy"
)

// fakeRunner records external commands and succeeds without running them.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
}

func (r *fakeRunner) record(name string, args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, strings.Join(append([]string{name}, args...), " "))
}

func (r *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) error {
	r.record(name, args)
	return nil
}

func (r *fakeRunner) RunOutput(_ context.Context, _ string, name string, args ...string) ([]byte, error) {
	r.record(name, args)
	return nil, nil
}

func (r *fakeRunner) RunQuiet(_ context.Context, _ string, name string, args ...string) error {
	r.record(name, args)
	return nil
}

// forceInProcessArchive makes the archive builder skip the native zip
// tool so tests produce real archives without external binaries.
func forceInProcessArchive(t *testing.T) {
	t.Helper()
	prev := execx.LookPath
	execx.LookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { execx.LookPath = prev })
}

// cmdFakePlatform is a recording PlatformClient for command-level tests.
type cmdFakePlatform struct {
	mu sync.Mutex

	exists   bool
	existing []eventsource.Mapping

	createdConfigs  []function.Config
	codeUpdates     []string
	configUpdates   []function.Config
	listCalls       int
	createdMappings []eventsource.Mapping
	deletedUUIDs    []string
	putRules        []string
}

func (f *cmdFakePlatform) FunctionExists(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists, nil
}

func (f *cmdFakePlatform) CreateFunction(_ context.Context, cfg function.Config, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdConfigs = append(f.createdConfigs, cfg)
	return "arn:fn:" + cfg.Name, nil
}

func (f *cmdFakePlatform) UpdateFunctionCode(_ context.Context, name string, _ []byte, _ bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codeUpdates = append(f.codeUpdates, name)
	return "arn:fn:" + name, nil
}

func (f *cmdFakePlatform) UpdateFunctionConfiguration(_ context.Context, cfg function.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configUpdates = append(f.configUpdates, cfg)
	return nil
}

func (f *cmdFakePlatform) ListEventSourceMappings(context.Context, string) ([]eventsource.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.existing, nil
}

func (f *cmdFakePlatform) CreateEventSourceMapping(_ context.Context, _ string, m eventsource.Mapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdMappings = append(f.createdMappings, m)
	return nil
}

func (f *cmdFakePlatform) UpdateEventSourceMapping(context.Context, eventsource.UpdateOp) error {
	return nil
}

func (f *cmdFakePlatform) DeleteEventSourceMapping(_ context.Context, uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedUUIDs = append(f.deletedUUIDs, uuid)
	return nil
}

func (f *cmdFakePlatform) PutScheduleRule(_ context.Context, s eventsource.Schedule) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putRules = append(f.putRules, s.Name)
	return "arn:rule:" + s.Name, nil
}

func (f *cmdFakePlatform) AddInvokePermission(context.Context, string, string, string) error {
	return nil
}

func (f *cmdFakePlatform) PutScheduleTarget(context.Context, string, string) error {
	return nil
}

// cmdFakeFactory hands the same client to every region and records the
// options and regions it was opened with.
type cmdFakeFactory struct {
	mu      sync.Mutex
	client  *cmdFakePlatform
	opened  []string
	options []awsdeploy.Options
}

func (f *cmdFakeFactory) platform(ctx context.Context, region string, opts awsdeploy.Options) (usecase.PlatformClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, region)
	f.options = append(f.options, opts)
	if f.client == nil {
		f.client = &cmdFakePlatform{}
	}
	return f.client, nil
}

// stubPrompter returns canned answers.
type stubPrompter struct {
	input     string
	inputErr  error
	selection string
}

func (p stubPrompter) Input(string, []string) (string, error) {
	return p.input, p.inputErr
}

func (p stubPrompter) Select(string, []string) (string, error) {
	return p.selection, nil
}

func mappingWithUUID(arn, uuid string) eventsource.Mapping {
	return eventsource.Mapping{EventSourceArn: arn, UUID: uuid}
}

func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// newProject builds a minimal deployable project directory.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeProjectFile(t, dir, "index.js", "exports.handler = async () => ({});\n")
	writeProjectFile(t, dir, "package.json", `{"name": "orders"}`+"\n")
	return dir
}

func testDeps(t *testing.T, projectDir string, factory *cmdFakeFactory) Dependencies {
	t.Helper()
	return Dependencies{
		Stdin:       strings.NewReader(""),
		ProjectDir:  func() (string, error) { return projectDir, nil },
		Interactive: func() bool { return false },
		Deploy: DeployDeps{
			Runner:      &fakeRunner{},
			NewPlatform: factory.platform,
			NewDeployUI: ui.NewDeployUI,
		},
	}
}
