package deploy

import (
	"context"
	"sync"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
	"github.com/skiffhq/skiff-cli/internal/domain/function"
	"github.com/skiffhq/skiff-cli/internal/infra/staging"
	"github.com/skiffhq/skiff-cli/internal/infra/ui"
)

// fakePlatform is a test double for PlatformClient. Calls are recorded
// under a mutex because the workflow fans bindings out concurrently.
type fakePlatform struct {
	mu sync.Mutex

	exists    bool
	existsErr error

	createArn string
	createErr error

	updateArn       string
	updateCodeErr   error
	updateConfigErr error

	existing []eventsource.Mapping
	listErr  error

	// keyed by source arn (creates) or uuid (updates, deletes)
	mappingErrs map[string]error

	ruleArn string
	// keyed by schedule or rule name
	ruleErrs       map[string]error
	permissionErrs map[string]error
	targetErrs     map[string]error

	existsNames     []string
	createdConfigs  []function.Config
	createdPayloads [][]byte
	codeUpdates     []codeUpdate
	configUpdates   []function.Config
	listNames       []string
	createdMappings []eventsource.Mapping
	updatedOps      []eventsource.UpdateOp
	deletedUUIDs    []string
	putRules        []eventsource.Schedule
	permissions     []permissionGrant
	targets         []ruleTarget
	calls           []string
}

type codeUpdate struct {
	name    string
	payload []byte
	publish bool
}

type permissionGrant struct {
	functionName string
	ruleName     string
	ruleArn      string
}

type ruleTarget struct {
	ruleName    string
	functionArn string
}

func (f *fakePlatform) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakePlatform) FunctionExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FunctionExists")
	f.existsNames = append(f.existsNames, name)
	return f.exists, f.existsErr
}

func (f *fakePlatform) CreateFunction(_ context.Context, cfg function.Config, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateFunction")
	f.createdConfigs = append(f.createdConfigs, cfg)
	f.createdPayloads = append(f.createdPayloads, payload)
	return f.createArn, f.createErr
}

func (f *fakePlatform) UpdateFunctionCode(_ context.Context, name string, payload []byte, publish bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateFunctionCode")
	f.codeUpdates = append(f.codeUpdates, codeUpdate{name: name, payload: payload, publish: publish})
	return f.updateArn, f.updateCodeErr
}

func (f *fakePlatform) UpdateFunctionConfiguration(_ context.Context, cfg function.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateFunctionConfiguration")
	f.configUpdates = append(f.configUpdates, cfg)
	return f.updateConfigErr
}

func (f *fakePlatform) ListEventSourceMappings(_ context.Context, functionName string) ([]eventsource.Mapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListEventSourceMappings")
	f.listNames = append(f.listNames, functionName)
	return f.existing, f.listErr
}

func (f *fakePlatform) CreateEventSourceMapping(_ context.Context, _ string, m eventsource.Mapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateEventSourceMapping")
	f.createdMappings = append(f.createdMappings, m)
	return f.mappingErrs[m.EventSourceArn]
}

func (f *fakePlatform) UpdateEventSourceMapping(_ context.Context, op eventsource.UpdateOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateEventSourceMapping")
	f.updatedOps = append(f.updatedOps, op)
	return f.mappingErrs[op.UUID]
}

func (f *fakePlatform) DeleteEventSourceMapping(_ context.Context, uuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteEventSourceMapping")
	f.deletedUUIDs = append(f.deletedUUIDs, uuid)
	return f.mappingErrs[uuid]
}

func (f *fakePlatform) PutScheduleRule(_ context.Context, s eventsource.Schedule) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutScheduleRule")
	f.putRules = append(f.putRules, s)
	return f.ruleArn, f.ruleErrs[s.Name]
}

func (f *fakePlatform) AddInvokePermission(_ context.Context, functionName, ruleName, ruleArn string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddInvokePermission")
	f.permissions = append(f.permissions, permissionGrant{functionName: functionName, ruleName: ruleName, ruleArn: ruleArn})
	return f.permissionErrs[ruleName]
}

func (f *fakePlatform) PutScheduleTarget(_ context.Context, ruleName, functionArn string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutScheduleTarget")
	f.targets = append(f.targets, ruleTarget{ruleName: ruleName, functionArn: functionArn})
	return f.targetErrs[ruleName]
}

// fakeFactory hands out one fakePlatform per region.
type fakeFactory struct {
	mu      sync.Mutex
	clients map[string]*fakePlatform
	errs    map[string]error
	opened  []string
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{clients: map[string]*fakePlatform{}}
}

func (f *fakeFactory) client(region string) *fakePlatform {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[region]
	if !ok {
		c = &fakePlatform{}
		f.clients[region] = c
	}
	return c
}

func (f *fakeFactory) Open(_ context.Context, region string) (PlatformClient, error) {
	f.mu.Lock()
	f.opened = append(f.opened, region)
	err := f.errs[region]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.client(region), nil
}

type testUI struct {
	mu      sync.Mutex
	info    []string
	warn    []string
	success []string
}

func (u *testUI) Info(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.info = append(u.info, msg)
}

func (u *testUI) Warn(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.warn = append(u.warn, msg)
}

func (u *testUI) Success(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.success = append(u.success, msg)
}

func (u *testUI) Block(_, _ string, _ []ui.KeyValue) {}

// pipelineRecorder fakes the packaging steps and records their inputs.
type pipelineRecorder struct {
	stageSpecs []staging.Spec
	stageErr   error

	installs   []installCall
	installErr error

	hooks   []hookCall
	hookErr error

	archives   []archiveCall
	payload    []byte
	archiveErr error

	reads       []string
	readPayload []byte
	readOK      bool
	readErr     error

	steps []string
}

type installCall struct {
	stagedDir   string
	dockerImage string
}

type hookCall struct {
	stagedDir   string
	environment string
}

type archiveCall struct {
	stagedDir string
	outPath   string
}

func (p *pipelineRecorder) Stage(spec staging.Spec) error {
	p.steps = append(p.steps, "stage")
	p.stageSpecs = append(p.stageSpecs, spec)
	return p.stageErr
}

func (p *pipelineRecorder) Install(_ context.Context, stagedDir, dockerImage string) error {
	p.steps = append(p.steps, "install")
	p.installs = append(p.installs, installCall{stagedDir: stagedDir, dockerImage: dockerImage})
	return p.installErr
}

func (p *pipelineRecorder) PostBuild(_ context.Context, stagedDir, environment string) error {
	p.steps = append(p.steps, "postbuild")
	p.hooks = append(p.hooks, hookCall{stagedDir: stagedDir, environment: environment})
	return p.hookErr
}

func (p *pipelineRecorder) BuildArchive(_ context.Context, stagedDir, outPath string) ([]byte, error) {
	p.steps = append(p.steps, "archive")
	p.archives = append(p.archives, archiveCall{stagedDir: stagedDir, outPath: outPath})
	return p.payload, p.archiveErr
}

func (p *pipelineRecorder) ReadArchive(path string) ([]byte, bool, error) {
	p.steps = append(p.steps, "read")
	p.reads = append(p.reads, path)
	return p.readPayload, p.readOK, p.readErr
}

func newTestWorkflow(p *pipelineRecorder, factory *fakeFactory) Workflow {
	return NewDeployWorkflow(
		p.Stage,
		p.Install,
		p.PostBuild,
		p.BuildArchive,
		p.ReadArchive,
		factory.Open,
		&testUI{},
	)
}

func boolRef(v bool) *bool    { return &v }
func int32Ref(v int32) *int32 { return &v }
