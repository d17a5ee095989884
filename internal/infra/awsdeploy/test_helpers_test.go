package awsdeploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeLambdaAPI records the last input per operation and returns canned
// responses.
type fakeLambdaAPI struct {
	getIn  *lambdasdk.GetFunctionInput
	getOut *lambdasdk.GetFunctionOutput
	getErr error

	createIn  *lambdasdk.CreateFunctionInput
	createOut *lambdasdk.CreateFunctionOutput
	createErr error

	updateCodeIn  *lambdasdk.UpdateFunctionCodeInput
	updateCodeOut *lambdasdk.UpdateFunctionCodeOutput
	updateCodeErr error

	updateConfigIn  *lambdasdk.UpdateFunctionConfigurationInput
	updateConfigErr error

	listPages   [][]lambdatypes.EventSourceMappingConfiguration
	listCalls   int
	listErr     error
	listNames   []string
	listMarkers []*string

	createMappingIn  *lambdasdk.CreateEventSourceMappingInput
	createMappingErr error

	updateMappingIn  *lambdasdk.UpdateEventSourceMappingInput
	updateMappingErr error

	deleteMappingIn  *lambdasdk.DeleteEventSourceMappingInput
	deleteMappingErr error

	addPermissionIn  *lambdasdk.AddPermissionInput
	addPermissionErr error
}

func (f *fakeLambdaAPI) GetFunction(ctx context.Context, in *lambdasdk.GetFunctionInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.GetFunctionOutput, error) {
	f.getIn = in
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut != nil {
		return f.getOut, nil
	}
	return &lambdasdk.GetFunctionOutput{}, nil
}

func (f *fakeLambdaAPI) CreateFunction(ctx context.Context, in *lambdasdk.CreateFunctionInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.CreateFunctionOutput, error) {
	f.createIn = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &lambdasdk.CreateFunctionOutput{}, nil
}

func (f *fakeLambdaAPI) UpdateFunctionCode(ctx context.Context, in *lambdasdk.UpdateFunctionCodeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.UpdateFunctionCodeOutput, error) {
	f.updateCodeIn = in
	if f.updateCodeErr != nil {
		return nil, f.updateCodeErr
	}
	if f.updateCodeOut != nil {
		return f.updateCodeOut, nil
	}
	return &lambdasdk.UpdateFunctionCodeOutput{}, nil
}

func (f *fakeLambdaAPI) UpdateFunctionConfiguration(ctx context.Context, in *lambdasdk.UpdateFunctionConfigurationInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.UpdateFunctionConfigurationOutput, error) {
	f.updateConfigIn = in
	if f.updateConfigErr != nil {
		return nil, f.updateConfigErr
	}
	return &lambdasdk.UpdateFunctionConfigurationOutput{}, nil
}

func (f *fakeLambdaAPI) ListEventSourceMappings(ctx context.Context, in *lambdasdk.ListEventSourceMappingsInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.ListEventSourceMappingsOutput, error) {
	f.listNames = append(f.listNames, stringValue(in.FunctionName))
	f.listMarkers = append(f.listMarkers, in.Marker)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listCalls >= len(f.listPages) {
		return &lambdasdk.ListEventSourceMappingsOutput{}, nil
	}
	page := f.listPages[f.listCalls]
	f.listCalls++
	out := &lambdasdk.ListEventSourceMappingsOutput{EventSourceMappings: page}
	if f.listCalls < len(f.listPages) {
		marker := fmt.Sprintf("page-%d", f.listCalls)
		out.NextMarker = &marker
	}
	return out, nil
}

func (f *fakeLambdaAPI) CreateEventSourceMapping(ctx context.Context, in *lambdasdk.CreateEventSourceMappingInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.CreateEventSourceMappingOutput, error) {
	f.createMappingIn = in
	if f.createMappingErr != nil {
		return nil, f.createMappingErr
	}
	return &lambdasdk.CreateEventSourceMappingOutput{}, nil
}

func (f *fakeLambdaAPI) UpdateEventSourceMapping(ctx context.Context, in *lambdasdk.UpdateEventSourceMappingInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.UpdateEventSourceMappingOutput, error) {
	f.updateMappingIn = in
	if f.updateMappingErr != nil {
		return nil, f.updateMappingErr
	}
	return &lambdasdk.UpdateEventSourceMappingOutput{}, nil
}

func (f *fakeLambdaAPI) DeleteEventSourceMapping(ctx context.Context, in *lambdasdk.DeleteEventSourceMappingInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.DeleteEventSourceMappingOutput, error) {
	f.deleteMappingIn = in
	if f.deleteMappingErr != nil {
		return nil, f.deleteMappingErr
	}
	return &lambdasdk.DeleteEventSourceMappingOutput{}, nil
}

func (f *fakeLambdaAPI) AddPermission(ctx context.Context, in *lambdasdk.AddPermissionInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.AddPermissionOutput, error) {
	f.addPermissionIn = in
	if f.addPermissionErr != nil {
		return nil, f.addPermissionErr
	}
	return &lambdasdk.AddPermissionOutput{}, nil
}

type fakeEventsAPI struct {
	putRuleIn  *eventbridge.PutRuleInput
	putRuleOut *eventbridge.PutRuleOutput
	putRuleErr error

	putTargetsIn  *eventbridge.PutTargetsInput
	putTargetsOut *eventbridge.PutTargetsOutput
	putTargetsErr error
}

func (f *fakeEventsAPI) PutRule(ctx context.Context, in *eventbridge.PutRuleInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutRuleOutput, error) {
	f.putRuleIn = in
	if f.putRuleErr != nil {
		return nil, f.putRuleErr
	}
	if f.putRuleOut != nil {
		return f.putRuleOut, nil
	}
	return &eventbridge.PutRuleOutput{}, nil
}

func (f *fakeEventsAPI) PutTargets(ctx context.Context, in *eventbridge.PutTargetsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutTargetsOutput, error) {
	f.putTargetsIn = in
	if f.putTargetsErr != nil {
		return nil, f.putTargetsErr
	}
	if f.putTargetsOut != nil {
		return f.putTargetsOut, nil
	}
	return &eventbridge.PutTargetsOutput{}, nil
}

type fakeS3API struct {
	putObjectIn  *s3.PutObjectInput
	putObjectErr error
}

func (f *fakeS3API) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putObjectIn = in
	if f.putObjectErr != nil {
		return nil, f.putObjectErr
	}
	return &s3.PutObjectOutput{}, nil
}

func newTestClient(l *fakeLambdaAPI, e *fakeEventsAPI, s *fakeS3API, opts Options) *Client {
	if l == nil {
		l = &fakeLambdaAPI{}
	}
	if e == nil {
		e = &fakeEventsAPI{}
	}
	if s == nil {
		s = &fakeS3API{}
	}
	return &Client{lambda: l, events: e, s3: s, opts: opts}
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
