package awsdeploy

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
)

func TestPutScheduleRule(t *testing.T) {
	events := &fakeEventsAPI{putRuleOut: &eventbridge.PutRuleOutput{
		RuleArn: aws.String("arn:aws:events:us-east-1:1:rule/nightly"),
	}}
	client := newTestClient(nil, events, nil, Options{})

	s := eventsource.Schedule{
		Name:        "nightly",
		State:       "DISABLED",
		Expression:  "rate(1 day)",
		Description: "nightly sweep",
	}
	arn, err := client.PutScheduleRule(context.Background(), s)
	if err != nil {
		t.Fatalf("PutScheduleRule() error = %v", err)
	}
	if arn != "arn:aws:events:us-east-1:1:rule/nightly" {
		t.Errorf("arn = %q", arn)
	}

	in := events.putRuleIn
	if stringValue(in.Name) != "nightly" || stringValue(in.ScheduleExpression) != "rate(1 day)" {
		t.Errorf("rule input = %+v", in)
	}
	if in.State != eventbridgetypes.RuleStateDisabled {
		t.Errorf("state = %q", in.State)
	}
	if stringValue(in.Description) != "nightly sweep" {
		t.Errorf("description = %q", stringValue(in.Description))
	}
}

func TestPutScheduleRuleDefaultsToEnabled(t *testing.T) {
	events := &fakeEventsAPI{}
	client := newTestClient(nil, events, nil, Options{})

	s := eventsource.Schedule{Name: "nightly", Expression: "rate(1 day)"}
	if _, err := client.PutScheduleRule(context.Background(), s); err != nil {
		t.Fatalf("PutScheduleRule() error = %v", err)
	}
	if events.putRuleIn.State != eventbridgetypes.RuleStateEnabled {
		t.Errorf("state = %q, want enabled default", events.putRuleIn.State)
	}
	if events.putRuleIn.Description != nil {
		t.Error("empty description must be omitted")
	}
}

func TestAddInvokePermission(t *testing.T) {
	fake := &fakeLambdaAPI{}
	client := newTestClient(fake, nil, nil, Options{})

	err := client.AddInvokePermission(context.Background(), "orders-prod", "data.sync", "arn:rule")
	if err != nil {
		t.Fatalf("AddInvokePermission() error = %v", err)
	}

	in := fake.addPermissionIn
	if stringValue(in.FunctionName) != "orders-prod" {
		t.Errorf("function = %q", stringValue(in.FunctionName))
	}
	if stringValue(in.Action) != "lambda:InvokeFunction" {
		t.Errorf("action = %q", stringValue(in.Action))
	}
	if stringValue(in.Principal) != "events.amazonaws.com" {
		t.Errorf("principal = %q", stringValue(in.Principal))
	}
	if stringValue(in.SourceArn) != "arn:rule" {
		t.Errorf("source arn = %q", stringValue(in.SourceArn))
	}
	if stringValue(in.StatementId) != "data-sync-invoke" {
		t.Errorf("statement id = %q, want sanitized rule name", stringValue(in.StatementId))
	}
}

func TestAddInvokePermissionToleratesExistingGrant(t *testing.T) {
	fake := &fakeLambdaAPI{addPermissionErr: &lambdatypes.ResourceConflictException{}}
	client := newTestClient(fake, nil, nil, Options{})

	if err := client.AddInvokePermission(context.Background(), "orders", "nightly", "arn:rule"); err != nil {
		t.Fatalf("re-granting an existing permission must not fail: %v", err)
	}
}

func TestAddInvokePermissionOtherErrorPropagates(t *testing.T) {
	fake := &fakeLambdaAPI{addPermissionErr: errors.New("access denied")}
	client := newTestClient(fake, nil, nil, Options{})

	if err := client.AddInvokePermission(context.Background(), "orders", "nightly", "arn:rule"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPutScheduleTarget(t *testing.T) {
	events := &fakeEventsAPI{}
	client := newTestClient(nil, events, nil, Options{})

	if err := client.PutScheduleTarget(context.Background(), "nightly", "arn:fn"); err != nil {
		t.Fatalf("PutScheduleTarget() error = %v", err)
	}

	in := events.putTargetsIn
	if stringValue(in.Rule) != "nightly" {
		t.Errorf("rule = %q", stringValue(in.Rule))
	}
	if len(in.Targets) != 1 || stringValue(in.Targets[0].Arn) != "arn:fn" {
		t.Errorf("targets = %+v", in.Targets)
	}
}

func TestPutScheduleTargetFailedEntry(t *testing.T) {
	events := &fakeEventsAPI{putTargetsOut: &eventbridge.PutTargetsOutput{
		FailedEntryCount: 1,
		FailedEntries: []eventbridgetypes.PutTargetsResultEntry{
			{ErrorMessage: aws.String("no permission")},
		},
	}}
	client := newTestClient(nil, events, nil, Options{})

	err := client.PutScheduleTarget(context.Background(), "nightly", "arn:fn")
	if err == nil {
		t.Fatal("failed target entry must surface as an error")
	}
}
