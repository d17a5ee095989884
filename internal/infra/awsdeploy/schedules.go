// Where: internal/infra/awsdeploy/schedules.go
// What: Schedule rule, target, and invoke-permission operations.
// Why: Rule names are the stable key; every call here is an upsert.
package awsdeploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
	"github.com/skiffhq/skiff-cli/internal/domain/function"
)

const schedulerPrincipal = "events.amazonaws.com"

// PutScheduleRule creates or replaces the named rule and returns its arn.
func (c *Client) PutScheduleRule(ctx context.Context, s eventsource.Schedule) (string, error) {
	in := &eventbridge.PutRuleInput{
		Name:               aws.String(s.Name),
		ScheduleExpression: aws.String(s.Expression),
		State:              mapRuleState(s.State),
	}
	if s.Description != "" {
		in.Description = aws.String(s.Description)
	}

	out, err := c.events.PutRule(ctx, in)
	if err != nil {
		return "", fmt.Errorf("put schedule rule %s: %w", s.Name, err)
	}
	return aws.ToString(out.RuleArn), nil
}

// AddInvokePermission grants the scheduler a standing permission to invoke
// the function, scoped to the rule. Re-granting an existing permission is
// not an error.
func (c *Client) AddInvokePermission(ctx context.Context, functionName, ruleName, ruleArn string) error {
	_, err := c.lambda.AddPermission(ctx, &lambdasdk.AddPermissionInput{
		FunctionName: aws.String(functionName),
		StatementId:  aws.String(statementID(ruleName)),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String(schedulerPrincipal),
		SourceArn:    aws.String(ruleArn),
	})
	if err != nil && !IsConflict(err) {
		return fmt.Errorf("add invoke permission for rule %s: %w", ruleName, err)
	}
	return nil
}

// PutScheduleTarget points the rule at the function.
func (c *Client) PutScheduleTarget(ctx context.Context, ruleName, functionArn string) error {
	out, err := c.events.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule: aws.String(ruleName),
		Targets: []eventbridgetypes.Target{{
			Id:  aws.String("1"),
			Arn: aws.String(functionArn),
		}},
	})
	if err != nil {
		return fmt.Errorf("put schedule target %s: %w", ruleName, err)
	}
	if out.FailedEntryCount > 0 && len(out.FailedEntries) > 0 {
		return fmt.Errorf("put schedule target %s: %s", ruleName, aws.ToString(out.FailedEntries[0].ErrorMessage))
	}
	return nil
}

func mapRuleState(state string) eventbridgetypes.RuleState {
	if strings.EqualFold(state, "DISABLED") {
		return eventbridgetypes.RuleStateDisabled
	}
	return eventbridgetypes.RuleStateEnabled
}

// statementID derives a policy statement id from the rule name. Rule names
// allow dots, statement ids do not.
func statementID(ruleName string) string {
	return function.SanitizeName(ruleName) + "-invoke"
}
