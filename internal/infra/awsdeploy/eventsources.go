// Where: internal/infra/awsdeploy/eventsources.go
// What: Event-source mapping operations.
// Why: The reconciler plans against the domain shape, not SDK types.
package awsdeploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
)

// ListEventSourceMappings returns every mapping bound to the function,
// following pagination markers.
func (c *Client) ListEventSourceMappings(ctx context.Context, functionName string) ([]eventsource.Mapping, error) {
	var mappings []eventsource.Mapping
	var marker *string
	for {
		out, err := c.lambda.ListEventSourceMappings(ctx, &lambdasdk.ListEventSourceMappingsInput{
			FunctionName: aws.String(functionName),
			Marker:       marker,
		})
		if err != nil {
			return nil, fmt.Errorf("list event source mappings for %s: %w", functionName, err)
		}
		for _, m := range out.EventSourceMappings {
			mappings = append(mappings, mapRemoteMapping(m))
		}
		if out.NextMarker == nil {
			return mappings, nil
		}
		marker = out.NextMarker
	}
}

// CreateEventSourceMapping binds a new source to the function.
func (c *Client) CreateEventSourceMapping(ctx context.Context, functionName string, m eventsource.Mapping) error {
	_, err := c.lambda.CreateEventSourceMapping(ctx, &lambdasdk.CreateEventSourceMappingInput{
		FunctionName:     aws.String(functionName),
		EventSourceArn:   aws.String(m.EventSourceArn),
		Enabled:          m.Enabled,
		BatchSize:        m.BatchSize,
		StartingPosition: lambdatypes.EventSourcePosition(m.StartingPosition),
	})
	if err != nil {
		return fmt.Errorf("create event source mapping %s: %w", m.EventSourceArn, err)
	}
	return nil
}

// UpdateEventSourceMapping applies the carried fields to an existing
// mapping by its identity token. Nil fields are omitted from the call.
func (c *Client) UpdateEventSourceMapping(ctx context.Context, op eventsource.UpdateOp) error {
	_, err := c.lambda.UpdateEventSourceMapping(ctx, &lambdasdk.UpdateEventSourceMappingInput{
		UUID:      aws.String(op.UUID),
		Enabled:   op.Enabled,
		BatchSize: op.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("update event source mapping %s: %w", op.UUID, err)
	}
	return nil
}

// DeleteEventSourceMapping removes a mapping by its identity token.
func (c *Client) DeleteEventSourceMapping(ctx context.Context, uuid string) error {
	_, err := c.lambda.DeleteEventSourceMapping(ctx, &lambdasdk.DeleteEventSourceMappingInput{
		UUID: aws.String(uuid),
	})
	if err != nil {
		return fmt.Errorf("delete event source mapping %s: %w", uuid, err)
	}
	return nil
}

func mapRemoteMapping(m lambdatypes.EventSourceMappingConfiguration) eventsource.Mapping {
	enabled := stateEnabled(aws.ToString(m.State))
	return eventsource.Mapping{
		EventSourceArn: aws.ToString(m.EventSourceArn),
		Enabled:        &enabled,
		BatchSize:      m.BatchSize,
		UUID:           aws.ToString(m.UUID),
	}
}

// stateEnabled folds the remote lifecycle states into the desired-state
// boolean. A mapping on its way to enabled counts as enabled.
func stateEnabled(state string) bool {
	return state == "Enabled" || state == "Enabling"
}
