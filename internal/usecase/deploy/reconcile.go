// Where: internal/usecase/deploy/reconcile.go
// What: Applies event-source plans and schedule upserts against one region.
// Why: Mapping operations are independent; schedule steps are not.
package deploy

import (
	"context"
	"sync"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
)

// Mapping result actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// MappingResult records one event-source mapping operation. Key is the
// source arn for creates and the mapping uuid otherwise.
type MappingResult struct {
	Action string
	Key    string
	Err    error
}

// ScheduleResult records one schedule upsert. On success the schedule
// carries the function arn it was pointed at.
type ScheduleResult struct {
	Schedule eventsource.Schedule
	Err      error
}

// applyMappingPlan runs every plan operation concurrently and collects
// all outcomes; one binding's failure never aborts its siblings.
func applyMappingPlan(ctx context.Context, client PlatformClient, functionName string, plan eventsource.Plan) []MappingResult {
	if plan.Empty() {
		return nil
	}

	results := make([]MappingResult, plan.Size())
	var wg sync.WaitGroup
	slot := 0

	for _, m := range plan.Creates {
		wg.Add(1)
		go func(idx int, m eventsource.Mapping) {
			defer wg.Done()
			err := client.CreateEventSourceMapping(ctx, functionName, m)
			results[idx] = MappingResult{Action: ActionCreate, Key: m.EventSourceArn, Err: err}
		}(slot, m)
		slot++
	}
	for _, op := range plan.Updates {
		wg.Add(1)
		go func(idx int, op eventsource.UpdateOp) {
			defer wg.Done()
			err := client.UpdateEventSourceMapping(ctx, op)
			results[idx] = MappingResult{Action: ActionUpdate, Key: op.UUID, Err: err}
		}(slot, op)
		slot++
	}
	for _, op := range plan.Deletes {
		wg.Add(1)
		go func(idx int, op eventsource.DeleteOp) {
			defer wg.Done()
			err := client.DeleteEventSourceMapping(ctx, op.UUID)
			results[idx] = MappingResult{Action: ActionDelete, Key: op.UUID, Err: err}
		}(slot, op)
		slot++
	}

	wg.Wait()
	return results
}

// applySchedules upserts the declared schedules in order. The first
// failure stops the series; later schedules are not attempted.
func applySchedules(ctx context.Context, client PlatformClient, functionName, functionArn string, schedules []eventsource.Schedule) []ScheduleResult {
	var results []ScheduleResult
	for _, s := range schedules {
		resolved, err := upsertSchedule(ctx, client, functionName, functionArn, s)
		results = append(results, ScheduleResult{Schedule: resolved, Err: err})
		if err != nil {
			break
		}
	}
	return results
}

// upsertSchedule chains the three steps that bind a rule to the
// function: the rule itself, the invoke permission, then the target.
func upsertSchedule(ctx context.Context, client PlatformClient, functionName, functionArn string, s eventsource.Schedule) (eventsource.Schedule, error) {
	ruleArn, err := client.PutScheduleRule(ctx, s)
	if err != nil {
		return s, err
	}
	if err := client.AddInvokePermission(ctx, functionName, s.Name, ruleArn); err != nil {
		return s, err
	}
	if err := client.PutScheduleTarget(ctx, s.Name, functionArn); err != nil {
		return s, err
	}
	s.FunctionArn = functionArn
	return s, nil
}
