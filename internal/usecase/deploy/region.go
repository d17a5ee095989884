// Where: internal/usecase/deploy/region.go
// What: Per-region function rollout.
// Why: One region's failure must never block or abort another's.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
)

// RegionResult aggregates one region's rollout outcome. Mapping and
// schedule results are populated even when some of them failed.
type RegionResult struct {
	Region      string
	Created     bool
	FunctionArn string
	Mappings    []MappingResult
	Schedules   []ScheduleResult
	Err         error
}

// deployRegion opens a client for the region and converges the function
// there. A fresh region takes the create path, an existing function the
// update path.
func (w Workflow) deployRegion(ctx context.Context, req Request, payload []byte, region string) RegionResult {
	result := RegionResult{Region: region}

	client, err := w.Clients(ctx, region)
	if err != nil {
		result.Err = fmt.Errorf("connect: %w", err)
		return result
	}

	exists, err := client.FunctionExists(ctx, req.Config.Name)
	if err != nil {
		result.Err = err
		return result
	}
	if exists {
		w.info(fmt.Sprintf("[%s] Updating %s", region, req.Config.Name))
		return w.updateExisting(ctx, client, req, payload, result)
	}
	w.info(fmt.Sprintf("[%s] Creating %s", region, req.Config.Name))
	return w.createNew(ctx, client, req, payload, result)
}

// createNew deploys the function with its full configuration and code
// in one call, then converges bindings. There is nothing remote yet, so
// mappings reconcile against an empty existing set and both binding
// kinds run concurrently.
func (w Workflow) createNew(ctx context.Context, client PlatformClient, req Request, payload []byte, result RegionResult) RegionResult {
	result.Created = true

	arn, err := client.CreateFunction(ctx, req.Config, payload)
	if err != nil {
		result.Err = err
		return result
	}
	result.FunctionArn = arn
	w.success(fmt.Sprintf("[%s] Created %s", result.Region, arn))

	if req.ManageBindings {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			plan := eventsource.BuildPlan(req.Desired.Mappings, nil)
			result.Mappings = applyMappingPlan(ctx, client, req.Config.Name, plan)
		}()
		go func() {
			defer wg.Done()
			result.Schedules = applySchedules(ctx, client, req.Config.Name, arn, req.Desired.Schedules)
		}()
		wg.Wait()
	}

	result.Err = bindingErr(result)
	return result
}

// updateExisting pushes new code and configuration while the existing
// mappings are listed and reconciled in parallel. Schedules wait for the
// code update because they need the returned function arn.
func (w Workflow) updateExisting(ctx context.Context, client PlatformClient, req Request, payload []byte, result RegionResult) RegionResult {
	var functionErr, listErr error

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		arn, err := client.UpdateFunctionCode(ctx, req.Config.Name, payload, req.Config.Publish)
		if err != nil {
			functionErr = err
			return
		}
		result.FunctionArn = arn
		if err := client.UpdateFunctionConfiguration(ctx, req.Config); err != nil {
			functionErr = err
			return
		}
		if req.ManageBindings {
			result.Schedules = applySchedules(ctx, client, req.Config.Name, arn, req.Desired.Schedules)
		}
	}()
	if req.ManageBindings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			existing, err := client.ListEventSourceMappings(ctx, req.Config.Name)
			if err != nil {
				listErr = err
				return
			}
			plan := eventsource.BuildPlan(req.Desired.Mappings, existing)
			result.Mappings = applyMappingPlan(ctx, client, req.Config.Name, plan)
		}()
	}
	wg.Wait()

	if result.FunctionArn != "" {
		w.success(fmt.Sprintf("[%s] Updated %s", result.Region, result.FunctionArn))
	}
	result.Err = errors.Join(functionErr, listErr, bindingErr(result))
	return result
}

// bindingErr joins every failed mapping and schedule operation so the
// region error names each one.
func bindingErr(result RegionResult) error {
	var errs []error
	for _, m := range result.Mappings {
		if m.Err != nil {
			errs = append(errs, fmt.Errorf("%s mapping %s: %w", m.Action, m.Key, m.Err))
		}
	}
	for _, s := range result.Schedules {
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("schedule %s: %w", s.Schedule.Name, s.Err))
		}
	}
	return errors.Join(errs...)
}
