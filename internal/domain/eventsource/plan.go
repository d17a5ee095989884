// Where: internal/domain/eventsource/plan.go
// What: Diff of desired event-source mappings against remote state.
// Why: Deploys must converge without duplicating or churning mappings.
package eventsource

const (
	defaultBatchSize        int32 = 100
	defaultStartingPosition       = "LATEST"
)

// UpdateOp modifies an existing mapping identified by its UUID. Nil
// fields are left untouched remotely. Starting position is immutable
// once created and never carried here.
type UpdateOp struct {
	UUID      string
	Enabled   *bool
	BatchSize *int32
}

// DeleteOp removes an existing mapping by UUID.
type DeleteOp struct {
	UUID string
}

// Plan is the operation set that transforms the existing mapping set
// into the desired one. Creates carry fully defaulted mappings.
type Plan struct {
	Creates []Mapping
	Updates []UpdateOp
	Deletes []DeleteOp
}

// Empty reports whether the plan contains no operations.
func (p Plan) Empty() bool {
	return p.Size() == 0
}

// Size returns the total operation count.
func (p Plan) Size() int {
	return len(p.Creates) + len(p.Updates) + len(p.Deletes)
}

// BuildPlan diffs desired against existing, matching by exact source-arn
// equality, first match wins. Duplicate arns within either list are
// undefined behavior. A desired mapping whose settings already agree
// with the existing one emits nothing, so replanning a converged state
// yields an empty plan.
func BuildPlan(desired, existing []Mapping) Plan {
	var plan Plan
	for _, want := range desired {
		found, ok := findByArn(existing, want.EventSourceArn)
		if !ok {
			plan.Creates = append(plan.Creates, withCreateDefaults(want))
			continue
		}
		if needsUpdate(want, found) {
			plan.Updates = append(plan.Updates, UpdateOp{
				UUID:      found.UUID,
				Enabled:   want.Enabled,
				BatchSize: want.BatchSize,
			})
		}
	}
	for _, have := range existing {
		if _, ok := findByArn(desired, have.EventSourceArn); !ok {
			plan.Deletes = append(plan.Deletes, DeleteOp{UUID: have.UUID})
		}
	}
	return plan
}

func findByArn(mappings []Mapping, arn string) (Mapping, bool) {
	for _, m := range mappings {
		if m.EventSourceArn == arn {
			return m, true
		}
	}
	return Mapping{}, false
}

// needsUpdate compares only the fields the desired mapping specifies; an
// omitted field never forces an update.
func needsUpdate(want, have Mapping) bool {
	if want.Enabled != nil && (have.Enabled == nil || *want.Enabled != *have.Enabled) {
		return true
	}
	if want.BatchSize != nil && (have.BatchSize == nil || *want.BatchSize != *have.BatchSize) {
		return true
	}
	return false
}

func withCreateDefaults(m Mapping) Mapping {
	if m.Enabled == nil {
		m.Enabled = boolPtr(false)
	}
	if m.BatchSize == nil {
		m.BatchSize = int32Ptr(defaultBatchSize)
	}
	if m.StartingPosition == "" {
		m.StartingPosition = defaultStartingPosition
	}
	return m
}

func boolPtr(v bool) *bool    { return &v }
func int32Ptr(v int32) *int32 { return &v }
