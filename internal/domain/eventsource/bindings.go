// Where: internal/domain/eventsource/bindings.go
// What: Event-source mapping and schedule binding records.
// Why: One canonical desired-state shape regardless of declarative form.
package eventsource

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mapping binds a streaming or queue source to the function. Desired
// mappings leave Enabled and BatchSize nil when unspecified; remote
// mappings carry the platform-assigned UUID.
type Mapping struct {
	EventSourceArn   string `json:"EventSourceArn"`
	Enabled          *bool  `json:"Enabled,omitempty"`
	BatchSize        *int32 `json:"BatchSize,omitempty"`
	StartingPosition string `json:"StartingPosition,omitempty"`
	UUID             string `json:"-"`
}

// Schedule is a declarative scheduled trigger, keyed by rule name.
// FunctionArn is filled once the schedule is bound to a function.
type Schedule struct {
	Name        string `json:"ScheduleName"`
	State       string `json:"ScheduleState"`
	Expression  string `json:"ScheduleExpression"`
	Description string `json:"ScheduleDescription,omitempty"`
	FunctionArn string `json:"-"`
}

// DesiredState is the normalized declarative record: mapping and schedule
// lists, never nil.
type DesiredState struct {
	Mappings  []Mapping
	Schedules []Schedule
}

type desiredDocument struct {
	EventSourceMappings []Mapping  `json:"EventSourceMappings"`
	ScheduleEvents      []Schedule `json:"ScheduleEvents"`
}

// UnmarshalJSON accepts either the legacy bare-array form, interpreted as
// the mapping list with no schedules, or the object form with optional
// EventSourceMappings and ScheduleEvents sub-lists.
func (s *DesiredState) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("empty event source document")
	}

	if trimmed[0] == '[' {
		var mappings []Mapping
		if err := json.Unmarshal(data, &mappings); err != nil {
			return fmt.Errorf("parse legacy mapping list: %w", err)
		}
		*s = normalized(DesiredState{Mappings: mappings})
		return nil
	}

	var doc desiredDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse event source document: %w", err)
	}
	*s = normalized(DesiredState{Mappings: doc.EventSourceMappings, Schedules: doc.ScheduleEvents})
	return nil
}

// Empty reports whether nothing is declared.
func (s DesiredState) Empty() bool {
	return len(s.Mappings) == 0 && len(s.Schedules) == 0
}

func normalized(s DesiredState) DesiredState {
	if s.Mappings == nil {
		s.Mappings = []Mapping{}
	}
	if s.Schedules == nil {
		s.Schedules = []Schedule{}
	}
	return s
}
