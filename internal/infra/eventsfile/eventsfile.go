// Where: internal/infra/eventsfile/eventsfile.go
// What: Loader for the declarative event-source bindings document.
// Why: Reject malformed declarations before any remote call is attempted.
package eventsfile

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/skiffhq/skiff-cli/internal/domain/eventsource"
)

//go:embed schema.json
var schemaDocument string

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Load reads and validates the bindings document at path.
func Load(path string) (eventsource.DesiredState, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return eventsource.DesiredState{}, fmt.Errorf("read event sources file %s: %w", path, err)
	}
	return Parse(payload)
}

// LoadOptional behaves like Load but reports a missing file as an empty
// desired state instead of an error.
func LoadOptional(path string) (eventsource.DesiredState, bool, error) {
	desired, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return eventsource.DesiredState{}, false, nil
		}
		return eventsource.DesiredState{}, false, err
	}
	return desired, true, nil
}

// Parse validates payload against the bindings schema and decodes it into
// the normalized desired-state form.
func Parse(payload []byte) (eventsource.DesiredState, error) {
	sch, err := loadSchema()
	if err != nil {
		return eventsource.DesiredState{}, err
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return eventsource.DesiredState{}, fmt.Errorf("parse event sources document: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return eventsource.DesiredState{}, fmt.Errorf("validate event sources document: %w", err)
	}

	var desired eventsource.DesiredState
	if err := json.Unmarshal(payload, &desired); err != nil {
		return eventsource.DesiredState{}, err
	}
	return desired, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("eventsources.schema.json", schemaDocument)
	})
	return compiledSchema, schemaErr
}
