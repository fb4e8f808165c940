// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// FindByTaskType returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists the registered task types in registry order.
func (r *ActivityRegistry) TaskTypes() []string {
	types := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		types = append(types, a.TaskType)
	}
	return types
}

// Validate checks structural consistency of the registry itself.
func (r *ActivityRegistry) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("registry version is required")
	}

	seen := make(map[string]string, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity '%s' must have id and taskType", a.ID)
		}
		if prev, dup := seen[a.TaskType]; dup {
			return fmt.Errorf("task type '%s' registered by both '%s' and '%s'", a.TaskType, prev, a.ID)
		}
		seen[a.TaskType] = a.ID

		if a.InputSchema != nil {
			if _, err := compileSchema(a.InputSchema); err != nil {
				return fmt.Errorf("activity '%s' input schema: %w", a.ID, err)
			}
		}
		if a.OutputSchema != nil {
			if _, err := compileSchema(a.OutputSchema); err != nil {
				return fmt.Errorf("activity '%s' output schema: %w", a.ID, err)
			}
		}
	}
	return nil
}

// ValidatePayload validates a job payload against the input schema of the
// activity registered for taskType. Payloads for unregistered task types or
// activities without an input schema pass.
func (r *ActivityRegistry) ValidatePayload(taskType string, payload map[string]interface{}) error {
	activity, ok := r.FindByTaskType(taskType)
	if !ok || activity.InputSchema == nil {
		return nil
	}

	schema, err := compileSchema(activity.InputSchema)
	if err != nil {
		return fmt.Errorf("activity '%s' input schema: %w", activity.ID, err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("payload invalid for '%s': %v", taskType, msgs)
	}
	return nil
}

func compileSchema(raw map[string]interface{}) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(raw))
}
