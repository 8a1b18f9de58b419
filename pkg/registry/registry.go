// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for the given Camunda task
// type, or nil when none matches.
func (r *ActivityRegistry) FindByTaskType(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// Validate checks structural consistency of the registry: IDs and task types
// must be unique and non-empty.
func (r *ActivityRegistry) Validate() error {
	ids := map[string]bool{}
	taskTypes := map[string]bool{}
	for _, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity with empty id or taskType: %q", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id: %s", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true
	}
	return nil
}
