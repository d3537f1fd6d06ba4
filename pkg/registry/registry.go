// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*TaskRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TaskRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Validate checks structural requirements and compiles every declared
// input/output schema, so a malformed schema is caught at registry update
// time instead of at job time.
func (r *TaskRegistry) Validate() error {
	if len(r.Tasks) == 0 {
		return fmt.Errorf("registry contains no tasks")
	}

	ids := make(map[string]bool, len(r.Tasks))
	for _, task := range r.Tasks {
		if task.ID == "" {
			return fmt.Errorf("task missing required field: id")
		}
		if ids[task.ID] {
			return fmt.Errorf("duplicate task id: %s", task.ID)
		}
		ids[task.ID] = true

		if task.DisplayName == "" {
			return fmt.Errorf("task %s missing required field: displayName", task.ID)
		}
		if task.TaskType == "" {
			return fmt.Errorf("task %s missing required field: taskType", task.ID)
		}
		if task.Category == "" {
			return fmt.Errorf("task %s missing required field: category", task.ID)
		}

		if err := compileSchema(task.ID, "inputSchema", task.InputSchema); err != nil {
			return err
		}
		if err := compileSchema(task.ID, "outputSchema", task.OutputSchema); err != nil {
			return err
		}
	}
	return nil
}

func compileSchema(taskID, name string, schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return fmt.Errorf("task %s has invalid %s: %w", taskID, name, err)
	}
	return nil
}
