// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"claimcheck/internal/common/validation"
)

//go:embed activities.json
var embedded []byte

// Load returns the registry compiled into the binary.
func Load() (*ActivityRegistry, error) {
	return parse(embedded)
}

// LoadRegistry reads a registry from disk, for overrides during development.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks naming, uniqueness and timeouts. Retries must be zero:
// verification calls are never retried automatically.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			return fmt.Errorf("activity %q: %w", a.ID, err)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %s: taskType is required", a.ID)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("activity %s: duplicate taskType %s", a.ID, a.TaskType)
		}
		seen[a.TaskType] = true
		if _, err := a.TimeoutDuration(); err != nil {
			return err
		}
		if a.Retries != 0 {
			return fmt.Errorf("activity %s: retries must be 0, got %d", a.ID, a.Retries)
		}
	}
	return nil
}

// Lookup finds an activity by task type.
func (r *ActivityRegistry) Lookup(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// ByCategory groups activities, each group sorted by task type.
func (r *ActivityRegistry) ByCategory() map[string][]Activity {
	out := make(map[string][]Activity)
	for _, a := range r.Activities {
		out[a.Category] = append(out[a.Category], a)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].TaskType < list[j].TaskType })
	}
	return out
}
