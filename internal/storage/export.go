package storage

import (
	"gopkg.in/yaml.v3"

	"github.com/Balama2520/smart-mini-task-manager/internal/store"
)

// ExportYAML serializes the full task list as a YAML sequence, the
// human-readable interchange form. The result re-imports cleanly through
// the store's merge path.
func ExportYAML(tasks []store.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []store.Task{}
	}
	return yaml.Marshal(tasks)
}
