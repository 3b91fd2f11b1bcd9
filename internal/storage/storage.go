// Package storage is the persistence collaborator: a key-value blob store
// on the local filesystem holding the task list and session metadata as
// JSON. Reads recover from missing or corrupt blobs by substituting
// defaults; writes are atomic.
package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/Balama2520/smart-mini-task-manager/internal/store"
)

const (
	tasksFile = "tasks.json"
	metaFile  = "meta.json"
)

// Dir is a blob store rooted at a single directory.
type Dir struct {
	Root string
}

// Open points a blob store at root. Nothing is created until the first
// save.
func Open(root string) *Dir {
	return &Dir{Root: expandHome(root)}
}

// LoadTasks reads the persisted task list. Missing or malformed data
// yields an empty list, never an error.
func (d *Dir) LoadTasks() []store.Task {
	b, err := os.ReadFile(filepath.Join(d.Root, tasksFile))
	if err != nil {
		return nil
	}
	var tasks []store.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil
	}
	// Hand-edited blobs may carry arbitrary enum values; the store
	// invariant wants them coerced before anything queries them.
	for i := range tasks {
		tasks[i] = tasks[i].Normalize()
	}
	return tasks
}

// SaveTasks writes the full task list.
func (d *Dir) SaveTasks(tasks []store.Task) error {
	if tasks == nil {
		tasks = []store.Task{}
	}
	return d.writeBlob(tasksFile, tasks)
}

// LoadMeta reads the session metadata, substituting an empty Meta when
// the blob is missing or corrupt.
func (d *Dir) LoadMeta() *store.Meta {
	b, err := os.ReadFile(filepath.Join(d.Root, metaFile))
	if err != nil {
		return store.NewMeta()
	}
	var m store.Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return store.NewMeta()
	}
	if m.Completions == nil {
		m.Completions = map[string]int{}
	}
	return &m
}

// SaveMeta writes the session metadata.
func (d *Dir) SaveMeta(m *store.Meta) error {
	return d.writeBlob(metaFile, m)
}

func (d *Dir) writeBlob(name string, v any) error {
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return atomic.WriteFile(filepath.Join(d.Root, name), bytes.NewReader(b))
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
