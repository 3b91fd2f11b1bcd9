package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Balama2520/smart-mini-task-manager/internal/store"
)

func TestTasksRoundTrip(t *testing.T) {
	dir := Open(t.TempDir())
	tasks := []store.Task{
		{ID: "A1", Text: "first", Category: "work", Priority: "high", Due: "2026-04-01", Created: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
		{ID: "A2", Text: "second", Category: "personal", Priority: "low", Completed: true, Created: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)},
	}
	if err := dir.SaveTasks(tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	got := dir.LoadTasks()
	if len(got) != 2 {
		t.Fatalf("loaded %d tasks, want 2", len(got))
	}
	if got[0].ID != "A1" || got[0].Due != "2026-04-01" || !got[1].Completed {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestLoadTasksNormalizesHandEditedEnums(t *testing.T) {
	root := t.TempDir()
	blob := `[
		{"id": "H1", "text": "edited by hand", "category": "WORK", "priority": "URGENT", "due": "someday", "created": "2026-03-14T10:00:00Z"}
	]`
	if err := os.WriteFile(filepath.Join(root, "tasks.json"), []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	got := Open(root).LoadTasks()
	if len(got) != 1 {
		t.Fatalf("loaded %d tasks, want 1", len(got))
	}
	if got[0].Category != "work" {
		t.Fatalf("category not normalized: %q", got[0].Category)
	}
	if got[0].Priority != "low" {
		t.Fatalf("unknown priority should coerce to default: %q", got[0].Priority)
	}
	if got[0].Due != "" {
		t.Fatalf("unparseable due should clear: %q", got[0].Due)
	}
}

func TestLoadRecoversFromMissingAndCorruptBlobs(t *testing.T) {
	root := t.TempDir()
	dir := Open(root)

	if got := dir.LoadTasks(); len(got) != 0 {
		t.Fatalf("missing blob should load empty, got %d", len(got))
	}
	meta := dir.LoadMeta()
	if meta == nil || meta.Completions == nil {
		t.Fatal("missing meta blob should load usable defaults")
	}

	for _, name := range []string{"tasks.json", "meta.json"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := dir.LoadTasks(); len(got) != 0 {
		t.Fatalf("corrupt blob should load empty, got %d", len(got))
	}
	meta = dir.LoadMeta()
	if meta == nil || meta.Completions == nil {
		t.Fatal("corrupt meta blob should load usable defaults")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	dir := Open(t.TempDir())
	meta := store.NewMeta()
	meta.Name = "Asha"
	meta.RecordCompletion("2026-03-14")
	if err := dir.SaveMeta(meta); err != nil {
		t.Fatalf("SaveMeta: %v", err)
	}
	got := dir.LoadMeta()
	if got.Name != "Asha" || got.Completions["2026-03-14"] != 1 {
		t.Fatalf("meta round trip mismatch: %+v", got)
	}
}

func TestLoadConfigToleratesJSONC(t *testing.T) {
	root := t.TempDir()
	cfgBody := `{
		// personal machine, default everything to study
		"default_category": "study",
		"default_priority": "medium",
	}`
	if err := os.WriteFile(filepath.Join(root, "config.json"), []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Open(root).LoadConfig()
	if cfg.DefaultCategory != "study" || cfg.DefaultPriority != "medium" {
		t.Fatalf("config not applied: %+v", cfg)
	}
	if cfg.Schema != 1 {
		t.Fatalf("schema default not applied: %d", cfg.Schema)
	}
}

func TestLoadConfigFallsBackOnGarbage(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "config.json"), []byte("???"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Open(root).LoadConfig()
	if cfg.DefaultCategory != "" || cfg.Schema != 1 {
		t.Fatalf("expected defaults for garbage config, got %+v", cfg)
	}
}

func TestExportYAMLRoundTripsThroughImport(t *testing.T) {
	tasks := []store.Task{
		{ID: "E1", Text: "exported", Category: "work", Priority: "high", Due: "2026-04-01", Completed: true, Created: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
	}
	b, err := ExportYAML(tasks)
	if err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}
	if !strings.Contains(string(b), "exported") {
		t.Fatalf("export not human-readable:\n%s", b)
	}

	st := store.New()
	n, err := st.ImportMerge(b)
	if err != nil {
		t.Fatalf("ImportMerge of export: %v", err)
	}
	if n != 1 {
		t.Fatalf("merged %d, want 1", n)
	}
	got := st.Tasks()[0]
	if got.ID != "E1" || got.Text != "exported" || !got.Completed || got.Due != "2026-04-01" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
