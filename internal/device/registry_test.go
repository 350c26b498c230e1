package device

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/andon-core/internal/event"
	"github.com/nerrad567/andon-core/internal/infrastructure/database"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "andon.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRegistry(db)
}

func TestRegistry_TouchInsertsNewDevice(t *testing.T) {
	reg := newTestRegistry(t)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	reg.now = func() time.Time { return fixed }

	if err := reg.Touch(context.Background(), "press1"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	rec, err := reg.Get(context.Background(), "press1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Name != "press1" {
		t.Errorf("Name = %q, want %q", rec.Name, "press1")
	}
	if !rec.FirstSeen.Equal(fixed) {
		t.Errorf("FirstSeen = %v, want %v", rec.FirstSeen, fixed)
	}
	if !rec.LastSeen.Equal(fixed) {
		t.Errorf("LastSeen = %v, want %v", rec.LastSeen, fixed)
	}
	if rec.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", rec.EventCount)
	}
}

func TestRegistry_TouchUpdatesExistingDevice(t *testing.T) {
	reg := newTestRegistry(t)
	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := first.Add(10 * time.Minute)

	reg.now = func() time.Time { return first }
	if err := reg.Touch(context.Background(), "press1"); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}

	reg.now = func() time.Time { return later }
	for i := 0; i < 2; i++ {
		if err := reg.Touch(context.Background(), "press1"); err != nil {
			t.Fatalf("Touch() error = %v", err)
		}
	}

	rec, err := reg.Get(context.Background(), "press1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !rec.FirstSeen.Equal(first) {
		t.Errorf("FirstSeen = %v, want %v (unchanged)", rec.FirstSeen, first)
	}
	if !rec.LastSeen.Equal(later) {
		t.Errorf("LastSeen = %v, want %v", rec.LastSeen, later)
	}
	if rec.EventCount != 3 {
		t.Errorf("EventCount = %d, want 3", rec.EventCount)
	}
}

func TestRegistry_TouchRejectsEmptyName(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Touch(context.Background(), ""); err == nil {
		t.Error("Touch(\"\") expected error, got nil")
	}
}

func TestRegistry_GetUnknownDevice(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_List(t *testing.T) {
	reg := newTestRegistry(t)

	for _, name := range []string{"press2", "press1", "line3"} {
		if err := reg.Touch(context.Background(), name); err != nil {
			t.Fatalf("Touch(%q) error = %v", name, err)
		}
	}

	records, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"line3", "press1", "press2"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("records[%d].Name = %q, want %q", i, records[i].Name, name)
		}
	}
}

func TestRegistry_ListEmpty(t *testing.T) {
	reg := newTestRegistry(t)
	records, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

type captureLogger struct {
	errors int
}

func (l *captureLogger) Error(string, ...any) { l.errors++ }

func TestRegistrySink_RecordEvent(t *testing.T) {
	reg := newTestRegistry(t)
	logger := &captureLogger{}
	sink := NewRegistrySink(reg, logger)

	sink.RecordEvent("press1", event.Event{Pin: 25, State: "on"})

	rec, err := reg.Get(context.Background(), "press1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", rec.EventCount)
	}
	if logger.errors != 0 {
		t.Errorf("logged %d errors, want 0", logger.errors)
	}
}

func TestRegistrySink_LogsFailures(t *testing.T) {
	reg := newTestRegistry(t)
	logger := &captureLogger{}
	sink := NewRegistrySink(reg, logger)

	// An empty device name cannot be recorded.
	sink.RecordEvent("", event.Event{})

	if logger.errors != 1 {
		t.Errorf("logged %d errors, want 1", logger.errors)
	}
}
