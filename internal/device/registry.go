package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/andon-core/internal/infrastructure/database"
)

// ErrNotFound is returned when a device is not present in the registry.
var ErrNotFound = errors.New("device: not found")

// Record is one device's registry entry.
type Record struct {
	// Name is the device name as reported in events.
	Name string

	// FirstSeen is when the device's first event was persisted (UTC).
	FirstSeen time.Time

	// LastSeen is when the device's latest event was persisted (UTC).
	LastSeen time.Time

	// EventCount is the total number of events persisted for the device.
	EventCount int64
}

// Registry tracks which devices have reported and how often, backed by
// SQLite. It exists for operators: the CSV logs answer "what happened",
// the registry answers "which devices are alive and how chatty are they"
// without scanning log files.
type Registry struct {
	db  *database.DB
	now func() time.Time
}

// NewRegistry creates a Registry on an open database.
func NewRegistry(db *database.DB) *Registry {
	return &Registry{
		db:  db,
		now: time.Now,
	}
}

// Touch records one persisted event for a device, inserting the device on
// first sight and otherwise bumping last_seen and the event count.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - deviceName: Device to record
//
// Returns:
//   - error: If the upsert fails
func (r *Registry) Touch(ctx context.Context, deviceName string) error {
	if deviceName == "" {
		return fmt.Errorf("device: name is required")
	}

	seen := r.now().UTC().Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (name, first_seen, last_seen, event_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(name) DO UPDATE SET
			last_seen = excluded.last_seen,
			event_count = event_count + 1
	`, deviceName, seen, seen)
	if err != nil {
		return fmt.Errorf("recording device %q: %w", deviceName, err)
	}
	return nil
}

// Get returns the registry record for a device.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - deviceName: Device to look up
//
// Returns:
//   - Record: The device's record
//   - error: ErrNotFound if the device has never reported, or query errors
func (r *Registry) Get(ctx context.Context, deviceName string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, first_seen, last_seen, event_count
		FROM devices WHERE name = ?
	`, deviceName)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("looking up device %q: %w", deviceName, err)
	}
	return rec, nil
}

// List returns all registered devices ordered by name.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []Record: All devices, possibly empty
//   - error: If the query fails
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, first_seen, last_seen, event_count
		FROM devices ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device rows: %w", err)
	}
	return records, nil
}

// scanRecord reads one row into a Record, parsing the stored timestamps.
func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var firstSeen, lastSeen string

	if err := scan(&rec.Name, &firstSeen, &lastSeen, &rec.EventCount); err != nil {
		return Record{}, err
	}

	var err error
	if rec.FirstSeen, err = time.Parse(time.RFC3339, firstSeen); err != nil {
		return Record{}, fmt.Errorf("parsing first_seen: %w", err)
	}
	if rec.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
		return Record{}, fmt.Errorf("parsing last_seen: %w", err)
	}
	return rec, nil
}
