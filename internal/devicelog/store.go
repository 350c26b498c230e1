package devicelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nerrad567/andon-core/internal/event"
)

// File and directory permission modes for the log output.
const (
	dirPermissions  = 0750
	filePermissions = 0640
)

// header is the fixed first row of every device log.
var header = []string{"Timestamp", "Pin", "State", "Time Difference (sec)"}

// LabelResolver maps a pin number to the label written in the log.
type LabelResolver interface {
	Resolve(pin int) string
}

// Store owns one append-only CSV log per device.
//
// Logs are created lazily on the first event for a device and are never
// deleted during the process lifetime. All writes for a device are
// serialised: the persistence worker is the only writer today, and each
// device additionally carries its own lock so the invariant holds even if
// writer concurrency is ever increased.
type Store struct {
	dir      string
	prefix   string
	resolver LabelResolver

	mu   sync.Mutex
	logs map[string]*deviceLog
}

// deviceLog tracks one device's log file.
type deviceLog struct {
	path string

	// mu serialises appends to this device's file.
	mu sync.Mutex

	// headerWritten transitions false to true exactly once.
	headerWritten bool
}

// New creates a Store writing logs under dir with the given filename prefix.
//
// Parameters:
//   - dir: Output directory (created on first write if absent)
//   - prefix: Filename prefix, e.g. "data_"
//   - resolver: Pin label resolver used for the Pin column
//
// Returns:
//   - *Store: Store ready for use
func New(dir, prefix string, resolver LabelResolver) *Store {
	return &Store{
		dir:      dir,
		prefix:   prefix,
		resolver: resolver,
		logs:     make(map[string]*deviceLog),
	}
}

// Path returns the log file path for a device.
func (s *Store) Path(deviceName string) string {
	return filepath.Join(s.dir, s.prefix+deviceName+".csv")
}

// Append writes one event row to the device's log, creating the output
// directory, the file, and the header row as needed. The header is written
// only when the file is new or empty, so restarting the service never
// duplicates it.
//
// Parameters:
//   - deviceName: Originating device; selects the log file
//   - ev: Event to append
//
// Returns:
//   - error: If the device name is unusable or the write fails; the caller
//     logs and drops the event, there is no retry
func (s *Store) Append(deviceName string, ev event.Event) error {
	if deviceName == "" {
		return fmt.Errorf("device name is required")
	}
	// Device names become filenames; refuse anything that would escape
	// the output directory.
	if strings.ContainsAny(deviceName, `/\`) || deviceName == ".." {
		return fmt.Errorf("device name %q contains path separators", deviceName)
	}

	dl := s.logFor(deviceName)

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if err := os.MkdirAll(s.dir, dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.OpenFile(dl.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("opening device log: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if !dl.headerWritten {
		info, statErr := file.Stat()
		if statErr != nil {
			return fmt.Errorf("checking device log: %w", statErr)
		}
		if info.Size() == 0 {
			if err := w.Write(header); err != nil {
				return fmt.Errorf("writing header: %w", err)
			}
		}
		dl.headerWritten = true
	}

	row := []string{
		ev.Timestamp,
		s.resolver.Resolve(ev.Pin),
		ev.State,
		strconv.FormatFloat(ev.TimeDiffSec, 'g', -1, 64),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing event row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing device log: %w", err)
	}

	return nil
}

// logFor returns the tracked log for a device, creating it on first use.
// At most one deviceLog ever exists per name.
func (s *Store) logFor(deviceName string) *deviceLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	dl, ok := s.logs[deviceName]
	if !ok {
		dl = &deviceLog{path: s.Path(deviceName)}
		s.logs[deviceName] = dl
	}
	return dl
}

// DeviceCount returns the number of devices with a tracked log.
func (s *Store) DeviceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}
