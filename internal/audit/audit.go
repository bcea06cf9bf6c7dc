// Package audit provides an append-only JSON-lines log of every change a
// migration makes to a site.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldshift/fieldshift/internal/fields"
)

// Operation names.
const (
	OpSet        = "set"
	OpDelete     = "delete"
	OpCreate     = "create"
	OpTerms      = "assign-terms"
	OpChangeType = "change-type"
)

// Entry represents a single audit log line.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Operation string    `json:"op"`
	Kind      string    `json:"kind,omitempty"` // native, managed, generic, terms, entity
	EntityID  int64     `json:"entity_id"`
	Key       string    `json:"key,omitempty"`
	Old       any       `json:"old,omitempty"`
	New       any       `json:"new,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
}

// Logger appends entries to <site>/.fieldshift/audit.log.
type Logger struct {
	path    string
	runID   string
	enabled bool

	mu   sync.Mutex
	file *os.File
	log  *logrus.Logger
}

// New creates an audit logger writing to path. If enabled is false, the logger
// is a no-op. The file is opened on first write.
func New(path string, enabled bool, runID string) *Logger {
	return &Logger{path: path, runID: runID, enabled: enabled && path != ""}
}

func (l *Logger) open() error {
	if l.log != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	log := logrus.New()
	log.SetOutput(f)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat:   time.RFC3339Nano,
		DisableHTMLEscape: true,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "op",
		},
	})
	l.file, l.log = f, log
	return nil
}

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.open(); err != nil {
		return err
	}

	if entry.RunID == "" {
		entry.RunID = l.runID
	}
	data := logrus.Fields{"entity_id": entry.EntityID}
	if entry.Kind != "" {
		data["kind"] = entry.Kind
	}
	if entry.Key != "" {
		data["key"] = entry.Key
	}
	if entry.Old != nil {
		data["old"] = entry.Old
	}
	if entry.New != nil {
		data["new"] = entry.New
	}
	if entry.RunID != "" {
		data["run_id"] = entry.RunID
	}

	e := l.log.WithFields(data)
	if !entry.Timestamp.IsZero() {
		e = e.WithTime(entry.Timestamp)
	}
	e.Info(entry.Operation)
	return nil
}

// Record logs a field mutation.
func (l *Logger) Record(m fields.Mutation) {
	_ = l.Log(Entry{
		Operation: m.Op,
		Kind:      string(m.Kind),
		EntityID:  m.EntityID,
		Key:       m.Key,
		Old:       m.Old,
		New:       m.New,
	})
}

// Recorder returns a fields.RecordFunc, or nil when auditing is disabled so
// stores stay unwrapped.
func (l *Logger) Recorder() fields.RecordFunc {
	if l == nil || !l.enabled {
		return nil
	}
	return l.Record
}

// LogCreate logs an entity creation.
func (l *Logger) LogCreate(entityID int64, postType string) error {
	return l.Log(Entry{Operation: OpCreate, Kind: "entity", EntityID: entityID, New: postType})
}

// LogTerms logs a taxonomy assignment change.
func (l *Logger) LogTerms(entityID int64, taxonomy string, oldIDs, newIDs []int64) error {
	return l.Log(Entry{Operation: OpTerms, Kind: "terms", EntityID: entityID, Key: taxonomy, Old: oldIDs, New: newIDs})
}

// LogChangeType logs a post type conversion.
func (l *Logger) LogChangeType(entityID int64, oldType, newType string) error {
	return l.Log(Entry{Operation: OpChangeType, Kind: "entity", EntityID: entityID, Old: oldType, New: newType})
}

// Close releases the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file, l.log = nil, nil
	return err
}

// Enabled returns true if the audit logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Read reads all entries from the audit log at path. Malformed lines are skipped.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// ReadForEntity reads entries for a specific entity ID.
func ReadForEntity(path string, entityID int64) ([]Entry, error) {
	all, err := Read(path)
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if entry.EntityID == entityID {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
