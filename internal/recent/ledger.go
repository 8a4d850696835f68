// Package recent keeps the most-recently-used list of KiCad projects.
package recent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/logging"
)

// MaxEntries caps the ledger.
const MaxEntries = 10

// Ledger is a JSON-backed MRU list. The in-memory list is authoritative for
// the process; disk writes are best-effort.
type Ledger struct {
	filePath string
	entries  []Entry
	mu       sync.Mutex
	logger   *zap.Logger
	now      func() time.Time
}

// New loads the ledger at filePath. A missing or malformed file is an empty
// ledger.
func New(filePath string, logger *zap.Logger) *Ledger {
	l := &Ledger{
		filePath: filePath,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
	l.load()
	return l
}

func (l *Ledger) load() {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("could not read recent projects", zap.String("path", l.filePath), zap.Error(err))
		}
		return
	}

	var doc rawLedger
	if err := json.Unmarshal(data, &doc); err != nil {
		l.logger.Warn("could not parse recent projects", zap.String("path", l.filePath), zap.Error(err))
		return
	}
	for i, raw := range doc.RecentProjects {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil || e.Path == "" {
			l.logger.Warn("skipping malformed recent project", zap.Int("index", i), zap.Error(err))
			continue
		}
		l.entries = append(l.entries, e)
	}
}

// saveNoLock persists the ledger (caller must hold lock). Failures are logged
// and swallowed.
func (l *Ledger) saveNoLock() {
	if err := l.writeNoLock(); err != nil {
		l.logger.Warn("could not save recent projects", zap.String("path", l.filePath), zap.Error(err))
	}
}

func (l *Ledger) writeNoLock() error {
	dir := filepath.Dir(l.filePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(ledgerData{RecentProjects: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recent projects: %w", err)
	}

	// Write to temp file for atomic replacement
	f, err := os.CreateTemp(dir, ".recent_projects-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	// Best-effort cleanup if we fail
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write recent projects: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to fsync recent projects: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close recent projects file: %w", err)
	}

	if err := os.Rename(tmp, l.filePath); err != nil {
		return fmt.Errorf("failed to replace recent projects: %w", err)
	}
	return nil
}

// Normalize returns the absolute, cleaned form of path used as the ledger key.
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Add moves path to the front of the ledger with a fresh timestamp.
func (l *Ledger) Add(path string) Entry {
	path = Normalize(path)
	base := filepath.Base(path)

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Path:       path,
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		LastOpened: l.now(),
	}

	entries := make([]Entry, 0, len(l.entries)+1)
	entries = append(entries, entry)
	for _, e := range l.entries {
		if e.Path != path {
			entries = append(entries, e)
		}
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	l.entries = entries

	l.saveNoLock()
	return entry
}

// Remove drops path from the ledger.
func (l *Ledger) Remove(path string) {
	path = Normalize(path)

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries[:0:0]
	for _, e := range l.entries {
		if e.Path != path {
			entries = append(entries, e)
		}
	}
	l.entries = entries
	l.saveNoLock()
}

// List returns the entries whose files still exist, most recent first. Stale
// entries are pruned from the ledger and the file rewritten.
func (l *Ledger) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Path == "" {
			continue
		}
		if _, err := os.Stat(e.Path); err == nil {
			valid = append(valid, e)
		}
	}

	if len(valid) != len(l.entries) {
		l.logger.Debug("pruned stale recent projects", zap.Int("removed", len(l.entries)-len(valid)))
		l.entries = valid
		l.saveNoLock()
	}

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear empties the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.saveNoLock()
}
