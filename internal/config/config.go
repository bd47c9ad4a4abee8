// Package config is the persisted schedule store. One TOML file holds
// a global scheduler section plus one table per monitor keyed by its
// stable key; the file is read in full at startup and rewritten in
// full, atomically, on every change.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kward/duskmon/internal/logger"
)

const (
	// DefaultInterval is the scheduler polling interval in seconds.
	DefaultInterval = 5

	// DefaultStart and DefaultEnd are the blanking window applied to
	// monitors with no persisted entry.
	DefaultStart = "17:00:00"
	DefaultEnd   = "07:00:00"
)

// Entry is one monitor's auto-blank configuration. Start and End are
// wall-clock times of day ("H:M:S"); Start after End means the window
// crosses midnight. Name and Resolution are denormalized for human
// readability of the file and never used for matching.
type Entry struct {
	Enabled    bool   `mapstructure:"enabled"`
	Start      string `mapstructure:"start"`
	End        string `mapstructure:"end"`
	Name       string `mapstructure:"name"`
	Resolution string `mapstructure:"resolution"`
}

// DefaultEntry is the entry returned for monitors with no persisted
// configuration.
func DefaultEntry() Entry {
	return Entry{
		Enabled: false,
		Start:   DefaultStart,
		End:     DefaultEnd,
	}
}

// Store owns the schedule file. Mutating operations are serialized by
// a single lock since the scheduler loop and user-facing edits write
// concurrently.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// NewStore opens (or prepares to create) the schedule file at path.
// A missing file is not an error; defaults apply until the first save.
func NewStore(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("scheduler.interval", DefaultInterval)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			// An unreadable file falls back to in-memory defaults,
			// never fatal.
			logger.Warn("schedule file unreadable, using defaults", "path", path, "error", err)
		}
	}

	return &Store{v: v, path: path}, nil
}

// Path returns the schedule file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the entry for a stable key, or the documented default
// when none is persisted. It never fails.
func (s *Store) Load(key string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	section := "monitors." + key
	if !s.v.IsSet(section) {
		return DefaultEntry()
	}
	entry := DefaultEntry()
	if err := s.v.UnmarshalKey(section, &entry); err != nil {
		logger.Warn("schedule entry unreadable, using defaults", "key", key, "error", err)
		return DefaultEntry()
	}
	if entry.Start == "" {
		entry.Start = DefaultStart
	}
	if entry.End == "" {
		entry.End = DefaultEnd
	}
	return entry
}

// Save persists an entry under a stable key, synchronously.
func (s *Store) Save(key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	section := "monitors." + key
	s.v.Set(section+".enabled", entry.Enabled)
	s.v.Set(section+".start", entry.Start)
	s.v.Set(section+".end", entry.End)
	s.v.Set(section+".name", entry.Name)
	s.v.Set(section+".resolution", entry.Resolution)
	return s.write()
}

// Keys returns the stable keys with persisted entries, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections := s.v.GetStringMap("monitors")
	keys := make([]string, 0, len(sections))
	for key := range sections {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Interval returns the scheduler polling interval in seconds, always
// at least 1.
func (s *Store) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.v.GetInt("scheduler.interval")
	if n < 1 {
		return DefaultInterval
	}
	return n
}

// SetInterval persists the polling interval in seconds.
func (s *Store) SetInterval(n int) error {
	if n < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set("scheduler.interval", n)
	return s.write()
}

// Watch reloads the store when the file changes on disk (an external
// edit) and invokes onChange.
func (s *Store) Watch(onChange func()) {
	s.v.OnConfigChange(func(fsnotify.Event) {
		logger.Debug("schedule file changed on disk", "path", s.path)
		if onChange != nil {
			onChange()
		}
	})
	s.v.WatchConfig()
}

// write rewrites the whole file through a temp file and rename, so a
// crash mid-write leaves either the old or the new contents.
func (s *Store) write() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp := s.path + ".tmp.toml"
	if err := s.v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace schedule file: %w", err)
	}
	return nil
}

// DefaultPath places the schedule file next to the executable, so a
// deployed copy stays self-contained.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "duskmon.toml"
	}
	return filepath.Join(filepath.Dir(exe), "duskmon.toml")
}
