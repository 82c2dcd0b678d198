// Package config loads runtime settings for lvsk: defaults first, then an
// optional TOML file, then environment overrides. Later sources win.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds every runtime setting.
type Config struct {
	// DBPath is the sqlite database file.
	DBPath string `toml:"db_path"`

	Google GoogleConfig `toml:"google"`
	Sync   SyncConfig   `toml:"sync"`
	Log    LogConfig    `toml:"log"`
}

// GoogleConfig selects which remote collections to sync and carries the
// OAuth client credentials.
type GoogleConfig struct {
	// ClientID and ClientSecret identify the OAuth application. Usually
	// supplied via GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET rather than the
	// config file.
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`

	// CalendarIDs and TaskListIDs are the remote collections pulled on
	// every sync pass.
	CalendarIDs []string `toml:"calendar_ids"`
	TaskListIDs []string `toml:"task_list_ids"`
}

// SyncConfig controls the background worker's timer.
type SyncConfig struct {
	IntervalSeconds int  `toml:"interval_seconds"`
	AutoSync        bool `toml:"auto_sync"`
}

// Interval returns the timer period.
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug/info/warn/error.
	Level string `toml:"level"`
	// File, when set, routes log output to a rolling file instead of
	// stderr.
	File string `toml:"file"`
}

// DefaultDir is where the config file, database, and log live unless
// overridden: <user config dir>/lvsk.
func DefaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "lvsk")
}

// LoadDefaults populates c with the stock settings: the primary calendar,
// the default task list, a five-minute auto-sync timer.
func (c *Config) LoadDefaults() {
	dir := DefaultDir()
	c.DBPath = filepath.Join(dir, "lvsk.db")
	c.Google.CalendarIDs = []string{"primary"}
	c.Google.TaskListIDs = []string{"@default"}
	c.Sync.IntervalSeconds = 300
	c.Sync.AutoSync = true
	c.Log.Level = "info"
	c.Log.File = filepath.Join(dir, "lvsk.log")
}

// Load constructs a Config: defaults, then the TOML file at path (or the
// default location when path is empty; a missing file is fine), then
// environment variables. Later sources take precedence over earlier ones.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.parseFile(path); err != nil {
		return nil, err
	}
	cfg.parseEnv()
	cfg.normalize()
	return cfg, nil
}

// normalize restores defaults a config file may have emptied out; syncing
// zero collections is never what a config author meant.
func (c *Config) normalize() {
	if len(c.Google.CalendarIDs) == 0 {
		c.Google.CalendarIDs = []string{"primary"}
	}
	if len(c.Google.TaskListIDs) == 0 {
		c.Google.TaskListIDs = []string{"@default"}
	}
	if c.Sync.IntervalSeconds <= 0 {
		c.Sync.IntervalSeconds = 300
	}
}
