package config

import "time"

// Config represents the complete playhook configuration.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	State       StateConfig       `yaml:"state"`
	History     HistoryConfig     `yaml:"history,omitempty"`
	API         APIConfig         `yaml:"api,omitempty"`
	ShellEvents ShellEventsConfig `yaml:"shell_events"`

	// SourceFile is the absolute path the config was loaded from.
	SourceFile string `yaml:"-"`
	// Warnings collects non-fatal problems found while loading.
	Warnings []string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// StateConfig defines state storage settings.
type StateConfig struct {
	Path string `yaml:"path"`
}

// HistoryConfig controls the persisted execution log.
type HistoryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Retention time.Duration `yaml:"retention"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// ShellEventsConfig holds the command run for each player event.
// Commands are literal; event data reaches them only through the environment.
type ShellEventsConfig struct {
	Enabled                 bool   `yaml:"enabled"`
	ExecuteWithBash         bool   `yaml:"execute_with_bash"`
	OnContextChanged        string `yaml:"on_context_changed"`
	OnTrackChanged          string `yaml:"on_track_changed"`
	OnPlaybackEnded         string `yaml:"on_playback_ended"`
	OnPlaybackPaused        string `yaml:"on_playback_paused"`
	OnPlaybackResumed       string `yaml:"on_playback_resumed"`
	OnTrackSeeked           string `yaml:"on_track_seeked"`
	OnMetadataAvailable     string `yaml:"on_metadata_available"`
	OnVolumeChanged         string `yaml:"on_volume_changed"`
	OnInactiveSession       string `yaml:"on_inactive_session"`
	OnPanicState            string `yaml:"on_panic_state"`
	OnConnectionDropped     string `yaml:"on_connection_dropped"`
	OnConnectionEstablished string `yaml:"on_connection_established"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "playhook",
			LogLevel:  "info",
			LogFormat: "json",
		},
		State: StateConfig{
			Path: "./data/playhook.db",
		},
		History: HistoryConfig{
			Enabled:   false,
			Retention: 30 * 24 * time.Hour,
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8087",
		},
	}
}
