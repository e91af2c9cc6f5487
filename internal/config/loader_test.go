package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattjoyce/playhook/internal/player"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr bool
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal valid config",
			yaml: `
shell_events:
  enabled: true
  on_volume_changed: notify-send Volume
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if !cfg.ShellEvents.Enabled {
					t.Error("shell_events.enabled not parsed")
				}
				if cfg.ShellEvents.OnVolumeChanged != "notify-send Volume" {
					t.Errorf("on_volume_changed = %q", cfg.ShellEvents.OnVolumeChanged)
				}
				// Check defaults applied
				if cfg.Service.Name != "playhook" || cfg.Service.LogLevel != "info" || cfg.Service.LogFormat != "json" {
					t.Errorf("service defaults not applied: %+v", cfg.Service)
				}
				if cfg.State.Path != "./data/playhook.db" {
					t.Errorf("state.path default not applied: %q", cfg.State.Path)
				}
				if cfg.History.Retention != 30*24*time.Hour {
					t.Errorf("history.retention default not applied: %v", cfg.History.Retention)
				}
				if cfg.API.Enabled || cfg.API.Listen != "127.0.0.1:8087" {
					t.Errorf("api defaults not applied: %+v", cfg.API)
				}
			},
		},
		{
			name: "full config",
			yaml: `
service:
  name: living-room
  log_level: debug
  log_format: text
state:
  path: /var/lib/playhook/state.db
history:
  enabled: true
  retention: 48h
api:
  enabled: true
  listen: 0.0.0.0:9000
  auth:
    api_key: secret
shell_events:
  enabled: true
  execute_with_bash: true
  on_context_changed: a
  on_track_changed: b
  on_playback_ended: c
  on_playback_paused: d
  on_playback_resumed: e
  on_track_seeked: f
  on_metadata_available: g
  on_volume_changed: h
  on_inactive_session: i
  on_panic_state: j
  on_connection_dropped: k
  on_connection_established: l
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.Name != "living-room" || cfg.Service.LogFormat != "text" {
					t.Errorf("service not parsed: %+v", cfg.Service)
				}
				if !cfg.History.Enabled || cfg.History.Retention != 48*time.Hour {
					t.Errorf("history not parsed: %+v", cfg.History)
				}
				if cfg.API.Listen != "0.0.0.0:9000" || cfg.API.Auth.APIKey != "secret" {
					t.Errorf("api not parsed: %+v", cfg.API)
				}
				if got := len(cfg.ShellEvents.Configured()); got != 12 {
					t.Errorf("expected 12 configured commands, got %d", got)
				}
				conf := cfg.ShellEvents.Build()
				if !conf.ExecuteWithBash() {
					t.Error("execute_with_bash not carried into configuration")
				}
				if conf.Command(player.KindConnectionEstablished) != "l" {
					t.Error("on_connection_established not carried into configuration")
				}
			},
		},
		{
			name: "env interpolation outside commands",
			yaml: `
state:
  path: ${PLAYHOOK_TEST_DIR}/state.db
api:
  enabled: true
  auth:
    api_key: ${PLAYHOOK_TEST_KEY}
shell_events:
  enabled: true
  execute_with_bash: true
  on_volume_changed: echo ${VOLUME} ${PLAYHOOK_TEST_KEY}
`,
			env: map[string]string{
				"PLAYHOOK_TEST_DIR": "/tmp/ph",
				"PLAYHOOK_TEST_KEY": "k3y",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.State.Path != "/tmp/ph/state.db" {
					t.Errorf("state.path = %q", cfg.State.Path)
				}
				if cfg.API.Auth.APIKey != "k3y" {
					t.Errorf("api_key = %q", cfg.API.Auth.APIKey)
				}
				if cfg.ShellEvents.OnVolumeChanged != "echo ${VOLUME} ${PLAYHOOK_TEST_KEY}" {
					t.Errorf("command must stay literal, got %q", cfg.ShellEvents.OnVolumeChanged)
				}
			},
		},
		{
			name: "unresolved api key",
			yaml: `
api:
  enabled: true
  auth:
    api_key: ${PLAYHOOK_TEST_UNSET_KEY}
`,
			wantErr: true,
		},
		{
			name: "api enabled without key",
			yaml: `
api:
  enabled: true
`,
			wantErr: true,
		},
		{
			name: "unknown key",
			yaml: `
shell_events:
  on_volume_change: typo
`,
			wantErr: true,
		},
		{
			name: "bad log level",
			yaml: `
service:
  log_level: loud
`,
			wantErr: true,
		},
		{
			name: "bad log format",
			yaml: `
service:
  log_format: xml
`,
			wantErr: true,
		},
		{
			name: "empty file",
			yaml: ``,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.ShellEvents.Enabled {
					t.Error("shell_events must default to disabled")
				}
			},
		},
		{
			name:    "invalid yaml",
			yaml:    "shell_events: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), tt.yaml)

			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "shell_events:\n  enabled: true\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(dir) error: %v", err)
	}
	if cfg.SourceFile != filepath.Join(dir, "config.yaml") {
		t.Errorf("SourceFile = %q", cfg.SourceFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWarnsWhenEnabledWithoutCommands(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "shell_events:\n  enabled: true\n  on_panic_state: '   '\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	found := false
	for _, w := range cfg.Warnings {
		if w == "shell_events is enabled but no commands are configured" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected no-commands warning, got %v", cfg.Warnings)
	}
}

func TestDiscover(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		got, err := Discover("/some/path.yaml")
		if err != nil || got != "/some/path.yaml" {
			t.Fatalf("Discover explicit = %q, %v", got, err)
		}
	})

	t.Run("env var", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "")
		t.Setenv(ConfigEnvVar, path)
		got, err := Discover("")
		if err != nil || got != path {
			t.Fatalf("Discover env = %q, %v", got, err)
		}
	})
}

func TestShellEventsConfigured(t *testing.T) {
	s := ShellEventsConfig{
		OnVolumeChanged: "v",
		OnPanicState:    "  ",
		OnTrackChanged:  "t",
	}
	got := s.Configured()
	want := []player.EventKind{player.KindTrackChanged, player.KindVolumeChanged}
	if len(got) != len(want) {
		t.Fatalf("Configured() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Configured()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
