package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/playhook/internal/log"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ConfigEnvVar overrides config discovery when set.
const ConfigEnvVar = "PLAYHOOK_CONFIG"

// Load reads, verifies and validates the configuration at configPath.
// A directory path is resolved to config.yaml inside it.
func Load(configPath string) (*Config, error) {
	absPath, err := resolveConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	integrity, err := VerifyIntegrity(absPath)
	if err != nil {
		return nil, err
	}
	if !integrity.Passed {
		return nil, fmt.Errorf("config verification failed for %s: %s\n"+
			"If you edited this file intentionally, run: playhook config lock --config %s",
			absPath, strings.Join(integrity.Errors, "; "), absPath)
	}

	cfg, err := loadConfigFile(absPath)
	if err != nil {
		return nil, err
	}
	cfg.SourceFile = absPath
	cfg.Warnings = append(cfg.Warnings, integrity.Warnings...)

	cfg = applyConfigDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Discover finds the config file by checking standard locations.
// Priority order: explicit path, $PLAYHOOK_CONFIG, ~/.config/playhook/config.yaml,
// /etc/playhook/config.yaml, ./config.yaml.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	candidates := make([]string, 0, 4)
	if p := os.Getenv(ConfigEnvVar); p != "" {
		candidates = append(candidates, p)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "playhook", "config.yaml"))
	}
	candidates = append(candidates, "/etc/playhook/config.yaml", "./config.yaml")

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no config found (checked: $%s, ~/.config/playhook/config.yaml, /etc/playhook/config.yaml, ./config.yaml)", ConfigEnvVar)
}

func resolveConfigFile(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return "", fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}
	return absPath, nil
}

// loadConfigFile parses a single config file. Unknown keys are rejected so a
// misspelled on_* entry does not silently disable a hook.
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Commands are deliberately not interpolated: ${VAR} in a bash hook
	// refers to the event environment at run time.
	cfg.Service.Name = interpolateEnv(cfg.Service.Name)
	cfg.Service.LogLevel = interpolateEnv(cfg.Service.LogLevel)
	cfg.State.Path = interpolateEnv(cfg.State.Path)
	cfg.API.Listen = interpolateEnv(cfg.API.Listen)
	cfg.API.Auth.APIKey = interpolateEnv(cfg.API.Auth.APIKey)

	return &cfg, nil
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) *Config {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}
	if cfg.State.Path == "" {
		cfg.State.Path = defaults.State.Path
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = defaults.History.Retention
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}

	return cfg
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (not expanded).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Service.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("service.log_level: unknown level %q", cfg.Service.LogLevel)
	}
	switch strings.ToLower(cfg.Service.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format: must be json or text, got %q", cfg.Service.LogFormat)
	}

	if cfg.History.Retention < 0 {
		return fmt.Errorf("history.retention: must not be negative")
	}

	if cfg.API.Enabled {
		if cfg.API.Listen == "" {
			return fmt.Errorf("api.listen: required when api is enabled")
		}
		key := cfg.API.Auth.APIKey
		if key == "" {
			return fmt.Errorf("api.auth.api_key: required when api is enabled")
		}
		if envVarPattern.MatchString(key) {
			return fmt.Errorf("api.auth.api_key: unresolved environment variable in %q", key)
		}
	}

	if cfg.ShellEvents.Enabled && len(cfg.ShellEvents.Configured()) == 0 {
		cfg.Warnings = append(cfg.Warnings, "shell_events is enabled but no commands are configured")
	}

	return nil
}

// LogWarnings writes collected load warnings to the global logger.
func (c *Config) LogWarnings() {
	for _, w := range c.Warnings {
		log.Warn("config warning", "warning", w, "file", c.SourceFile)
	}
}
