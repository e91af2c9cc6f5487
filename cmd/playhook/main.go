package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mattjoyce/playhook/internal/api"
	"github.com/mattjoyce/playhook/internal/config"
	"github.com/mattjoyce/playhook/internal/lock"
	"github.com/mattjoyce/playhook/internal/log"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "start":
		if hasHelpFlag(args) {
			printStartHelp()
			return 0
		}
		return runStart(args)
	case "fire":
		if hasHelpFlag(args) {
			printFireHelp()
			return 0
		}
		return runFire(args)
	case "config":
		return runConfigNoun(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: playhook version [--json]")
		return 1
	}

	info := currentVersionInfo()
	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("playhook %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if commit != "" {
		info.Commit = shortenCommit(commit)
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalized, ok := normalizeBuildTimeUTC(built); ok {
		info.BuildTime = normalized
	}
	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`playhook - run shell commands on playback and connection events

Usage:
  playhook <command> [flags]

Commands:
  start             Run the daemon in the foreground
  fire <kind>       Dispatch a single event through the configured hooks
  config check      Validate syntax, settings and integrity
  config lock       Record the config checksum in .checksums
  version           Show version information
  help              Show this help message

Event kinds:
  ` + strings.Join(kindNames(), "\n  ") + `

Use 'playhook <command> --help' for command flags.
`)
}

func printStartHelp() {
	fmt.Println("Usage: playhook start [--config PATH]")
	fmt.Println("Runs the daemon: event ingress API, hook dispatch and execution history.")
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// loadConfig resolves and loads the configuration, reporting discovery on stderr.
func loadConfig(explicit string) (*config.Config, error) {
	path, err := config.Discover(explicit)
	if err != nil {
		return nil, err
	}
	if explicit == "" {
		fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", path)
	}
	return config.Load(path)
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("playhook starting", "version", version, "config", cfg.SourceFile)
	cfg.LogWarnings()

	pidLockPath := lock.PathFor(cfg.State.Path)
	pidLock, err := lock.Acquire(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLock.Path())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return 1
	}
	defer rt.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	// Background goroutines that use the runtime; they finish before it closes.
	var workers sync.WaitGroup

	if rt.history != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			rt.runPruner(ctx, cfg.History.Retention, pruneInterval, log.WithComponent("history"))
		}()
		logger.Info("execution history enabled", "path", cfg.State.Path, "retention", cfg.History.Retention)
	}

	if cfg.API.Enabled {
		apiServer := api.New(api.Config{
			Listen: cfg.API.Listen,
			APIKey: cfg.API.Auth.APIKey,
		}, rt, rt.executionLister(), rt.hub, log.WithComponent("api"))
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := apiServer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("api: %w", err)
			}
		}()
		logger.Info("API server enabled", "listen", cfg.API.Listen)
	} else {
		logger.Warn("API server disabled; no event source is attached")
	}

	logger.Info("playhook running (press Ctrl+C to stop)",
		"shell_events", cfg.ShellEvents.Enabled,
		"hooks", len(cfg.ShellEvents.Configured()))

	code := 0
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		code = 1
	}

	cancel()
	workers.Wait()
	if err := rt.Close(); err != nil {
		logger.Error("failed to close runtime", "error", err)
	}
	logger.Info("playhook stopped")
	return code
}
