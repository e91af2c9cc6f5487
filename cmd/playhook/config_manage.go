package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattjoyce/playhook/internal/config"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			fmt.Println("Usage: playhook config check [--config PATH]")
			return 0
		}
		return runConfigCheck(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			fmt.Println("Usage: playhook config lock [--config PATH]")
			return 0
		}
		return runConfigLock(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: playhook config <action>")
	fmt.Fprintln(w, "Actions: check, lock")
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration check FAILED: %v\n", err)
		return 1
	}

	fmt.Printf("Config: %s\n", cfg.SourceFile)
	mode := "direct"
	if cfg.ShellEvents.ExecuteWithBash {
		mode = "bash"
	}
	fmt.Printf("Shell events: enabled=%t mode=%s\n", cfg.ShellEvents.Enabled, mode)

	commands := cfg.ShellEvents.Commands()
	for _, kind := range cfg.ShellEvents.Configured() {
		fmt.Printf("  %-26s %s\n", kind, strings.TrimSpace(commands[kind]))
	}
	for _, w := range cfg.Warnings {
		fmt.Printf("WARN: %s\n", w)
	}
	fmt.Println("Status: Configuration check PASSED.")
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path, err := config.Discover(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}
	manifest, err := config.Lock(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	names := make([]string, 0, len(manifest.Hashes))
	for name := range manifest.Hashes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("HASH %s: %s\n", name, manifest.Hashes[name])
	}
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	fmt.Printf("Wrote %s\n", filepath.Join(dir, config.ChecksumFile))
	return 0
}
