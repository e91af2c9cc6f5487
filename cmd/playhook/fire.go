package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattjoyce/playhook/internal/log"
	"github.com/mattjoyce/playhook/internal/player"
	"github.com/mattjoyce/playhook/internal/shellevents"
)

type fireFlags struct {
	configPath string
	contextURI string
	trackURI   string
	name       string
	artist     string
	album      string
	durationMs int
	user       bool
	positionMs int64
	volume     float64
	halted     bool
	timedOut   bool
}

func newFireFlagSet(f *fireFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("fire", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Path to configuration file or directory")
	fs.StringVar(&f.contextURI, "context-uri", "", "Context URI (context_changed)")
	fs.StringVar(&f.trackURI, "track-uri", "", "Track URI (track_changed, metadata_available)")
	fs.StringVar(&f.name, "name", "", "Track name")
	fs.StringVar(&f.artist, "artist", "", "Track artist")
	fs.StringVar(&f.album, "album", "", "Album name")
	fs.IntVar(&f.durationMs, "duration", 0, "Track duration in milliseconds")
	fs.BoolVar(&f.user, "user", false, "Mark a track change as user initiated")
	fs.Int64Var(&f.positionMs, "position", 0, "Playback position in milliseconds")
	fs.Float64Var(&f.volume, "volume", 0, "Volume as a fraction in [0, 1]")
	fs.BoolVar(&f.halted, "halted", false, "Halt state (playback_halt_state_changed)")
	fs.BoolVar(&f.timedOut, "timed-out", false, "Session timed out (inactive_session)")
	return fs
}

func printFireHelp() {
	var f fireFlags
	fs := newFireFlagSet(&f)
	fs.SetOutput(os.Stdout)
	fmt.Println("Usage: playhook fire <kind> [flags]")
	fmt.Println("Dispatches one event through the configured hooks and waits for the command to exit.")
	fmt.Println()
	fs.PrintDefaults()
}

func runFire(args []string) int {
	var f fireFlags
	fs := newFireFlagSet(&f)

	// Accept the kind before or after the flags.
	var kindArg string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		kindArg, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if kindArg == "" && fs.NArg() > 0 {
		kindArg = fs.Arg(0)
	}
	if kindArg == "" {
		fmt.Fprintln(os.Stderr, "Usage: playhook fire <kind> [flags]")
		return 1
	}

	kind, err := player.ParseEventKind(kindArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nKnown kinds: %s\n", err, strings.Join(kindNames(), ", "))
		return 1
	}
	ev := buildEvent(kind, f)
	if err := ev.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid event: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	cfg.LogWarnings()

	var outcomes []shellevents.Outcome
	collect := shellevents.ObserverFunc(func(_ context.Context, o shellevents.Outcome) {
		outcomes = append(outcomes, o)
	})

	rt, err := newRuntime(context.Background(), cfg, collect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer rt.Close()

	if err := rt.Deliver(ev); err != nil {
		fmt.Fprintf(os.Stderr, "Dispatch failed: %v\n", err)
		return 1
	}

	if len(outcomes) == 0 {
		fmt.Printf("%s: nothing executed (shell events disabled or no command configured)\n", kind)
		return 0
	}

	code := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("%s: %q failed to run: %v\n", o.Event, o.Command, o.Err)
			code = 1
		default:
			fmt.Printf("%s: %q exited %d after %dms (%s)\n", o.Event, o.Command, o.ExitCode, o.Duration.Milliseconds(), o.Mode)
			if o.ExitCode != 0 {
				code = 1
			}
		}
	}
	return code
}

// buildEvent maps flags onto an Event. Metadata is attached only when it is
// required or some metadata flag was given.
func buildEvent(kind player.EventKind, f fireFlags) player.Event {
	ev := player.Event{
		Kind:          kind,
		ContextURI:    f.contextURI,
		TrackURI:      f.trackURI,
		UserInitiated: f.user,
		PositionMs:    f.positionMs,
		Volume:        f.volume,
		Halted:        f.halted,
		TimedOut:      f.timedOut,
	}

	hasMetadata := f.name != "" || f.artist != "" || f.album != "" || f.durationMs != 0
	if hasMetadata || kind == player.KindMetadataAvailable {
		ev.Metadata = &player.TrackMetadata{
			TrackURI:    f.trackURI,
			TrackName:   f.name,
			TrackArtist: f.artist,
			Album:       f.album,
			Duration:    f.durationMs,
		}
	}
	return ev
}

func kindNames() []string {
	kinds := player.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}
