package shellevents

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattjoyce/playhook/internal/log"
	"github.com/mattjoyce/playhook/internal/player"
)

// Dispatcher runs the configured command for each playback and connection event.
type Dispatcher struct {
	conf      Configuration
	launcher  Launcher
	observers []Observer
	logger    *slog.Logger
}

var (
	_ player.PlaybackListener   = (*Dispatcher)(nil)
	_ player.ConnectionListener = (*Dispatcher)(nil)
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLauncher replaces the os/exec launcher.
func WithLauncher(l Launcher) Option {
	return func(d *Dispatcher) { d.launcher = l }
}

// WithObserver adds an outcome sink. May be given more than once.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a Dispatcher for conf.
func New(conf Configuration, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		conf:     conf,
		launcher: ExecLauncher{},
		logger:   log.WithComponent("shellevents"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register subscribes d to both listener sets of src.
func (d *Dispatcher) Register(src *player.Source) {
	src.AddPlaybackListener(d)
	src.AddConnectionListener(d)
}

func (d *Dispatcher) OnContextChanged(contextURI string) {
	d.exec(player.KindContextChanged, envVar("CONTEXT_URI", contextURI))
}

func (d *Dispatcher) OnTrackChanged(id player.PlayableID, metadata player.Metadata, userInitiated bool) {
	var name, artist, album, duration string
	if metadata != nil {
		name = metadata.Name()
		artist = metadata.Artist()
		album = metadata.AlbumName()
		duration = strconv.Itoa(metadata.DurationMs())
	}
	d.exec(player.KindTrackChanged,
		envVar("TRACK_URI", id.URI()),
		envVar("NAME", name),
		envVar("ARTIST", artist),
		envVar("ALBUM", album),
		envVar("DURATION", duration),
		envVar("IS_USER", strconv.FormatBool(userInitiated)),
	)
}

func (d *Dispatcher) OnPlaybackEnded() {
	d.exec(player.KindPlaybackEnded)
}

func (d *Dispatcher) OnPlaybackPaused(positionMs int64) {
	d.exec(player.KindPlaybackPaused, envVar("POSITION", strconv.FormatInt(positionMs, 10)))
}

func (d *Dispatcher) OnPlaybackResumed(positionMs int64) {
	d.exec(player.KindPlaybackResumed, envVar("POSITION", strconv.FormatInt(positionMs, 10)))
}

func (d *Dispatcher) OnTrackSeeked(positionMs int64) {
	d.exec(player.KindTrackSeeked, envVar("POSITION", strconv.FormatInt(positionMs, 10)))
}

func (d *Dispatcher) OnMetadataAvailable(metadata player.Metadata) {
	d.exec(player.KindMetadataAvailable,
		envVar("TRACK_URI", metadata.URI()),
		envVar("NAME", metadata.Name()),
		envVar("ARTIST", metadata.Artist()),
		envVar("ALBUM", metadata.AlbumName()),
		envVar("DURATION", strconv.Itoa(metadata.DurationMs())),
	)
}

// OnPlaybackHaltStateChanged has no command slot and never runs anything.
func (d *Dispatcher) OnPlaybackHaltStateChanged(halted bool, positionMs int64) {}

func (d *Dispatcher) OnInactiveSession(timedOut bool) {
	d.exec(player.KindInactiveSession)
}

func (d *Dispatcher) OnVolumeChanged(volume float64) {
	d.exec(player.KindVolumeChanged, envVar("VOLUME", strconv.Itoa(volumePercent(volume))))
}

func (d *Dispatcher) OnPanicState() {
	d.exec(player.KindPanicState)
}

func (d *Dispatcher) OnConnectionDropped() {
	d.exec(player.KindConnectionDropped)
}

func (d *Dispatcher) OnConnectionEstablished() {
	d.exec(player.KindConnectionEstablished)
}

// volumePercent scales a [0, 1] fraction to a percentage, rounding half up.
func volumePercent(volume float64) int {
	return int(math.Floor(volume*100 + 0.5))
}

func envVar(name, value string) string {
	return name + "=" + value
}

// Resolve turns command into a process launch for the given mode.
// ok is false when the command is blank.
func Resolve(command string, withBash bool, env []string) (inv Invocation, mode Mode, ok bool) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return Invocation{}, "", false
	}
	if withBash {
		return Invocation{Path: BashPath, Args: []string{"-c", trimmed}, Env: env}, ModeBash, true
	}
	fields := strings.Fields(trimmed)
	return Invocation{Path: fields[0], Args: fields[1:], Env: env}, ModeDirect, true
}

// exec is the execution gateway. It blocks until the process exits and
// never reports failure to the caller.
func (d *Dispatcher) exec(kind player.EventKind, env ...string) {
	if !d.conf.enabled {
		return
	}
	command := d.conf.Command(kind)
	inv, mode, ok := Resolve(command, d.conf.executeWithBash, env)
	if !ok {
		return
	}

	logger := d.logger.With("event", string(kind), "command", command)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("failed executing command", "error", fmt.Sprint(r))
		}
	}()

	ctx := context.Background()
	started := time.Now()
	exitCode, err := d.launcher.Launch(ctx, inv)
	outcome := Outcome{
		Event:     kind,
		Command:   command,
		Mode:      mode,
		ExitCode:  exitCode,
		Err:       err,
		StartedAt: started,
		Duration:  time.Since(started),
	}

	switch {
	case err != nil:
		logger.Error("failed executing command", "mode", string(mode), "error", err)
	case exitCode != 0:
		logger.Warn("executed shell command", "mode", string(mode), "exit_code", exitCode, "duration_ms", outcome.Duration.Milliseconds())
	default:
		logger.Debug("executed shell command", "mode", string(mode), "exit_code", exitCode, "duration_ms", outcome.Duration.Milliseconds())
	}

	for _, o := range d.observers {
		o.Observe(ctx, outcome)
	}
}
