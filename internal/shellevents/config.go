package shellevents

import "github.com/mattjoyce/playhook/internal/player"

// Configuration is the immutable set of commands run per event kind.
// Build one with NewBuilder; the zero value is disabled.
type Configuration struct {
	enabled                 bool
	executeWithBash         bool
	onContextChanged        string
	onTrackChanged          string
	onPlaybackEnded         string
	onPlaybackPaused        string
	onPlaybackResumed       string
	onTrackSeeked           string
	onMetadataAvailable     string
	onVolumeChanged         string
	onInactiveSession       string
	onPanicState            string
	onConnectionDropped     string
	onConnectionEstablished string
}

func (c Configuration) Enabled() bool         { return c.enabled }
func (c Configuration) ExecuteWithBash() bool { return c.executeWithBash }

// Command returns the command configured for kind. Kinds without a command
// slot, such as playback_halt_state_changed, return "".
func (c Configuration) Command(kind player.EventKind) string {
	switch kind {
	case player.KindContextChanged:
		return c.onContextChanged
	case player.KindTrackChanged:
		return c.onTrackChanged
	case player.KindPlaybackEnded:
		return c.onPlaybackEnded
	case player.KindPlaybackPaused:
		return c.onPlaybackPaused
	case player.KindPlaybackResumed:
		return c.onPlaybackResumed
	case player.KindTrackSeeked:
		return c.onTrackSeeked
	case player.KindMetadataAvailable:
		return c.onMetadataAvailable
	case player.KindVolumeChanged:
		return c.onVolumeChanged
	case player.KindInactiveSession:
		return c.onInactiveSession
	case player.KindPanicState:
		return c.onPanicState
	case player.KindConnectionDropped:
		return c.onConnectionDropped
	case player.KindConnectionEstablished:
		return c.onConnectionEstablished
	default:
		return ""
	}
}

// Builder stages a Configuration. Every field defaults to false or "".
type Builder struct {
	conf Configuration
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) SetEnabled(enabled bool) *Builder {
	b.conf.enabled = enabled
	return b
}

func (b *Builder) SetExecuteWithBash(executeWithBash bool) *Builder {
	b.conf.executeWithBash = executeWithBash
	return b
}

func (b *Builder) SetOnContextChanged(command string) *Builder {
	b.conf.onContextChanged = command
	return b
}

func (b *Builder) SetOnTrackChanged(command string) *Builder {
	b.conf.onTrackChanged = command
	return b
}

func (b *Builder) SetOnPlaybackEnded(command string) *Builder {
	b.conf.onPlaybackEnded = command
	return b
}

func (b *Builder) SetOnPlaybackPaused(command string) *Builder {
	b.conf.onPlaybackPaused = command
	return b
}

func (b *Builder) SetOnPlaybackResumed(command string) *Builder {
	b.conf.onPlaybackResumed = command
	return b
}

func (b *Builder) SetOnTrackSeeked(command string) *Builder {
	b.conf.onTrackSeeked = command
	return b
}

func (b *Builder) SetOnMetadataAvailable(command string) *Builder {
	b.conf.onMetadataAvailable = command
	return b
}

func (b *Builder) SetOnVolumeChanged(command string) *Builder {
	b.conf.onVolumeChanged = command
	return b
}

func (b *Builder) SetOnInactiveSession(command string) *Builder {
	b.conf.onInactiveSession = command
	return b
}

func (b *Builder) SetOnPanicState(command string) *Builder {
	b.conf.onPanicState = command
	return b
}

func (b *Builder) SetOnConnectionDropped(command string) *Builder {
	b.conf.onConnectionDropped = command
	return b
}

func (b *Builder) SetOnConnectionEstablished(command string) *Builder {
	b.conf.onConnectionEstablished = command
	return b
}

// SetCommand sets the command for kind. It returns false for kinds that have
// no command slot.
func (b *Builder) SetCommand(kind player.EventKind, command string) bool {
	switch kind {
	case player.KindContextChanged:
		b.SetOnContextChanged(command)
	case player.KindTrackChanged:
		b.SetOnTrackChanged(command)
	case player.KindPlaybackEnded:
		b.SetOnPlaybackEnded(command)
	case player.KindPlaybackPaused:
		b.SetOnPlaybackPaused(command)
	case player.KindPlaybackResumed:
		b.SetOnPlaybackResumed(command)
	case player.KindTrackSeeked:
		b.SetOnTrackSeeked(command)
	case player.KindMetadataAvailable:
		b.SetOnMetadataAvailable(command)
	case player.KindVolumeChanged:
		b.SetOnVolumeChanged(command)
	case player.KindInactiveSession:
		b.SetOnInactiveSession(command)
	case player.KindPanicState:
		b.SetOnPanicState(command)
	case player.KindConnectionDropped:
		b.SetOnConnectionDropped(command)
	case player.KindConnectionEstablished:
		b.SetOnConnectionEstablished(command)
	default:
		return false
	}
	return true
}

// Build returns a copy; later Set calls do not affect it.
func (b *Builder) Build() Configuration {
	return b.conf
}
