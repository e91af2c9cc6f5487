package config

import (
	"strings"

	"github.com/mattjoyce/playhook/internal/player"
	"github.com/mattjoyce/playhook/internal/shellevents"
)

// Commands returns the configured command per event kind, including blank ones.
func (s ShellEventsConfig) Commands() map[player.EventKind]string {
	return map[player.EventKind]string{
		player.KindContextChanged:        s.OnContextChanged,
		player.KindTrackChanged:          s.OnTrackChanged,
		player.KindPlaybackEnded:         s.OnPlaybackEnded,
		player.KindPlaybackPaused:        s.OnPlaybackPaused,
		player.KindPlaybackResumed:       s.OnPlaybackResumed,
		player.KindTrackSeeked:           s.OnTrackSeeked,
		player.KindMetadataAvailable:     s.OnMetadataAvailable,
		player.KindVolumeChanged:         s.OnVolumeChanged,
		player.KindInactiveSession:       s.OnInactiveSession,
		player.KindPanicState:            s.OnPanicState,
		player.KindConnectionDropped:     s.OnConnectionDropped,
		player.KindConnectionEstablished: s.OnConnectionEstablished,
	}
}

// Configured returns the kinds with a non-blank command, in event order.
func (s ShellEventsConfig) Configured() []player.EventKind {
	cmds := s.Commands()
	var out []player.EventKind
	for _, kind := range player.Kinds() {
		if strings.TrimSpace(cmds[kind]) != "" {
			out = append(out, kind)
		}
	}
	return out
}

// Build converts the YAML section into the immutable dispatcher configuration.
func (s ShellEventsConfig) Build() shellevents.Configuration {
	return shellevents.NewBuilder().
		SetEnabled(s.Enabled).
		SetExecuteWithBash(s.ExecuteWithBash).
		SetOnContextChanged(s.OnContextChanged).
		SetOnTrackChanged(s.OnTrackChanged).
		SetOnPlaybackEnded(s.OnPlaybackEnded).
		SetOnPlaybackPaused(s.OnPlaybackPaused).
		SetOnPlaybackResumed(s.OnPlaybackResumed).
		SetOnTrackSeeked(s.OnTrackSeeked).
		SetOnMetadataAvailable(s.OnMetadataAvailable).
		SetOnVolumeChanged(s.OnVolumeChanged).
		SetOnInactiveSession(s.OnInactiveSession).
		SetOnPanicState(s.OnPanicState).
		SetOnConnectionDropped(s.OnConnectionDropped).
		SetOnConnectionEstablished(s.OnConnectionEstablished).
		Build()
}
