package player

import (
	"errors"
	"fmt"
	"slices"
)

// EventKind names one playback or connection notification.
type EventKind string

const (
	KindContextChanged           EventKind = "context_changed"
	KindTrackChanged             EventKind = "track_changed"
	KindPlaybackEnded            EventKind = "playback_ended"
	KindPlaybackPaused           EventKind = "playback_paused"
	KindPlaybackResumed          EventKind = "playback_resumed"
	KindTrackSeeked              EventKind = "track_seeked"
	KindMetadataAvailable        EventKind = "metadata_available"
	KindPlaybackHaltStateChanged EventKind = "playback_halt_state_changed"
	KindInactiveSession          EventKind = "inactive_session"
	KindVolumeChanged            EventKind = "volume_changed"
	KindPanicState               EventKind = "panic_state"
	KindConnectionDropped        EventKind = "connection_dropped"
	KindConnectionEstablished    EventKind = "connection_established"
)

var allKinds = []EventKind{
	KindContextChanged,
	KindTrackChanged,
	KindPlaybackEnded,
	KindPlaybackPaused,
	KindPlaybackResumed,
	KindTrackSeeked,
	KindMetadataAvailable,
	KindPlaybackHaltStateChanged,
	KindInactiveSession,
	KindVolumeChanged,
	KindPanicState,
	KindConnectionDropped,
	KindConnectionEstablished,
}

// Kinds returns every known event kind in declaration order.
func Kinds() []EventKind {
	return slices.Clone(allKinds)
}

// ParseEventKind validates a snake_case event kind name.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !slices.Contains(allKinds, k) {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return k, nil
}

// IsConnection reports whether the kind is delivered to ConnectionListeners.
func (k EventKind) IsConnection() bool {
	return k == KindConnectionDropped || k == KindConnectionEstablished
}

// Event is a serializable description of a single listener callback. Only the
// fields relevant to Kind are read.
type Event struct {
	Kind          EventKind      `json:"kind"`
	ContextURI    string         `json:"context_uri,omitempty"`
	TrackURI      string         `json:"track_uri,omitempty"`
	Metadata      *TrackMetadata `json:"metadata,omitempty"`
	UserInitiated bool           `json:"user_initiated,omitempty"`
	PositionMs    int64          `json:"position_ms,omitempty"`
	Volume        float64        `json:"volume,omitempty"`
	Halted        bool           `json:"halted,omitempty"`
	TimedOut      bool           `json:"timed_out,omitempty"`
}

// Validate checks that the fields required by Kind are present.
func (e Event) Validate() error {
	if _, err := ParseEventKind(string(e.Kind)); err != nil {
		return err
	}

	switch e.Kind {
	case KindContextChanged:
		if e.ContextURI == "" {
			return errors.New("context_uri is required")
		}
	case KindTrackChanged:
		if e.TrackURI == "" {
			return errors.New("track_uri is required")
		}
	case KindMetadataAvailable:
		if e.Metadata == nil {
			return errors.New("metadata is required")
		}
		if e.Metadata.TrackURI == "" && e.TrackURI == "" {
			return errors.New("metadata.uri is required")
		}
	case KindPlaybackPaused, KindPlaybackResumed, KindTrackSeeked, KindPlaybackHaltStateChanged:
		if e.PositionMs < 0 {
			return fmt.Errorf("position_ms must be >= 0, got %d", e.PositionMs)
		}
	case KindVolumeChanged:
		if !(e.Volume >= 0 && e.Volume <= 1) {
			return fmt.Errorf("volume must be within [0, 1], got %v", e.Volume)
		}
	}
	return nil
}
