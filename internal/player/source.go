package player

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattjoyce/playhook/internal/log"
)

// Source fans events out to registered listeners. Delivery is synchronous:
// Deliver returns only after every listener callback has returned.
type Source struct {
	mu         sync.RWMutex
	playback   []PlaybackListener
	connection []ConnectionListener
	logger     *slog.Logger
}

// NewSource creates an event source with no listeners.
func NewSource() *Source {
	return &Source{logger: log.WithComponent("player")}
}

func (s *Source) AddPlaybackListener(l PlaybackListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback = append(s.playback, l)
}

func (s *Source) AddConnectionListener(l ConnectionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connection = append(s.connection, l)
}

// Deliver validates ev and invokes the matching callback on every listener,
// in registration order, on the caller's goroutine.
func (s *Source) Deliver(ev Event) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	s.mu.RLock()
	playback := s.playback
	connection := s.connection
	s.mu.RUnlock()

	if ev.Kind.IsConnection() {
		for _, l := range connection {
			s.safeCall(ev.Kind, func() { deliverConnection(l, ev) })
		}
		return nil
	}
	for _, l := range playback {
		s.safeCall(ev.Kind, func() { deliverPlayback(l, ev) })
	}
	return nil
}

// safeCall keeps one misbehaving listener from stopping delivery to the rest.
func (s *Source) safeCall(kind EventKind, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("listener panicked", "event", string(kind), "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

func deliverPlayback(l PlaybackListener, ev Event) {
	switch ev.Kind {
	case KindContextChanged:
		l.OnContextChanged(ev.ContextURI)
	case KindTrackChanged:
		var md Metadata
		if ev.Metadata != nil {
			md = ev.Metadata
		}
		l.OnTrackChanged(TrackID(ev.TrackURI), md, ev.UserInitiated)
	case KindPlaybackEnded:
		l.OnPlaybackEnded()
	case KindPlaybackPaused:
		l.OnPlaybackPaused(ev.PositionMs)
	case KindPlaybackResumed:
		l.OnPlaybackResumed(ev.PositionMs)
	case KindTrackSeeked:
		l.OnTrackSeeked(ev.PositionMs)
	case KindMetadataAvailable:
		md := *ev.Metadata
		if md.TrackURI == "" {
			md.TrackURI = ev.TrackURI
		}
		l.OnMetadataAvailable(&md)
	case KindPlaybackHaltStateChanged:
		l.OnPlaybackHaltStateChanged(ev.Halted, ev.PositionMs)
	case KindInactiveSession:
		l.OnInactiveSession(ev.TimedOut)
	case KindVolumeChanged:
		l.OnVolumeChanged(ev.Volume)
	case KindPanicState:
		l.OnPanicState()
	}
}

func deliverConnection(l ConnectionListener, ev Event) {
	switch ev.Kind {
	case KindConnectionDropped:
		l.OnConnectionDropped()
	case KindConnectionEstablished:
		l.OnConnectionEstablished()
	}
}
