package player

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder implements both listener interfaces and records each call.
type recorder struct {
	calls    []string
	metadata []Metadata
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) OnContextChanged(uri string) { r.add("context %s", uri) }
func (r *recorder) OnTrackChanged(id PlayableID, md Metadata, user bool) {
	r.metadata = append(r.metadata, md)
	r.add("track %s %t", id.URI(), user)
}
func (r *recorder) OnPlaybackEnded()            { r.add("ended") }
func (r *recorder) OnPlaybackPaused(pos int64)  { r.add("paused %d", pos) }
func (r *recorder) OnPlaybackResumed(pos int64) { r.add("resumed %d", pos) }
func (r *recorder) OnTrackSeeked(pos int64)     { r.add("seeked %d", pos) }
func (r *recorder) OnMetadataAvailable(md Metadata) {
	r.metadata = append(r.metadata, md)
	r.add("metadata %s", md.URI())
}
func (r *recorder) OnPlaybackHaltStateChanged(halted bool, pos int64) {
	r.add("halt %t %d", halted, pos)
}
func (r *recorder) OnInactiveSession(timedOut bool) { r.add("inactive %t", timedOut) }
func (r *recorder) OnVolumeChanged(v float64)       { r.add("volume %.2f", v) }
func (r *recorder) OnPanicState()                   { r.add("panic") }
func (r *recorder) OnConnectionDropped()            { r.add("dropped") }
func (r *recorder) OnConnectionEstablished()        { r.add("established") }

func TestSourceDeliverRoutesEveryKind(t *testing.T) {
	src := NewSource()
	rec := &recorder{}
	src.AddPlaybackListener(rec)
	src.AddConnectionListener(rec)

	events := []Event{
		{Kind: KindContextChanged, ContextURI: "spotify:playlist:1"},
		{Kind: KindTrackChanged, TrackURI: "spotify:track:1", UserInitiated: true},
		{Kind: KindPlaybackEnded},
		{Kind: KindPlaybackPaused, PositionMs: 10},
		{Kind: KindPlaybackResumed, PositionMs: 20},
		{Kind: KindTrackSeeked, PositionMs: 30},
		{Kind: KindMetadataAvailable, Metadata: &TrackMetadata{TrackURI: "spotify:track:2"}},
		{Kind: KindPlaybackHaltStateChanged, Halted: true, PositionMs: 40},
		{Kind: KindInactiveSession, TimedOut: true},
		{Kind: KindVolumeChanged, Volume: 0.5},
		{Kind: KindPanicState},
		{Kind: KindConnectionDropped},
		{Kind: KindConnectionEstablished},
	}
	for _, ev := range events {
		require.NoError(t, src.Deliver(ev), ev.Kind)
	}

	assert.Equal(t, []string{
		"context spotify:playlist:1",
		"track spotify:track:1 true",
		"ended",
		"paused 10",
		"resumed 20",
		"seeked 30",
		"metadata spotify:track:2",
		"halt true 40",
		"inactive true",
		"volume 0.50",
		"panic",
		"dropped",
		"established",
	}, rec.calls)
}

func TestSourceTrackChangedWithoutMetadataPassesNilInterface(t *testing.T) {
	src := NewSource()
	rec := &recorder{}
	src.AddPlaybackListener(rec)

	require.NoError(t, src.Deliver(Event{Kind: KindTrackChanged, TrackURI: "spotify:track:1"}))
	require.Len(t, rec.metadata, 1)
	assert.Nil(t, rec.metadata[0])
}

func TestSourceMetadataFallsBackToTrackURI(t *testing.T) {
	src := NewSource()
	rec := &recorder{}
	src.AddPlaybackListener(rec)

	md := &TrackMetadata{TrackName: "Song"}
	require.NoError(t, src.Deliver(Event{Kind: KindMetadataAvailable, TrackURI: "spotify:track:9", Metadata: md}))
	assert.Equal(t, []string{"metadata spotify:track:9"}, rec.calls)
	assert.Empty(t, md.TrackURI, "caller metadata must not be mutated")
}

func TestSourceRejectsInvalidEvent(t *testing.T) {
	src := NewSource()
	rec := &recorder{}
	src.AddPlaybackListener(rec)

	tests := []Event{
		{Kind: "bogus"},
		{Kind: KindContextChanged},
		{Kind: KindTrackChanged},
		{Kind: KindMetadataAvailable},
		{Kind: KindVolumeChanged, Volume: 1.5},
		{Kind: KindVolumeChanged, Volume: math.NaN()},
		{Kind: KindVolumeChanged, Volume: math.Inf(-1)},
		{Kind: KindTrackSeeked, PositionMs: -1},
	}
	for _, ev := range tests {
		assert.Error(t, src.Deliver(ev), ev.Kind)
	}
	assert.Empty(t, rec.calls)
}

type panicky struct{ recorder }

func (p *panicky) OnPanicState() { panic("boom") }

func TestSourceRecoversListenerPanic(t *testing.T) {
	src := NewSource()
	bad := &panicky{}
	good := &recorder{}
	src.AddPlaybackListener(bad)
	src.AddPlaybackListener(good)

	require.NotPanics(t, func() {
		require.NoError(t, src.Deliver(Event{Kind: KindPanicState}))
	})
	assert.Equal(t, []string{"panic"}, good.calls)
}

func TestParseEventKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseEventKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseEventKind("volume")
	assert.Error(t, err)
	assert.Len(t, Kinds(), 13)
}
