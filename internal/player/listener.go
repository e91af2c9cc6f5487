package player

// PlayableID identifies a track or episode in URI form.
type PlayableID interface {
	URI() string
}

// TrackID is a PlayableID backed by its URI string.
type TrackID string

func (id TrackID) URI() string { return string(id) }

// Metadata exposes the read-only track details carried by playback events.
type Metadata interface {
	Name() string
	Artist() string
	AlbumName() string
	// DurationMs is the track length in milliseconds.
	DurationMs() int
	URI() string
}

// PlaybackListener receives playback engine notifications. Callbacks run on
// the engine's delivery goroutine.
type PlaybackListener interface {
	OnContextChanged(contextURI string)
	// OnTrackChanged may receive nil metadata when it is not loaded yet.
	OnTrackChanged(id PlayableID, metadata Metadata, userInitiated bool)
	OnPlaybackEnded()
	OnPlaybackPaused(positionMs int64)
	OnPlaybackResumed(positionMs int64)
	OnTrackSeeked(positionMs int64)
	OnMetadataAvailable(metadata Metadata)
	OnPlaybackHaltStateChanged(halted bool, positionMs int64)
	OnInactiveSession(timedOut bool)
	// OnVolumeChanged receives the volume as a fraction in [0, 1].
	OnVolumeChanged(volume float64)
	OnPanicState()
}

// ConnectionListener receives session connectivity notifications.
type ConnectionListener interface {
	OnConnectionDropped()
	OnConnectionEstablished()
}
