package player

// TrackMetadata is the plain-value Metadata used by the HTTP and CLI sources.
type TrackMetadata struct {
	TrackURI    string `json:"uri"`
	TrackName   string `json:"name"`
	TrackArtist string `json:"artist"`
	Album       string `json:"album"`
	Duration    int    `json:"duration_ms"`
}

func (m *TrackMetadata) Name() string      { return m.TrackName }
func (m *TrackMetadata) Artist() string    { return m.TrackArtist }
func (m *TrackMetadata) AlbumName() string { return m.Album }
func (m *TrackMetadata) DurationMs() int   { return m.Duration }
func (m *TrackMetadata) URI() string       { return m.TrackURI }
