package domain

type Kind string

const (
	KindVideo           Kind = "VIDEO"
	KindVideoCollection Kind = "VIDEO_COLLECTION"
	KindTrack           Kind = "TRACK"
	KindTrackCollection Kind = "TRACK_COLLECTION"
	KindUnknown         Kind = "UNKNOWN"
)

// IsStreaming reports whether the reference points at the music streaming provider.
func (k Kind) IsStreaming() bool {
	return k == KindTrack || k == KindTrackCollection
}

type MediaReference struct {
	Kind         Kind   `json:"kind"`
	ExternalID   string `json:"external_id"`
	CollectionID string `json:"collection_id,omitempty"`
	RawURL       string `json:"raw_url"`
}

type TrackInfo struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	URI        string  `json:"uri"`
	DurationMs int     `json:"duration_ms"`
	PreviewURL *string `json:"preview_url"`
}
