package room

import "github.com/sharetube/syncroom/internal/domain"

// Outbound event types.
const (
	TypeRoomCreated           = "roomCreated"
	TypeRoomJoined            = "roomJoined"
	TypeUserJoined            = "userJoined"
	TypeUserLeft              = "userLeft"
	TypeUserCountUpdate       = "userCountUpdate"
	TypePlay                  = "play"
	TypePause                 = "pause"
	TypeSeek                  = "seek"
	TypeNewSong               = "newSong"
	TypeSkip                  = "skip"
	TypePrevious              = "previous"
	TypeSpotifyTrackLoaded    = "spotifyTrackLoaded"
	TypeSpotifyPlaylistLoaded = "spotifyPlaylistLoaded"
	TypeError                 = "error"
)

const (
	trackFailureMessage    = "Failed to load Spotify track"
	playlistFailureMessage = "Failed to load Spotify playlist"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type RoomJoined struct {
	RoomId      string           `json:"roomId"`
	CurrentSong *string          `json:"currentSong"`
	IsPlaying   bool             `json:"isPlaying"`
	CurrentTime float64          `json:"currentTime"`
	VideoId     *string          `json:"videoId,omitempty"`
	State       domain.RoomState `json:"state"`
}

// Position is sent on skip and previous.
type Position struct {
	CurrentSong string  `json:"currentSong"`
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
}
