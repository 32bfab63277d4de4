package domain

import "time"

type RoomState string

const (
	RoomEmpty   RoomState = "EMPTY"
	RoomLoading RoomState = "LOADING"
	RoomPlaying RoomState = "PLAYING"
	RoomPaused  RoomState = "PAUSED"
)

type Room struct {
	ID                string
	HostConnID        string
	Members           *Members
	Queue             *Queue
	Player            *Player
	StreamingDeviceID string
	CreatedAt         time.Time
}

func NewRoom(id, hostConnID string, now time.Time) *Room {
	return &Room{
		ID:         id,
		HostConnID: hostConnID,
		Members:    NewMembers(hostConnID),
		Queue:      NewQueue(),
		Player:     NewPlayer(now),
		CreatedAt:  now,
	}
}

// State derives the session state. Streaming media stays LOADING until a device is bound.
func (r Room) State() RoomState {
	ref, ok := r.Queue.CurrentReference()
	switch {
	case !ok:
		return RoomEmpty
	case ref.Kind.IsStreaming() && r.StreamingDeviceID == "":
		return RoomLoading
	case r.Player.IsPlaying():
		return RoomPlaying
	default:
		return RoomPaused
	}
}

type Snapshot struct {
	RoomID      string
	Current     *MediaReference
	IsPlaying   bool
	CurrentTime float64
	State       RoomState
}

// Snapshot captures what a joining member needs to catch up. Without current media the
// clock is reported as stopped at zero.
func (r Room) Snapshot(now time.Time) Snapshot {
	ref, ok := r.Queue.CurrentReference()
	if !ok {
		return Snapshot{RoomID: r.ID, State: RoomEmpty}
	}

	return Snapshot{
		RoomID:      r.ID,
		Current:     &ref,
		IsPlaying:   r.Player.IsPlaying(),
		CurrentTime: r.Player.PositionAt(now),
		State:       r.State(),
	}
}
