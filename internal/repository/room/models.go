package room

// Departure describes the effect of removing a connection from one room.
type Departure struct {
	RoomId    string
	Remaining []string
	Deleted   bool
}
