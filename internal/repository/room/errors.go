package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrRoomIdsExhausted   = errors.New("failed to generate unique room id")
	ErrMemberAlreadyAdded = errors.New("member already in room")
)
