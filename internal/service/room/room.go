package room

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharetube/syncroom/internal/domain"
)

type CreateRoomParams struct {
	ConnId string
}

// CreateRoom opens a room with the requester as host and only member.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (string, error) {
	var (
		roomId    string
		createErr error
	)

	if err := s.exec(ctx, func(ctx context.Context) {
		created, err := s.roomRepo.Create(params.ConnId, s.now())
		if err != nil {
			createErr = err
			return
		}
		roomId = created.ID

		slog.InfoContext(ctx, "room created", "room_id", roomId, "rooms", s.roomRepo.Count())
		s.sendToConn(ctx, params.ConnId, Output{Type: TypeRoomCreated, Payload: roomId})
		s.broadcastToRoom(ctx, created, Output{Type: TypeUserCountUpdate, Payload: created.Members.Length()})
	}); err != nil {
		return "", err
	}

	if createErr != nil {
		return "", fmt.Errorf("failed to create room: %w", createErr)
	}

	return roomId, nil
}

// RoomSnapshot returns what a joining member would receive for roomId.
func (s *service) RoomSnapshot(ctx context.Context, roomId string) (RoomJoined, bool, error) {
	var (
		snapshot RoomJoined
		found    bool
	)

	err := s.withRoom(ctx, roomId, func(_ context.Context, r *domain.Room) {
		snapshot = s.snapshot(r)
		found = true
	})

	return snapshot, found, err
}
