package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/room"
)

type JoinRoomParams struct {
	ConnId string
	RoomId string
}

// JoinRoom adds the connection to the room, sends it a catch-up snapshot and tells the room.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) error {
	return s.withRoom(ctx, params.RoomId, func(ctx context.Context, r *domain.Room) {
		if err := s.roomRepo.AddMember(r.ID, params.ConnId); err != nil {
			if !errors.Is(err, room.ErrMemberAlreadyAdded) {
				slog.ErrorContext(ctx, "failed to add member", "error", err)
				return
			}
			slog.DebugContext(ctx, "member rejoined", "room_id", r.ID)
		}

		s.sendToConn(ctx, params.ConnId, Output{Type: TypeRoomJoined, Payload: s.snapshot(r)})

		s.broadcastToRoom(ctx, r, Output{Type: TypeUserJoined, Payload: params.ConnId})
		s.broadcastToRoom(ctx, r, Output{Type: TypeUserCountUpdate, Payload: r.Members.Length()})
	})
}

type LeaveRoomParams struct {
	ConnId string
	RoomId string
}

func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	return s.exec(ctx, func(ctx context.Context) {
		departure, err := s.roomRepo.RemoveMember(params.RoomId, params.ConnId)
		if err != nil {
			slog.DebugContext(ctx, "leave ignored", "room_id", params.RoomId, "error", err)
			return
		}

		s.announceDeparture(ctx, params.ConnId, departure)
	})
}

// Disconnect removes the connection from every room it was in.
func (s *service) Disconnect(ctx context.Context, connId string) error {
	return s.exec(ctx, func(ctx context.Context) {
		for _, departure := range s.roomRepo.RemoveConnectionEverywhere(connId) {
			s.announceDeparture(ctx, connId, departure)
		}
	})
}

func (s *service) announceDeparture(ctx context.Context, connId string, departure room.Departure) {
	if departure.Deleted {
		slog.InfoContext(ctx, "room deleted", "room_id", departure.RoomId, "rooms", s.roomRepo.Count())
		return
	}

	s.broadcast(ctx, departure.Remaining, Output{Type: TypeUserLeft, Payload: connId})
	s.broadcast(ctx, departure.Remaining, Output{Type: TypeUserCountUpdate, Payload: len(departure.Remaining)})
}
