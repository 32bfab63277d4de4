package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/connection"
)

func (s *service) sendToConn(ctx context.Context, connId string, output Output) {
	if err := s.connRepo.Send(connId, output); err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			slog.DebugContext(ctx, "coordinator: recipient gone", "conn_id", connId, "type", output.Type)
			return
		}
		slog.WarnContext(ctx, "coordinator: failed to send", "conn_id", connId, "type", output.Type, "error", err)
	}
}

func (s *service) broadcast(ctx context.Context, connIds []string, output Output) {
	for _, connId := range connIds {
		s.sendToConn(ctx, connId, output)
	}
}

func (s *service) broadcastToRoom(ctx context.Context, r *domain.Room, output Output) {
	s.broadcast(ctx, r.Members.AsList(), output)
}

func (s *service) snapshot(r *domain.Room) RoomJoined {
	snap := r.Snapshot(s.now())

	joined := RoomJoined{
		RoomId:      snap.RoomID,
		IsPlaying:   snap.IsPlaying,
		CurrentTime: snap.CurrentTime,
		State:       snap.State,
	}
	if snap.Current != nil {
		joined.CurrentSong = &snap.Current.RawURL
		if snap.Current.Kind == domain.KindVideo {
			joined.VideoId = &snap.Current.ExternalID
		}
	}

	return joined
}
