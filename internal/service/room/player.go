package room

import (
	"context"

	"github.com/sharetube/syncroom/internal/domain"
)

func (s *service) Play(ctx context.Context, roomId string) error {
	return s.withRoom(ctx, roomId, func(ctx context.Context, r *domain.Room) {
		r.Player.Play(s.now())
		s.broadcastToRoom(ctx, r, Output{Type: TypePlay})
	})
}

func (s *service) Pause(ctx context.Context, roomId string) error {
	return s.withRoom(ctx, roomId, func(ctx context.Context, r *domain.Room) {
		r.Player.Pause(s.now())
		s.broadcastToRoom(ctx, r, Output{Type: TypePause})
	})
}

type SeekParams struct {
	RoomId string
	Time   float64
}

// Seek is echoed to the sender too, as confirmation.
func (s *service) Seek(ctx context.Context, params *SeekParams) error {
	return s.withRoom(ctx, params.RoomId, func(ctx context.Context, r *domain.Room) {
		r.Player.Seek(params.Time, s.now())
		s.broadcastToRoom(ctx, r, Output{Type: TypeSeek, Payload: params.Time})
	})
}

type UpdateTimeParams struct {
	RoomId      string
	CurrentTime float64
}

// UpdateTime records a periodic position report. Nothing is broadcast.
func (s *service) UpdateTime(ctx context.Context, params *UpdateTimeParams) error {
	return s.withRoom(ctx, params.RoomId, func(_ context.Context, r *domain.Room) {
		r.Player.Report(params.CurrentTime, s.now())
	})
}
