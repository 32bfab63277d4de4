package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/room"
)

var (
	ErrStopped           = errors.New("coordinator stopped")
	ErrNoStreamingDevice = errors.New("no streaming device bound to room")
)

type iRoomRepo interface {
	Create(hostConnId string, now time.Time) (*domain.Room, error)
	Get(roomId string) (*domain.Room, error)
	AddMember(roomId, connId string) error
	RemoveMember(roomId, connId string) (room.Departure, error)
	RemoveConnectionEverywhere(connId string) []room.Departure
	Count() int
}

type iConnRepo interface {
	Send(connId string, msg any) error
}

type iResolver interface {
	ResolveStreamingMetadata(ctx context.Context, kind domain.Kind, id string) ([]domain.TrackInfo, error)
}

type event struct {
	ctx  context.Context
	fn   func(ctx context.Context)
	done chan struct{}
}

// service is the session coordinator. Every room mutation and the broadcast it causes run on the
// single goroutine started by Run, so rooms need no locking of their own.
type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	resolver iResolver
	now      func() time.Time
	events   chan event
	stopped  chan struct{}

	// resolving counts provider lookups whose result has not been applied yet.
	resolving sync.WaitGroup
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, resolver iResolver) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		resolver: resolver,
		now:      time.Now,
		events:   make(chan event),
		stopped:  make(chan struct{}),
	}
}

// Run processes events in arrival order until ctx is done.
func (s *service) Run(ctx context.Context) error {
	defer close(s.stopped)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *service) handle(ev event) {
	defer close(ev.done)
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ev.ctx, "coordinator: event panicked", "panic", r)
		}
	}()

	ev.fn(ev.ctx)
}

// exec runs fn on the event loop and waits for it to finish.
func (s *service) exec(ctx context.Context, fn func(ctx context.Context)) error {
	ev := event{
		ctx:  ctx,
		fn:   fn,
		done: make(chan struct{}),
	}

	select {
	case s.events <- ev:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}

	<-ev.done
	return nil
}

// withRoom runs fn on the event loop against roomId. Events for rooms that no longer exist are
// dropped without error.
func (s *service) withRoom(ctx context.Context, roomId string, fn func(ctx context.Context, r *domain.Room)) error {
	return s.exec(ctx, func(ctx context.Context) {
		found, err := s.roomRepo.Get(roomId)
		if err != nil {
			if errors.Is(err, room.ErrRoomNotFound) {
				slog.DebugContext(ctx, "coordinator: dropped event for absent room", "room_id", roomId)
				return
			}
			slog.ErrorContext(ctx, "coordinator: failed to get room", "room_id", roomId, "error", err)
			return
		}

		fn(ctx, found)
	})
}
