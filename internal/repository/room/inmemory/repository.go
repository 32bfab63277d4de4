package inmemory

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/room"
	"golang.org/x/exp/maps"
)

const maxIdAttempts = 8

type iGenerator interface {
	GenerateRandomString(length int) string
}

// repo is the room registry. The mutex guards the map only: rooms handed out are mutated by the
// single coordinator loop.
type repo struct {
	rooms     map[string]*domain.Room
	generator iGenerator
	idLength  int
	mu        sync.RWMutex
}

func NewRepo(generator iGenerator, idLength int) *repo {
	return &repo{
		rooms:     make(map[string]*domain.Room),
		generator: generator,
		idLength:  idLength,
	}
}

// Create registers a new room with hostConnId as its only member. Ids already in use are
// regenerated a bounded number of times.
func (r *repo) Create(hostConnId string, now time.Time) (*domain.Room, error) {
	funcName := "room.inmemory.Create"
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxIdAttempts; attempt++ {
		roomId := r.generator.GenerateRandomString(r.idLength)
		if _, taken := r.rooms[roomId]; taken {
			slog.Debug(funcName, "collision", roomId)
			continue
		}

		newRoom := domain.NewRoom(roomId, hostConnId, now)
		r.rooms[roomId] = newRoom

		slog.Debug(funcName, "roomId", roomId, "hostConnId", hostConnId)
		return newRoom, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", room.ErrRoomIdsExhausted, maxIdAttempts)
}

func (r *repo) Get(roomId string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found, ok := r.rooms[roomId]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return found, nil
}

func (r *repo) AddMember(roomId, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found, ok := r.rooms[roomId]
	if !ok {
		return room.ErrRoomNotFound
	}

	if !found.Members.Add(connId) {
		return room.ErrMemberAlreadyAdded
	}

	return nil
}

// RemoveMember deletes the room when its last member leaves.
func (r *repo) RemoveMember(roomId, connId string) (room.Departure, error) {
	funcName := "room.inmemory.RemoveMember"
	r.mu.Lock()
	defer r.mu.Unlock()

	found, ok := r.rooms[roomId]
	if !ok {
		return room.Departure{}, room.ErrRoomNotFound
	}

	if !found.Members.Remove(connId) {
		return room.Departure{}, room.ErrMemberNotFound
	}

	departure := r.settle(found)
	slog.Debug(funcName, "roomId", roomId, "connId", connId, "deleted", departure.Deleted)
	return departure, nil
}

// RemoveConnectionEverywhere drops connId from every room it belongs to.
func (r *repo) RemoveConnectionEverywhere(connId string) []room.Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomIds := maps.Keys(r.rooms)
	slices.Sort(roomIds)

	var departures []room.Departure
	for _, roomId := range roomIds {
		found := r.rooms[roomId]
		if !found.Members.Remove(connId) {
			continue
		}
		departures = append(departures, r.settle(found))
	}

	return departures
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *repo) settle(found *domain.Room) room.Departure {
	departure := room.Departure{
		RoomId:    found.ID,
		Remaining: found.Members.AsList(),
	}

	if found.Members.Length() == 0 {
		delete(r.rooms, found.ID)
		departure.Deleted = true
	}

	return departure
}
