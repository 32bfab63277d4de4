package inmemory

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sharetube/syncroom/internal/repository/connection"
)

type repo struct {
	senders map[string]connection.Sender
	mu      sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		senders: make(map[string]connection.Sender),
	}
}

func (r *repo) Add(connId string, sender connection.Sender) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "connId", connId)
	if _, ok := r.senders[connId]; ok {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.senders[connId] = sender
	return nil
}

// Remove forgets the connection and returns its sender; closing it is up to the caller.
func (r *repo) Remove(connId string) (connection.Sender, error) {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	sender, ok := r.senders[connId]
	if !ok {
		slog.Debug(funcName, "error", connection.ErrNotFound, "connId", connId)
		return nil, connection.ErrNotFound
	}
	delete(r.senders, connId)

	slog.Debug(funcName, "connId", connId)
	return sender, nil
}

func (r *repo) Send(connId string, msg any) error {
	r.mu.RLock()
	sender, ok := r.senders[connId]
	r.mu.RUnlock()

	if !ok {
		return connection.ErrNotFound
	}

	if err := sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send to %s: %w", connId, err)
	}

	return nil
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.senders)
}
