package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/syncroom/pkg/spotify"
)

const (
	SuccessInterval = 50 * time.Minute
	FailureInterval = time.Minute
)

var ErrNoCredential = errors.New("provider credential unavailable")

type iRequester interface {
	RequestToken(ctx context.Context) (spotify.Token, error)
}

type iStore interface {
	SetToken(ctx context.Context, accessToken string, expiresAt time.Time) error
	GetToken(ctx context.Context) (string, time.Time, error)
}

// Refresher keeps the process-wide provider credential. It never touches room state.
type Refresher struct {
	requester       iRequester
	store           iStore
	now             func() time.Time
	successInterval time.Duration
	failureInterval time.Duration

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewRefresher creates a refresher. store may be nil, in which case the credential lives only
// in memory.
func NewRefresher(requester iRequester, store iStore) *Refresher {
	return &Refresher{
		requester:       requester,
		store:           store,
		now:             time.Now,
		successInterval: SuccessInterval,
		failureInterval: FailureInterval,
	}
}

// Refresh requests a new credential and replaces the cached one.
func (r *Refresher) Refresh(ctx context.Context) error {
	funcName := "credential.Refresh"
	tok, err := r.requester.RequestToken(ctx)
	if err != nil {
		slog.WarnContext(ctx, funcName, "error", err)
		return fmt.Errorf("failed to request token: %w", err)
	}

	r.set(tok.AccessToken, tok.ExpiresAt)

	if r.store != nil {
		if err := r.store.SetToken(ctx, tok.AccessToken, tok.ExpiresAt); err != nil {
			slog.WarnContext(ctx, funcName, "error", fmt.Errorf("failed to store token: %w", err))
		}
	}

	slog.InfoContext(ctx, funcName, "expires_at", tok.ExpiresAt)
	return nil
}

// Run refreshes on a fixed schedule until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	for {
		interval := r.successInterval
		if err := r.Refresh(ctx); err != nil {
			interval = r.failureInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Token returns a valid credential, refreshing on demand when none is held.
func (r *Refresher) Token(ctx context.Context) (string, error) {
	if tok, ok := r.cached(); ok {
		return tok, nil
	}

	if r.store != nil {
		tok, expiresAt, err := r.store.GetToken(ctx)
		if err == nil && r.valid(tok, expiresAt) {
			r.set(tok, expiresAt)
			return tok, nil
		}
	}

	if err := r.Refresh(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCredential, err)
	}

	if tok, ok := r.cached(); ok {
		return tok, nil
	}

	return "", ErrNoCredential
}

func (r *Refresher) cached() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.valid(r.token, r.expiresAt) {
		return "", false
	}

	return r.token, true
}

func (r *Refresher) set(token string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.token = token
	r.expiresAt = expiresAt
}

// A zero expiry means the provider did not report one.
func (r *Refresher) valid(token string, expiresAt time.Time) bool {
	if token == "" {
		return false
	}

	return expiresAt.IsZero() || r.now().Before(expiresAt)
}
