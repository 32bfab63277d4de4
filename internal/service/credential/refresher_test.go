package credential

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/syncroom/pkg/spotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	mu    sync.Mutex
	calls int
	token spotify.Token
	err   error
}

func (f *fakeRequester) RequestToken(context.Context) (spotify.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	return f.token, f.err
}

func (f *fakeRequester) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakeStore struct {
	token     string
	expiresAt time.Time
}

func (f *fakeStore) SetToken(_ context.Context, token string, expiresAt time.Time) error {
	f.token = token
	f.expiresAt = expiresAt
	return nil
}

func (f *fakeStore) GetToken(context.Context) (string, time.Time, error) {
	if f.token == "" {
		return "", time.Time{}, errors.New("miss")
	}
	return f.token, f.expiresAt, nil
}

func TestTokenRefreshesOnDemand(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	req := &fakeRequester{token: spotify.Token{AccessToken: "first", ExpiresAt: now.Add(time.Hour)}}
	r := NewRefresher(req, nil)
	r.now = func() time.Time { return now }

	tok, err := r.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", tok)

	tok, err = r.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", tok)
	assert.Equal(t, 1, req.Calls())

	now = now.Add(2 * time.Hour)
	req.token = spotify.Token{AccessToken: "second", ExpiresAt: now.Add(time.Hour)}
	tok, err = r.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
	assert.Equal(t, 2, req.Calls())
}

func TestTokenFailure(t *testing.T) {
	req := &fakeRequester{err: errors.New("boom")}
	r := NewRefresher(req, nil)

	_, err := r.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenWarmsFromStore(t *testing.T) {
	now := time.Now()
	store := &fakeStore{token: "stored", expiresAt: now.Add(time.Hour)}
	req := &fakeRequester{err: errors.New("unreachable")}
	r := NewRefresher(req, store)

	tok, err := r.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored", tok)
	assert.Equal(t, 0, req.Calls())
}

func TestRefreshMirrorsIntoStore(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)
	store := &fakeStore{}
	r := NewRefresher(&fakeRequester{token: spotify.Token{AccessToken: "abc", ExpiresAt: expiresAt}}, store)

	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, "abc", store.token)
	assert.True(t, expiresAt.Equal(store.expiresAt))
}

func TestRunRetriesAfterFailure(t *testing.T) {
	req := &fakeRequester{err: errors.New("down")}
	r := NewRefresher(req, nil)
	r.successInterval = time.Hour
	r.failureInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return req.Calls() >= 3 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunWaitsAfterSuccess(t *testing.T) {
	req := &fakeRequester{token: spotify.Token{AccessToken: "ok"}}
	r := NewRefresher(req, nil)
	r.successInterval = time.Hour
	r.failureInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return req.Calls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, req.Calls())

	cancel()
	<-done
}
