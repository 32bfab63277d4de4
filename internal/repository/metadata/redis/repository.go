package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/metadata"
)

const tokenKey = "credential:token"

type repo struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRepo(rc *redis.Client, ttl time.Duration) *repo {
	return &repo{
		rc:  rc,
		ttl: ttl,
	}
}

func (r repo) getTrackKey(trackId string) string {
	return "track:" + trackId
}

func (r repo) getPlaylistKey(playlistId string) string {
	return "playlist:" + playlistId
}

func (r repo) SetTrack(ctx context.Context, trackId string, track domain.TrackInfo) error {
	if err := r.setJSON(ctx, r.getTrackKey(trackId), track); err != nil {
		return fmt.Errorf("failed to set track: %w", err)
	}

	return nil
}

func (r repo) GetTrack(ctx context.Context, trackId string) (domain.TrackInfo, error) {
	var track domain.TrackInfo
	if err := r.getJSON(ctx, r.getTrackKey(trackId), &track); err != nil {
		return domain.TrackInfo{}, fmt.Errorf("failed to get track: %w", err)
	}

	return track, nil
}

func (r repo) SetPlaylist(ctx context.Context, playlistId string, tracks []domain.TrackInfo) error {
	if err := r.setJSON(ctx, r.getPlaylistKey(playlistId), tracks); err != nil {
		return fmt.Errorf("failed to set playlist: %w", err)
	}

	return nil
}

func (r repo) GetPlaylist(ctx context.Context, playlistId string) ([]domain.TrackInfo, error) {
	var tracks []domain.TrackInfo
	if err := r.getJSON(ctx, r.getPlaylistKey(playlistId), &tracks); err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	return tracks, nil
}

// SetToken stores the provider credential until it expires.
func (r repo) SetToken(ctx context.Context, accessToken string, expiresAt time.Time) error {
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, tokenKey,
		"access_token", accessToken,
		"expires_at", expiresAt.Unix(),
	)
	if !expiresAt.IsZero() {
		pipe.ExpireAt(ctx, tokenKey, expiresAt)
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}

	return nil
}

type token struct {
	AccessToken string `redis:"access_token"`
	ExpiresAt   int64  `redis:"expires_at"`
}

func (r repo) GetToken(ctx context.Context) (string, time.Time, error) {
	res := r.rc.HGetAll(ctx, tokenKey)
	if err := res.Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get token: %w", err)
	}

	if len(res.Val()) == 0 {
		return "", time.Time{}, metadata.ErrCacheMiss
	}

	var t token
	if err := res.Scan(&t); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to scan token: %w", err)
	}

	return t.AccessToken, time.Unix(t.ExpiresAt, 0), nil
}

func (r repo) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.rc.Set(ctx, key, data, r.ttl).Err()
}

func (r repo) getJSON(ctx context.Context, key string, dst any) error {
	data, err := r.rc.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return metadata.ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal(data, dst)
}
