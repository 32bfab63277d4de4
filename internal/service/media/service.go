package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/pkg/spotify"
	"github.com/sharetube/syncroom/pkg/ytvideodata"
	"golang.org/x/sync/singleflight"
)

var (
	ErrProviderRequest = errors.New("provider request failed")
	ErrEmptyPlaylist   = errors.New("playlist has no playable tracks")
	ErrUnsupportedKind = errors.New("unsupported media kind")
)

type iProvider interface {
	GetTrack(ctx context.Context, id string) (*spotify.Track, error)
	GetPlaylist(ctx context.Context, id string) (*spotify.Playlist, error)
}

type iCache interface {
	SetTrack(ctx context.Context, trackId string, track domain.TrackInfo) error
	GetTrack(ctx context.Context, trackId string) (domain.TrackInfo, error)
	SetPlaylist(ctx context.Context, playlistId string, tracks []domain.TrackInfo) error
	GetPlaylist(ctx context.Context, playlistId string) ([]domain.TrackInfo, error)
}

type iVideoData interface {
	Get(ctx context.Context, videoId string) (*ytvideodata.VideoData, error)
}

type service struct {
	provider iProvider
	cache    iCache
	videos   iVideoData
	group    singleflight.Group
}

// NewService creates the resolver. cache may be nil.
func NewService(provider iProvider, cache iCache, videos iVideoData) *service {
	return &service{
		provider: provider,
		cache:    cache,
		videos:   videos,
	}
}

func (s *service) ResolveTrack(ctx context.Context, trackId string) (domain.TrackInfo, error) {
	funcName := "media.ResolveTrack"
	if s.cache != nil {
		if track, err := s.cache.GetTrack(ctx, trackId); err == nil {
			slog.DebugContext(ctx, funcName, "cache", "hit", "trackId", trackId)
			return track, nil
		}
	}

	v, err, _ := s.group.Do("track:"+trackId, func() (any, error) {
		track, err := s.provider.GetTrack(ctx, trackId)
		if err != nil {
			return nil, err
		}

		return toTrackInfo(track), nil
	})
	if err != nil {
		return domain.TrackInfo{}, fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}

	info := v.(domain.TrackInfo)
	if s.cache != nil {
		if err := s.cache.SetTrack(ctx, trackId, info); err != nil {
			slog.WarnContext(ctx, funcName, "error", err)
		}
	}

	return info, nil
}

// ResolvePlaylist returns every playlist entry that still has a track behind it.
func (s *service) ResolvePlaylist(ctx context.Context, playlistId string) ([]domain.TrackInfo, error) {
	funcName := "media.ResolvePlaylist"
	if s.cache != nil {
		if tracks, err := s.cache.GetPlaylist(ctx, playlistId); err == nil && len(tracks) > 0 {
			slog.DebugContext(ctx, funcName, "cache", "hit", "playlistId", playlistId)
			return tracks, nil
		}
	}

	v, err, _ := s.group.Do("playlist:"+playlistId, func() (any, error) {
		playlist, err := s.provider.GetPlaylist(ctx, playlistId)
		if err != nil {
			return nil, err
		}

		tracks := make([]domain.TrackInfo, 0, len(playlist.Tracks.Items))
		for _, item := range playlist.Tracks.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, toTrackInfo(item.Track))
		}

		return tracks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderRequest, err)
	}

	tracks := v.([]domain.TrackInfo)
	if len(tracks) == 0 {
		return nil, ErrEmptyPlaylist
	}

	if s.cache != nil {
		if err := s.cache.SetPlaylist(ctx, playlistId, tracks); err != nil {
			slog.WarnContext(ctx, funcName, "error", err)
		}
	}

	return tracks, nil
}

// ResolveStreamingMetadata returns one entry for a track and the playable entries of a collection.
func (s *service) ResolveStreamingMetadata(ctx context.Context, kind domain.Kind, id string) ([]domain.TrackInfo, error) {
	switch kind {
	case domain.KindTrack:
		track, err := s.ResolveTrack(ctx, id)
		if err != nil {
			return nil, err
		}
		return []domain.TrackInfo{track}, nil
	case domain.KindTrackCollection:
		return s.ResolvePlaylist(ctx, id)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

type Preview struct {
	Kind         domain.Kind
	Title        string
	Author       string
	ThumbnailURL *string
}

// Preview describes a single video or track link without touching any room.
func (s *service) Preview(ctx context.Context, rawURL string) (Preview, error) {
	ref := Classify(rawURL)

	switch ref.Kind {
	case domain.KindVideo:
		data, err := s.videos.Get(ctx, ref.ExternalID)
		if err != nil {
			return Preview{}, fmt.Errorf("failed to get video data: %w", err)
		}

		preview := Preview{
			Kind:   ref.Kind,
			Title:  data.Title,
			Author: data.AuthorName,
		}
		if data.ThumbnailUrl != "" {
			preview.ThumbnailURL = &data.ThumbnailUrl
		}
		return preview, nil
	case domain.KindTrack:
		track, err := s.ResolveTrack(ctx, ref.ExternalID)
		if err != nil {
			return Preview{}, err
		}

		return Preview{
			Kind:   ref.Kind,
			Title:  track.Name,
			Author: track.Artist,
		}, nil
	default:
		return Preview{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, ref.Kind)
	}
}

func toTrackInfo(track *spotify.Track) domain.TrackInfo {
	info := domain.TrackInfo{
		Name:       track.Name,
		URI:        track.URI,
		DurationMs: track.DurationMs,
		PreviewURL: track.PreviewURL,
	}
	if len(track.Artists) > 0 {
		info.Artist = track.Artists[0].Name
	}

	return info
}
