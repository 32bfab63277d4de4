package room

import (
	"context"
	"log/slog"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/service/media"
)

type AddSongParams struct {
	ConnId string
	RoomId string
	URL    string
}

// AddSong appends the link to the queue. Streaming links are additionally resolved in the
// background; the append itself never waits for the provider.
func (s *service) AddSong(ctx context.Context, params *AddSongParams) error {
	ref := media.Classify(params.URL)

	return s.withRoom(ctx, params.RoomId, func(ctx context.Context, r *domain.Room) {
		if r.Queue.Append(ref) {
			r.Player.Restart(s.now())
			s.broadcastToRoom(ctx, r, Output{Type: TypeNewSong, Payload: ref.RawURL})
		}

		if ref.Kind.IsStreaming() {
			s.resolveAsync(ctx, params.ConnId, r.ID, ref, false)
		}
	})
}

func (s *service) Skip(ctx context.Context, roomId string) error {
	return s.step(ctx, roomId, TypeSkip, (*domain.Queue).Advance)
}

func (s *service) Previous(ctx context.Context, roomId string) error {
	return s.step(ctx, roomId, TypePrevious, (*domain.Queue).Retreat)
}

// step moves the queue pointer. With an empty queue and an external current reference the
// reference is re-sent unchanged and the player is left alone.
func (s *service) step(ctx context.Context, roomId, outputType string, move func(*domain.Queue) (domain.MediaReference, bool)) error {
	return s.withRoom(ctx, roomId, func(ctx context.Context, r *domain.Room) {
		fromQueue := r.Queue.Len() > 0

		ref, ok := move(r.Queue)
		if !ok {
			return
		}

		if fromQueue {
			r.Player.Restart(s.now())
		}

		s.broadcastToRoom(ctx, r, Output{
			Type: outputType,
			Payload: Position{
				CurrentSong: ref.RawURL,
				CurrentTime: 0,
				IsPlaying:   true,
			},
		})
	})
}

type AddStreamingTrackParams struct {
	ConnId   string
	RoomId   string
	TrackURL string
	TrackId  string
}

// AddStreamingTrack loads track metadata for the room. It fails for the requester when the room
// has no streaming device bound by the time the metadata arrives.
func (s *service) AddStreamingTrack(ctx context.Context, params *AddStreamingTrackParams) error {
	ref := domain.MediaReference{
		Kind:       domain.KindTrack,
		ExternalID: params.TrackId,
		RawURL:     params.TrackURL,
	}

	return s.withRoom(ctx, params.RoomId, func(ctx context.Context, r *domain.Room) {
		s.resolveAsync(ctx, params.ConnId, r.ID, ref, true)
	})
}

type AddStreamingPlaylistParams struct {
	ConnId      string
	RoomId      string
	PlaylistURL string
	PlaylistId  string
}

func (s *service) AddStreamingPlaylist(ctx context.Context, params *AddStreamingPlaylistParams) error {
	ref := domain.MediaReference{
		Kind:         domain.KindTrackCollection,
		ExternalID:   params.PlaylistId,
		CollectionID: params.PlaylistId,
		RawURL:       params.PlaylistURL,
	}

	return s.withRoom(ctx, params.RoomId, func(ctx context.Context, r *domain.Room) {
		s.resolveAsync(ctx, params.ConnId, r.ID, ref, false)
	})
}

type BindStreamingDeviceParams struct {
	RoomId   string
	DeviceId string
}

func (s *service) BindStreamingDevice(ctx context.Context, params *BindStreamingDeviceParams) error {
	return s.withRoom(ctx, params.RoomId, func(ctx context.Context, r *domain.Room) {
		r.StreamingDeviceID = params.DeviceId
		slog.InfoContext(ctx, "streaming device ready", "room_id", r.ID, "device_id", params.DeviceId)
	})
}

// resolveAsync fetches provider metadata off the event loop and applies the outcome in a
// second event. The room may be gone by then, in which case the result is dropped.
func (s *service) resolveAsync(ctx context.Context, connId, roomId string, ref domain.MediaReference, requireDevice bool) {
	ctx = context.WithoutCancel(ctx)

	s.resolving.Add(1)
	go func() {
		defer s.resolving.Done()

		tracks, resolveErr := s.resolver.ResolveStreamingMetadata(ctx, ref.Kind, ref.ExternalID)

		if err := s.withRoom(ctx, roomId, func(ctx context.Context, r *domain.Room) {
			s.applyResolution(ctx, connId, r, ref, tracks, resolveErr, requireDevice)
		}); err != nil {
			slog.DebugContext(ctx, "resolution result dropped", "room_id", roomId, "error", err)
		}
	}()
}

func (s *service) applyResolution(ctx context.Context, connId string, r *domain.Room, ref domain.MediaReference, tracks []domain.TrackInfo, resolveErr error, requireDevice bool) {
	if ref.Kind == domain.KindTrack {
		if resolveErr == nil && len(tracks) == 0 {
			resolveErr = media.ErrProviderRequest
		}
		if resolveErr == nil && requireDevice && r.StreamingDeviceID == "" {
			resolveErr = ErrNoStreamingDevice
		}
		if resolveErr != nil {
			slog.WarnContext(ctx, "failed to load track", "track_id", ref.ExternalID, "error", resolveErr)
			s.sendToConn(ctx, connId, Output{Type: TypeError, Payload: trackFailureMessage})
			return
		}

		s.broadcastToRoom(ctx, r, Output{Type: TypeSpotifyTrackLoaded, Payload: tracks[0]})
		return
	}

	if resolveErr != nil {
		slog.WarnContext(ctx, "failed to load playlist", "playlist_id", ref.ExternalID, "error", resolveErr)
		s.sendToConn(ctx, connId, Output{Type: TypeError, Payload: playlistFailureMessage})
		return
	}

	if _, ok := r.Queue.CurrentReference(); !ok {
		r.Queue.SetExternal(ref)
		r.Player.Restart(s.now())
	}

	slog.InfoContext(ctx, "playlist loaded", "playlist_id", ref.ExternalID, "tracks", len(tracks))
	s.broadcastToRoom(ctx, r, Output{Type: TypeSpotifyPlaylistLoaded, Payload: tracks})
}
