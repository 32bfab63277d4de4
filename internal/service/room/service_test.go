package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/room/inmemory"
	"github.com/sharetube/syncroom/internal/service/media"
	"github.com/sharetube/syncroom/pkg/randstr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type recorder struct {
	mu      sync.Mutex
	outputs map[string][]Output
}

func newRecorder() *recorder {
	return &recorder{outputs: make(map[string][]Output)}
}

func (r *recorder) Send(connId string, msg any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputs[connId] = append(r.outputs[connId], msg.(Output))
	return nil
}

func (r *recorder) Outputs(connId string) []Output {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Output(nil), r.outputs[connId]...)
}

func (r *recorder) Last(connId, outputType string) (Output, bool) {
	outputs := r.Outputs(connId)
	for i := len(outputs) - 1; i >= 0; i-- {
		if outputs[i].Type == outputType {
			return outputs[i], true
		}
	}
	return Output{}, false
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputs = make(map[string][]Output)
}

type fakeResolver struct {
	tracks map[string][]domain.TrackInfo
}

func (f fakeResolver) ResolveStreamingMetadata(_ context.Context, kind domain.Kind, id string) ([]domain.TrackInfo, error) {
	tracks, ok := f.tracks[id]
	if !ok {
		return nil, media.ErrProviderRequest
	}
	if len(tracks) == 0 {
		return nil, media.ErrEmptyPlaylist
	}
	return tracks, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *service
	out   *recorder
	clock *clock
}

func newFixture(t *testing.T, resolver iResolver) fixture {
	t.Helper()

	if resolver == nil {
		resolver = fakeResolver{}
	}

	out := newRecorder()
	c := &clock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	roomRepo := inmemory.NewRepo(randstr.New([]byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")), 5)

	svc := NewService(roomRepo, out, resolver)
	svc.now = c.Now

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return fixture{svc: svc, out: out, clock: c}
}

func (f fixture) createRoom(t *testing.T, connId string) string {
	t.Helper()

	roomId, err := f.svc.CreateRoom(context.Background(), &CreateRoomParams{ConnId: connId})
	require.NoError(t, err)
	return roomId
}

func (f fixture) snapshot(t *testing.T, roomId string) RoomJoined {
	t.Helper()

	snap, found, err := f.svc.RoomSnapshot(context.Background(), roomId)
	require.NoError(t, err)
	require.True(t, found, "room %s must exist", roomId)
	return snap
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t, nil)

	roomId := f.createRoom(t, "host")
	assert.Len(t, roomId, 5)

	outputs := f.out.Outputs("host")
	require.Len(t, outputs, 2)
	assert.Equal(t, Output{Type: TypeRoomCreated, Payload: roomId}, outputs[0])
	assert.Equal(t, Output{Type: TypeUserCountUpdate, Payload: 1}, outputs[1])
}

func TestJoinEmptyRoom(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	require.NoError(t, f.svc.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", RoomId: roomId}))

	joined, ok := f.out.Last("guest", TypeRoomJoined)
	require.True(t, ok)
	snap := joined.Payload.(RoomJoined)
	assert.Equal(t, roomId, snap.RoomId)
	assert.Nil(t, snap.CurrentSong)
	assert.Nil(t, snap.VideoId)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 0.0, snap.CurrentTime)
	assert.Equal(t, domain.RoomEmpty, snap.State)

	_, ok = f.out.Last("host", TypeRoomJoined)
	assert.False(t, ok, "snapshot goes to the joiner only")
}

func TestJoinBroadcastsCountToEveryone(t *testing.T) {
	f := newFixture(t, nil)
	roomId := f.createRoom(t, "a")

	require.NoError(t, f.svc.JoinRoom(context.Background(), &JoinRoomParams{ConnId: "b", RoomId: roomId}))

	for _, connId := range []string{"a", "b"} {
		count, ok := f.out.Last(connId, TypeUserCountUpdate)
		require.True(t, ok, connId)
		assert.Equal(t, 2, count.Payload, connId)

		joined, ok := f.out.Last(connId, TypeUserJoined)
		require.True(t, ok, connId)
		assert.Equal(t, "b", joined.Payload)
	}
}

func TestJoinSnapshotEstimatesPosition(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "https://youtu.be/dQw4w9WgXcQ"}))
	require.NoError(t, f.svc.UpdateTime(ctx, &UpdateTimeParams{RoomId: roomId, CurrentTime: 10}))
	f.clock.Advance(3 * time.Second)

	require.NoError(t, f.svc.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", RoomId: roomId}))

	joined, ok := f.out.Last("guest", TypeRoomJoined)
	require.True(t, ok)
	snap := joined.Payload.(RoomJoined)
	require.NotNil(t, snap.CurrentSong)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", *snap.CurrentSong)
	require.NotNil(t, snap.VideoId)
	assert.Equal(t, "dQw4w9WgXcQ", *snap.VideoId)
	assert.True(t, snap.IsPlaying)
	assert.InDelta(t, 13.0, snap.CurrentTime, 1e-9)
	assert.Equal(t, domain.RoomPlaying, snap.State)
}

func TestQueueScenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "song-a"}))
	newSong, ok := f.out.Last("host", TypeNewSong)
	require.True(t, ok)
	assert.Equal(t, "song-a", newSong.Payload)

	snap := f.snapshot(t, roomId)
	assert.Equal(t, "song-a", *snap.CurrentSong)
	assert.True(t, snap.IsPlaying)

	f.out.Reset()
	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "song-b"}))
	_, ok = f.out.Last("host", TypeNewSong)
	assert.False(t, ok, "second song must not replace the current one")
	assert.Equal(t, "song-a", *f.snapshot(t, roomId).CurrentSong)

	require.NoError(t, f.svc.Seek(ctx, &SeekParams{RoomId: roomId, Time: 30}))
	require.NoError(t, f.svc.Skip(ctx, roomId))
	skip, ok := f.out.Last("host", TypeSkip)
	require.True(t, ok)
	assert.Equal(t, Position{CurrentSong: "song-b", CurrentTime: 0, IsPlaying: true}, skip.Payload)
	snap = f.snapshot(t, roomId)
	assert.Equal(t, "song-b", *snap.CurrentSong)
	assert.Equal(t, 0.0, snap.CurrentTime)

	require.NoError(t, f.svc.Skip(ctx, roomId))
	assert.Equal(t, "song-a", *f.snapshot(t, roomId).CurrentSong)

	require.NoError(t, f.svc.Previous(ctx, roomId))
	prev, ok := f.out.Last("host", TypePrevious)
	require.True(t, ok)
	assert.Equal(t, Position{CurrentSong: "song-b", CurrentTime: 0, IsPlaying: true}, prev.Payload)
}

func TestSkipOnEmptyRoomIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	roomId := f.createRoom(t, "host")
	f.out.Reset()

	require.NoError(t, f.svc.Skip(context.Background(), roomId))
	require.NoError(t, f.svc.Previous(context.Background(), roomId))
	assert.Empty(t, f.out.Outputs("host"))
}

func TestPlayPauseSeek(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "host")
	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "song-a"}))

	require.NoError(t, f.svc.Pause(ctx, roomId))
	_, ok := f.out.Last("host", TypePause)
	assert.True(t, ok)

	require.NoError(t, f.svc.Seek(ctx, &SeekParams{RoomId: roomId, Time: 42.5}))
	seek, ok := f.out.Last("host", TypeSeek)
	require.True(t, ok)
	assert.Equal(t, 42.5, seek.Payload)

	f.clock.Advance(time.Minute)
	snap := f.snapshot(t, roomId)
	assert.Equal(t, 42.5, snap.CurrentTime)
	assert.Equal(t, domain.RoomPaused, snap.State)

	require.NoError(t, f.svc.Play(ctx, roomId))
	_, ok = f.out.Last("host", TypePlay)
	assert.True(t, ok)
	f.clock.Advance(2 * time.Second)
	assert.InDelta(t, 44.5, f.snapshot(t, roomId).CurrentTime, 1e-9)
}

func TestTimeUpdateIsSilent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "host")
	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "song-a"}))
	require.NoError(t, f.svc.Pause(ctx, roomId))
	f.out.Reset()

	require.NoError(t, f.svc.UpdateTime(ctx, &UpdateTimeParams{RoomId: roomId, CurrentTime: 12}))
	assert.Empty(t, f.out.Outputs("host"))
	assert.Equal(t, 12.0, f.snapshot(t, roomId).CurrentTime)
}

func TestEventsForAbsentRoomAreDropped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.NoError(t, f.svc.Play(ctx, "NOPE1"))
	assert.NoError(t, f.svc.JoinRoom(ctx, &JoinRoomParams{ConnId: "x", RoomId: "NOPE1"}))
	assert.NoError(t, f.svc.LeaveRoom(ctx, &LeaveRoomParams{ConnId: "x", RoomId: "NOPE1"}))
	assert.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "x", RoomId: "NOPE1", URL: "u"}))
	assert.Empty(t, f.out.Outputs("x"))

	_, found, err := f.svc.RoomSnapshot(ctx, "NOPE1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLeaveAndDisconnect(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "a")
	require.NoError(t, f.svc.JoinRoom(ctx, &JoinRoomParams{ConnId: "b", RoomId: roomId}))
	f.out.Reset()

	require.NoError(t, f.svc.LeaveRoom(ctx, &LeaveRoomParams{ConnId: "b", RoomId: roomId}))
	assert.Empty(t, f.out.Outputs("b"))
	left, ok := f.out.Last("a", TypeUserLeft)
	require.True(t, ok)
	assert.Equal(t, "b", left.Payload)
	count, ok := f.out.Last("a", TypeUserCountUpdate)
	require.True(t, ok)
	assert.Equal(t, 1, count.Payload)

	require.NoError(t, f.svc.Disconnect(ctx, "a"))
	_, found, err := f.svc.RoomSnapshot(ctx, roomId)
	require.NoError(t, err)
	assert.False(t, found, "room must be deleted once empty")
}

func TestAddStreamingTrack(t *testing.T) {
	track := domain.TrackInfo{Name: "song", Artist: "band", URI: "spotify:track:t1", DurationMs: 1000}
	f := newFixture(t, fakeResolver{tracks: map[string][]domain.TrackInfo{"t1": {track}}})
	ctx := context.Background()
	roomId := f.createRoom(t, "host")
	require.NoError(t, f.svc.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", RoomId: roomId}))

	require.NoError(t, f.svc.AddStreamingTrack(ctx, &AddStreamingTrackParams{
		ConnId: "guest", RoomId: roomId, TrackURL: "https://open.spotify.com/track/t1", TrackId: "t1",
	}))
	assert.Eventually(t, func() bool {
		out, ok := f.out.Last("guest", TypeError)
		return ok && out.Payload == trackFailureMessage
	}, time.Second, 5*time.Millisecond, "no device bound yet")
	_, ok := f.out.Last("host", TypeError)
	assert.False(t, ok, "errors go to the requester only")

	require.NoError(t, f.svc.BindStreamingDevice(ctx, &BindStreamingDeviceParams{RoomId: roomId, DeviceId: "dev"}))
	require.NoError(t, f.svc.AddStreamingTrack(ctx, &AddStreamingTrackParams{
		ConnId: "guest", RoomId: roomId, TrackURL: "https://open.spotify.com/track/t1", TrackId: "t1",
	}))
	for _, connId := range []string{"host", "guest"} {
		assert.Eventually(t, func() bool {
			out, ok := f.out.Last(connId, TypeSpotifyTrackLoaded)
			return ok && out.Payload == track
		}, time.Second, 5*time.Millisecond, connId)
	}
}

func TestAddSongResolvesStreamingTrackWithoutDevice(t *testing.T) {
	track := domain.TrackInfo{Name: "song", Artist: "band", URI: "spotify:track:t1", DurationMs: 1000}
	f := newFixture(t, fakeResolver{tracks: map[string][]domain.TrackInfo{"t1": {track}}})
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "https://open.spotify.com/track/t1"}))
	f.svc.resolving.Wait()

	newSong, ok := f.out.Last("host", TypeNewSong)
	require.True(t, ok)
	assert.Equal(t, "https://open.spotify.com/track/t1", newSong.Payload)

	loaded, ok := f.out.Last("host", TypeSpotifyTrackLoaded)
	require.True(t, ok)
	assert.Equal(t, track, loaded.Payload)

	_, ok = f.out.Last("host", TypeError)
	assert.False(t, ok)
	assert.Equal(t, domain.RoomLoading, f.snapshot(t, roomId).State)
}

func TestAddStreamingPlaylist(t *testing.T) {
	tracks := []domain.TrackInfo{{Name: "a"}, {Name: "b"}}
	f := newFixture(t, fakeResolver{tracks: map[string][]domain.TrackInfo{
		"pl":    tracks,
		"empty": {},
	}})
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	require.NoError(t, f.svc.AddStreamingPlaylist(ctx, &AddStreamingPlaylistParams{
		ConnId: "host", RoomId: roomId, PlaylistURL: "https://open.spotify.com/playlist/empty", PlaylistId: "empty",
	}))
	assert.Eventually(t, func() bool {
		out, ok := f.out.Last("host", TypeError)
		return ok && out.Payload == playlistFailureMessage
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.RoomEmpty, f.snapshot(t, roomId).State)

	require.NoError(t, f.svc.AddStreamingPlaylist(ctx, &AddStreamingPlaylistParams{
		ConnId: "host", RoomId: roomId, PlaylistURL: "https://open.spotify.com/playlist/pl", PlaylistId: "pl",
	}))
	assert.Eventually(t, func() bool {
		_, ok := f.out.Last("host", TypeSpotifyPlaylistLoaded)
		return ok
	}, time.Second, 5*time.Millisecond)

	snap := f.snapshot(t, roomId)
	require.NotNil(t, snap.CurrentSong)
	assert.Equal(t, "https://open.spotify.com/playlist/pl", *snap.CurrentSong)
	assert.Equal(t, domain.RoomLoading, snap.State)

	require.NoError(t, f.svc.Skip(ctx, roomId))
	skip, ok := f.out.Last("host", TypeSkip)
	require.True(t, ok)
	assert.Equal(t, "https://open.spotify.com/playlist/pl", skip.Payload.(Position).CurrentSong)
}

func TestAsyncResultForDeletedRoomIsDropped(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, blockingResolver{release: release})
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	require.NoError(t, f.svc.AddSong(ctx, &AddSongParams{ConnId: "host", RoomId: roomId, URL: "https://open.spotify.com/track/t1"}))
	require.NoError(t, f.svc.LeaveRoom(ctx, &LeaveRoomParams{ConnId: "host", RoomId: roomId}))
	f.out.Reset()
	close(release)

	f.svc.resolving.Wait()
	assert.Empty(t, f.out.Outputs("host"))
}

type blockingResolver struct {
	release chan struct{}
}

func (b blockingResolver) ResolveStreamingMetadata(context.Context, domain.Kind, string) ([]domain.TrackInfo, error) {
	<-b.release
	return nil, errors.New("late")
}

func TestConcurrentEventsAreSerialized(t *testing.T) {
	const members = 64

	f := newFixture(t, nil)
	ctx := context.Background()
	roomId := f.createRoom(t, "host")

	var g errgroup.Group
	for i := 0; i < members; i++ {
		connId := fmt.Sprintf("conn-%d", i)
		url := fmt.Sprintf("song-%d", i)
		g.Go(func() error {
			if err := f.svc.JoinRoom(ctx, &JoinRoomParams{ConnId: connId, RoomId: roomId}); err != nil {
				return err
			}
			if err := f.svc.AddSong(ctx, &AddSongParams{ConnId: connId, RoomId: roomId, URL: url}); err != nil {
				return err
			}
			return f.svc.Skip(ctx, roomId)
		})
	}
	require.NoError(t, g.Wait())

	var hostCounts []any
	newSongs := 0
	for _, out := range f.out.Outputs("host") {
		switch out.Type {
		case TypeUserCountUpdate:
			hostCounts = append(hostCounts, out.Payload)
		case TypeNewSong:
			newSongs++
		}
	}
	require.Len(t, hostCounts, members+1)
	for i, count := range hostCounts {
		assert.Equal(t, i+1, count)
	}
	assert.Equal(t, 1, newSongs, "only the first append becomes current")

	for i := 0; i < members; i++ {
		connId := fmt.Sprintf("conn-%d", i)
		outputs := f.out.Outputs(connId)
		require.NotEmpty(t, outputs, connId)
		assert.Equal(t, TypeRoomJoined, outputs[0].Type, connId)

		last := 0
		for _, out := range outputs {
			if out.Type != TypeUserCountUpdate {
				continue
			}
			count := out.Payload.(int)
			assert.Greater(t, count, last, connId)
			last = count
		}
		assert.Equal(t, members+1, last, connId)
	}

	var queueLen int
	require.NoError(t, f.svc.withRoom(ctx, roomId, func(_ context.Context, r *domain.Room) {
		queueLen = r.Queue.Len()
	}))
	assert.Equal(t, members, queueLen)

	snap := f.snapshot(t, roomId)
	require.NotNil(t, snap.CurrentSong)
	assert.True(t, snap.IsPlaying)
}

func TestExecAfterStop(t *testing.T) {
	out := newRecorder()
	svc := NewService(inmemory.NewRepo(randstr.New([]byte("AB")), 5), out, fakeResolver{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	err := svc.Play(context.Background(), "AAAAA")
	assert.ErrorIs(t, err, ErrStopped)
}
