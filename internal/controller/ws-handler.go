package controller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
)

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connId := uuid.NewString()
	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))

	cl := newClient(connId, conn, c.sendBuffer)
	if err := c.connRepo.Add(connId, cl); err != nil {
		c.logger.ErrorContext(ctx, "failed to register connection", "error", err)
		conn.Close()
		return
	}
	defer c.disconnect(ctx, connId)

	go cl.writePump()
	cl.prepareRead()

	c.logger.InfoContext(ctx, "client connected", "connections", c.connRepo.Len())
	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			c.logger.DebugContext(ctx, "read error", "error", err)
		}
	}
}

func (c controller) disconnect(ctx context.Context, connId string) {
	ctx = context.WithoutCancel(ctx)

	if err := c.roomService.Disconnect(ctx, connId); err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect from rooms", "error", err)
	}

	sender, err := c.connRepo.Remove(connId)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to remove connection", "error", err)
		return
	}
	sender.Close()

	c.logger.InfoContext(ctx, "client disconnected", "connections", c.connRepo.Len())
}

type roomInput struct {
	RoomId string `json:"roomId" validate:"required,alphanum"`
}

func (c controller) handleCreateRoom(ctx context.Context, _ *websocket.Conn, _ any) error {
	roomId, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	c.logger.DebugContext(ctx, "room created", "room_id", roomId)
	return nil
}

func (c controller) handleJoinRoom(ctx context.Context, _ *websocket.Conn, roomId string) error {
	if err := c.validateInput(roomInput{RoomId: roomId}); err != nil {
		return err
	}

	return c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: roomId,
	})
}

func (c controller) handleLeaveRoom(ctx context.Context, _ *websocket.Conn, roomId string) error {
	if err := c.validateInput(roomInput{RoomId: roomId}); err != nil {
		return err
	}

	return c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: roomId,
	})
}

func (c controller) handlePlay(ctx context.Context, _ *websocket.Conn, roomId string) error {
	if err := c.validateInput(roomInput{RoomId: roomId}); err != nil {
		return err
	}

	return c.roomService.Play(ctx, roomId)
}

func (c controller) handlePause(ctx context.Context, _ *websocket.Conn, roomId string) error {
	if err := c.validateInput(roomInput{RoomId: roomId}); err != nil {
		return err
	}

	return c.roomService.Pause(ctx, roomId)
}

type SeekInput struct {
	RoomId string  `json:"roomId" validate:"required,alphanum"`
	Time   float64 `json:"time" validate:"gte=0"`
}

func (c controller) handleSeek(ctx context.Context, _ *websocket.Conn, input SeekInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.Seek(ctx, &room.SeekParams{
		RoomId: input.RoomId,
		Time:   input.Time,
	})
}

type TimeUpdateInput struct {
	RoomId      string  `json:"roomId" validate:"required,alphanum"`
	CurrentTime float64 `json:"currentTime" validate:"gte=0"`
}

func (c controller) handleTimeUpdate(ctx context.Context, _ *websocket.Conn, input TimeUpdateInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.UpdateTime(ctx, &room.UpdateTimeParams{
		RoomId:      input.RoomId,
		CurrentTime: input.CurrentTime,
	})
}

type AddSongInput struct {
	RoomId string `json:"roomId" validate:"required,alphanum"`
	URL    string `json:"url" validate:"required,max=2048"`
}

func (c controller) handleAddSong(ctx context.Context, _ *websocket.Conn, input AddSongInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.AddSong(ctx, &room.AddSongParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
		URL:    input.URL,
	})
}

func (c controller) handleSkip(ctx context.Context, _ *websocket.Conn, roomId string) error {
	if err := c.validateInput(roomInput{RoomId: roomId}); err != nil {
		return err
	}

	return c.roomService.Skip(ctx, roomId)
}

func (c controller) handlePrevious(ctx context.Context, _ *websocket.Conn, roomId string) error {
	if err := c.validateInput(roomInput{RoomId: roomId}); err != nil {
		return err
	}

	return c.roomService.Previous(ctx, roomId)
}

type AddSpotifyTrackInput struct {
	RoomId   string `json:"roomId" validate:"required,alphanum"`
	TrackURL string `json:"trackUrl" validate:"max=2048"`
	TrackId  string `json:"trackId" validate:"required,alphanum"`
}

func (c controller) handleAddSpotifyTrack(ctx context.Context, _ *websocket.Conn, input AddSpotifyTrackInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.AddStreamingTrack(ctx, &room.AddStreamingTrackParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		TrackURL: input.TrackURL,
		TrackId:  input.TrackId,
	})
}

type AddSpotifyPlaylistInput struct {
	RoomId      string `json:"roomId" validate:"required,alphanum"`
	PlaylistURL string `json:"playlistUrl" validate:"max=2048"`
	PlaylistId  string `json:"playlistId" validate:"required,alphanum"`
}

func (c controller) handleAddSpotifyPlaylist(ctx context.Context, _ *websocket.Conn, input AddSpotifyPlaylistInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.AddStreamingPlaylist(ctx, &room.AddStreamingPlaylistParams{
		ConnId:      c.getConnIdFromCtx(ctx),
		RoomId:      input.RoomId,
		PlaylistURL: input.PlaylistURL,
		PlaylistId:  input.PlaylistId,
	})
}

type SpotifyDeviceReadyInput struct {
	RoomId   string `json:"roomId" validate:"required,alphanum"`
	DeviceId string `json:"deviceId" validate:"required,max=256"`
}

func (c controller) handleSpotifyDeviceReady(ctx context.Context, _ *websocket.Conn, input SpotifyDeviceReadyInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.roomService.BindStreamingDevice(ctx, &room.BindStreamingDeviceParams{
		RoomId:   input.RoomId,
		DeviceId: input.DeviceId,
	})
}
