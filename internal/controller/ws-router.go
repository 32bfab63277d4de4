package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw())
	mux.OnError(c.handleWSError)

	// room
	wsrouter.Handle(mux, "createRoom", c.handleCreateRoom)
	wsrouter.Handle(mux, "joinRoom", c.handleJoinRoom)
	wsrouter.Handle(mux, "leaveRoom", c.handleLeaveRoom)

	// player
	wsrouter.Handle(mux, "play", c.handlePlay)
	wsrouter.Handle(mux, "pause", c.handlePause)
	wsrouter.Handle(mux, "seek", c.handleSeek)
	wsrouter.Handle(mux, "timeUpdate", c.handleTimeUpdate)

	// queue
	wsrouter.Handle(mux, "addSong", c.handleAddSong)
	wsrouter.Handle(mux, "skip", c.handleSkip)
	wsrouter.Handle(mux, "previous", c.handlePrevious)

	// streaming
	wsrouter.Handle(mux, "addSpotifyTrack", c.handleAddSpotifyTrack)
	wsrouter.Handle(mux, "addSpotifyPlaylist", c.handleAddSpotifyPlaylist)
	wsrouter.Handle(mux, "spotifyDeviceReady", c.handleSpotifyDeviceReady)

	return mux
}

// Malformed frames are logged and dropped; the connection stays open.
func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	switch {
	case errors.Is(err, wsrouter.ErrUnknownMessageType),
		errors.Is(err, wsrouter.ErrInvalidMessage),
		errors.Is(err, wsrouter.ErrInvalidPayload),
		errors.Is(err, ErrInvalidInput):
		c.logger.InfoContext(ctx, "dropped websocket message", "error", err)
	default:
		c.logger.WarnContext(ctx, "failed to handle websocket message", "error", err)
	}
}
