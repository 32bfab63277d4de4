package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/syncroom/internal/repository/connection"
	"github.com/sharetube/syncroom/internal/service/media"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/validator"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (string, error)
	JoinRoom(context.Context, *room.JoinRoomParams) error
	LeaveRoom(context.Context, *room.LeaveRoomParams) error
	Disconnect(ctx context.Context, connId string) error
	Play(ctx context.Context, roomId string) error
	Pause(ctx context.Context, roomId string) error
	Seek(context.Context, *room.SeekParams) error
	UpdateTime(context.Context, *room.UpdateTimeParams) error
	AddSong(context.Context, *room.AddSongParams) error
	Skip(ctx context.Context, roomId string) error
	Previous(ctx context.Context, roomId string) error
	AddStreamingTrack(context.Context, *room.AddStreamingTrackParams) error
	AddStreamingPlaylist(context.Context, *room.AddStreamingPlaylistParams) error
	BindStreamingDevice(context.Context, *room.BindStreamingDeviceParams) error
}

type iConnRepo interface {
	Add(connId string, sender connection.Sender) error
	Remove(connId string) (connection.Sender, error)
	Len() int
}

type iMediaService interface {
	Preview(ctx context.Context, rawURL string) (media.Preview, error)
}

type iTokenSource interface {
	Token(ctx context.Context) (string, error)
}

type iPlaylistSource interface {
	GetPlaylistRaw(ctx context.Context, id string) (json.RawMessage, error)
}

type Config struct {
	SendBuffer int
}

type controller struct {
	roomService  iRoomService
	connRepo     iConnRepo
	mediaService iMediaService
	tokens       iTokenSource
	playlists    iPlaylistSource
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	wsRouter     *wsrouter.WSRouter
	logger       *slog.Logger
	sendBuffer   int
}

func NewController(
	roomService iRoomService,
	connRepo iConnRepo,
	mediaService iMediaService,
	tokens iTokenSource,
	playlists iPlaylistSource,
	logger *slog.Logger,
	cfg *Config,
) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService:  roomService,
		connRepo:     connRepo,
		mediaService: mediaService,
		tokens:       tokens,
		playlists:    playlists,
		validate:     validator.NewValidator(),
		logger:       logger,
		sendBuffer:   cfg.SendBuffer,
	}
	c.wsRouter = c.getWSRouter()

	return c
}
