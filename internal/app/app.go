package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/syncroom/internal/controller"
	"github.com/sharetube/syncroom/internal/domain"
	connInmemory "github.com/sharetube/syncroom/internal/repository/connection/inmemory"
	metadataRedis "github.com/sharetube/syncroom/internal/repository/metadata/redis"
	roomInmemory "github.com/sharetube/syncroom/internal/repository/room/inmemory"
	"github.com/sharetube/syncroom/internal/service/credential"
	"github.com/sharetube/syncroom/internal/service/media"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/ctxlogger"
	"github.com/sharetube/syncroom/pkg/randstr"
	"github.com/sharetube/syncroom/pkg/redisclient"
	"github.com/sharetube/syncroom/pkg/spotify"
	"github.com/sharetube/syncroom/pkg/ytvideodata"
)

const roomIdLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type AppConfig struct {
	Host                string        `json:"host"`
	Port                int           `json:"port"`
	LogLevel            string        `json:"log_level"`
	RedisEnabled        bool          `json:"redis_enabled"`
	RedisPort           int           `json:"redis_port"`
	RedisHost           string        `json:"redis_host"`
	RedisPassword       string        `json:"-"`
	SpotifyClientId     string        `json:"spotify_client_id"`
	SpotifyClientSecret string        `json:"-"`
	SpotifyTokenURL     string        `json:"spotify_token_url"`
	SpotifyAPIURL       string        `json:"spotify_api_url"`
	RoomIdLength        int           `json:"room_id_length"`
	SendBuffer          int           `json:"send_buffer"`
	MetadataCacheTTL    time.Duration `json:"metadata_cache_ttl"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 {
		return fmt.Errorf("port must be greater than 0")
	}
	if cfg.RoomIdLength < 1 {
		return fmt.Errorf("room id length must be greater than 0")
	}
	if cfg.SendBuffer < 1 {
		return fmt.Errorf("send buffer must be greater than 0")
	}
	if cfg.RedisEnabled && cfg.MetadataCacheTTL <= 0 {
		return fmt.Errorf("metadata cache ttl must be greater than 0")
	}
	return nil
}

type metadataStore interface {
	SetToken(ctx context.Context, accessToken string, expiresAt time.Time) error
	GetToken(ctx context.Context) (string, time.Time, error)
	SetTrack(ctx context.Context, trackId string, track domain.TrackInfo) error
	GetTrack(ctx context.Context, trackId string) (domain.TrackInfo, error)
	SetPlaylist(ctx context.Context, playlistId string, tracks []domain.TrackInfo) error
	GetPlaylist(ctx context.Context, playlistId string) ([]domain.TrackInfo, error)
}

type coordinator interface {
	Run(ctx context.Context) error
}

type app struct {
	handler       http.Handler
	coordinator   coordinator
	refresher     *credential.Refresher
	refreshTokens bool
	redis         *redis.Client
}

func newApp(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (*app, error) {
	a := app{
		refreshTokens: cfg.SpotifyClientId != "" && cfg.SpotifyClientSecret != "",
	}

	var store metadataStore
	if cfg.RedisEnabled {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Port:     cfg.RedisPort,
			Host:     cfg.RedisHost,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		a.redis = rc
		store = metadataRedis.NewRepo(rc, cfg.MetadataCacheTTL)
	}

	httpClient := &http.Client{}
	authenticator := spotify.NewAuthenticator(cfg.SpotifyClientId, cfg.SpotifyClientSecret, cfg.SpotifyTokenURL)
	a.refresher = credential.NewRefresher(authenticator, store)
	provider := spotify.NewClient(a.refresher, cfg.SpotifyAPIURL, httpClient)
	mediaService := media.NewService(provider, store, ytvideodata.New(httpClient, "", ""))

	roomRepo := roomInmemory.NewRepo(randstr.New([]byte(roomIdLetters)), cfg.RoomIdLength)
	connRepo := connInmemory.NewRepo()
	roomService := room.NewService(roomRepo, connRepo, mediaService)
	a.coordinator = roomService

	ctrl := controller.NewController(roomService, connRepo, mediaService, a.refresher, provider, logger, &controller.Config{
		SendBuffer: cfg.SendBuffer,
	})
	a.handler = ctrl.GetMux()

	return &a, nil
}

// start launches the background loops. They stop when ctx is done.
func (a *app) start(ctx context.Context) {
	go func() {
		if err := a.coordinator.Run(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "coordinator stopped", "error", err)
		}
	}()

	if !a.refreshTokens {
		slog.WarnContext(ctx, "streaming provider credentials not configured, token refresh disabled")
		return
	}

	go a.refresher.Run(ctx)
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)
	slog.SetDefault(logger)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	appCtx, stopApp := context.WithCancel(ctx)
	defer stopApp()
	a.start(appCtx)

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: a.handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		stopApp()
		serverStopCtx()
	}()

	slog.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
