package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/syncroom/internal/app"
	"github.com/sharetube/syncroom/pkg/spotify"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 3002,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	roomIdLength = configVar[int]{
		envKey:       "SERVER_ROOM_ID_LENGTH",
		flagKey:      "room-id-length",
		defaultValue: 5,
	}
	sendBuffer = configVar[int]{
		envKey:       "SERVER_SEND_BUFFER",
		flagKey:      "send-buffer",
		defaultValue: 64,
	}
	redisEnabled = configVar[bool]{
		envKey:       "REDIS_ENABLED",
		flagKey:      "redis-enabled",
		defaultValue: false,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	metadataCacheTTL = configVar[time.Duration]{
		envKey:       "METADATA_CACHE_TTL",
		flagKey:      "metadata-cache-ttl",
		defaultValue: 10 * time.Minute,
	}
	spotifyClientId = configVar[string]{
		envKey:       "SPOTIFY_CLIENT_ID",
		flagKey:      "spotify-client-id",
		defaultValue: "",
	}
	spotifyClientSecret = configVar[string]{
		envKey:       "SPOTIFY_CLIENT_SECRET",
		flagKey:      "spotify-client-secret",
		defaultValue: "",
	}
	spotifyTokenURL = configVar[string]{
		envKey:       "SPOTIFY_TOKEN_URL",
		flagKey:      "spotify-token-url",
		defaultValue: spotify.DefaultTokenURL,
	}
	spotifyAPIURL = configVar[string]{
		envKey:       "SPOTIFY_API_URL",
		flagKey:      "spotify-api-url",
		defaultValue: spotify.DefaultAPIURL,
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(roomIdLength.flagKey, roomIdLength.defaultValue, "Length of generated room codes")
	pflag.Int(sendBuffer.flagKey, sendBuffer.defaultValue, "Outbound messages buffered per connection")
	pflag.Bool(redisEnabled.flagKey, redisEnabled.defaultValue, "Cache provider metadata and credentials in redis")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Duration(metadataCacheTTL.flagKey, metadataCacheTTL.defaultValue, "Provider metadata cache ttl")
	pflag.String(spotifyClientId.flagKey, spotifyClientId.defaultValue, "Spotify client id")
	pflag.String(spotifyClientSecret.flagKey, spotifyClientSecret.defaultValue, "Spotify client secret")
	pflag.String(spotifyTokenURL.flagKey, spotifyTokenURL.defaultValue, "Spotify token endpoint")
	pflag.String(spotifyAPIURL.flagKey, spotifyAPIURL.defaultValue, "Spotify Web API base url")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(port)
	bind(host)
	bind(logLevel)
	bind(roomIdLength)
	bind(sendBuffer)
	bind(redisEnabled)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)
	bind(metadataCacheTTL)
	bind(spotifyClientId)
	bind(spotifyClientSecret)
	bind(spotifyTokenURL)
	bind(spotifyAPIURL)

	config := &app.AppConfig{
		Host:                viper.GetString(host.flagKey),
		Port:                viper.GetInt(port.flagKey),
		LogLevel:            viper.GetString(logLevel.flagKey),
		RoomIdLength:        viper.GetInt(roomIdLength.flagKey),
		SendBuffer:          viper.GetInt(sendBuffer.flagKey),
		RedisEnabled:        viper.GetBool(redisEnabled.flagKey),
		RedisPort:           viper.GetInt(redisPort.flagKey),
		RedisHost:           viper.GetString(redisHost.flagKey),
		RedisPassword:       viper.GetString(redisPassword.flagKey),
		MetadataCacheTTL:    viper.GetDuration(metadataCacheTTL.flagKey),
		SpotifyClientId:     viper.GetString(spotifyClientId.flagKey),
		SpotifyClientSecret: viper.GetString(spotifyClientSecret.flagKey),
		SpotifyTokenURL:     viper.GetString(spotifyTokenURL.flagKey),
		SpotifyAPIURL:       viper.GetString(spotifyAPIURL.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
