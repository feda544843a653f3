package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chess-vn/slgo/internal/archive"
	"github.com/chess-vn/slgo/internal/game"
	"github.com/chess-vn/slgo/pkg/logging"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

type ListenerConfig struct {
	Address   string `mapstructure:"address"`
	Transport string `mapstructure:"transport"`
	Local     bool   `mapstructure:"local"`
	RoomID    string `mapstructure:"room_id"`
}

// roomID is the listener's configured room id, or a name-based uuid of its
// transport and address so that archived records survive restarts.
func (l ListenerConfig) roomID() string {
	if id := strings.TrimSpace(l.RoomID); id != "" {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(l.Transport+"://"+l.Address)).String()
}

type Config struct {
	Listeners     []ListenerConfig
	WebSocketPath string

	BoardSize    int
	MoveTimeout  time.Duration
	ChatCapacity int

	Log     logging.Config
	Archive archive.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listeners", []map[string]any{
		{"address": "127.0.0.1:5555", "transport": TransportTCP, "local": true},
	})
	v.SetDefault("server.websocket_path", "/room")
	v.SetDefault("match.board_size", game.DefaultSize)
	v.SetDefault("match.move_timeout", "60s")
	v.SetDefault("room.chat_capacity", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("archive.redis_url", "")
	v.SetDefault("archive.record_ttl", "168h")
	v.SetDefault("archive.postgres_url", "")
	v.SetDefault("archive.lambda_function", "")
	v.SetDefault("archive.aws_region", "")
	v.SetDefault("archive.timeout", "5s")
}

// LoadConfig reads config.yaml from path, or from ./configs/server and the
// working directory when path is empty. A missing file in the search paths
// leaves the defaults in place. SLGO_* environment variables override keys,
// e.g. SLGO_MATCH_BOARD_SIZE.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs/server")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("SLGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.UnmarshalKey("server.listeners", &config.Listeners); err != nil {
		return Config{}, fmt.Errorf("server.listeners: %w", err)
	}
	config.WebSocketPath = v.GetString("server.websocket_path")
	config.BoardSize = v.GetInt("match.board_size")
	config.MoveTimeout = v.GetDuration("match.move_timeout")
	config.ChatCapacity = v.GetInt("room.chat_capacity")
	config.Log = logging.Config{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		File:   v.GetString("log.file"),
	}
	config.Archive = archive.Config{
		RedisURL:       v.GetString("archive.redis_url"),
		RecordTTL:      v.GetDuration("archive.record_ttl"),
		PostgresURL:    v.GetString("archive.postgres_url"),
		LambdaFunction: v.GetString("archive.lambda_function"),
		AwsRegion:      v.GetString("archive.aws_region"),
		Timeout:        v.GetDuration("archive.timeout"),
	}
	if config.Archive.AwsRegion == "" {
		config.Archive.AwsRegion = os.Getenv("AWS_REGION")
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if len(c.Listeners) == 0 {
		return errors.New("no listeners configured")
	}
	rooms := make(map[string]int, len(c.Listeners))
	for i, l := range c.Listeners {
		if l.Address == "" {
			return fmt.Errorf("listener %d: empty address", i)
		}
		if j, ok := rooms[l.roomID()]; ok {
			return fmt.Errorf("listener %d: room id %q already used by listener %d", i, l.roomID(), j)
		}
		rooms[l.roomID()] = i
		switch l.Transport {
		case TransportTCP, TransportWebSocket:
		default:
			return fmt.Errorf("listener %d: unknown transport %q", i, l.Transport)
		}
	}
	if err := game.ValidSize(c.BoardSize); err != nil {
		return err
	}
	if c.MoveTimeout <= 0 {
		return fmt.Errorf("match.move_timeout must be positive, got %s", c.MoveTimeout)
	}
	if c.ChatCapacity <= 0 {
		return fmt.Errorf("room.chat_capacity must be positive, got %d", c.ChatCapacity)
	}
	if c.Archive.Timeout <= 0 {
		return fmt.Errorf("archive.timeout must be positive, got %s", c.Archive.Timeout)
	}
	if !strings.HasPrefix(c.WebSocketPath, "/") {
		return fmt.Errorf("server.websocket_path must start with /, got %q", c.WebSocketPath)
	}
	return nil
}

func (c Config) roomConfig(l ListenerConfig) RoomConfig {
	return RoomConfig{
		ID:           l.roomID(),
		BoardSize:    c.BoardSize,
		MoveTimeout:  c.MoveTimeout,
		ChatCapacity: c.ChatCapacity,
		Local:        l.Local,
	}
}
