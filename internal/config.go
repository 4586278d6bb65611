package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3000"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	AdminPassword        string        `env:"ADMIN_PASSWORD"`
	AdminPasswordHash    string        `env:"ADMIN_PASSWORD_HASH"`
	StaticDir            string        `env:"STATIC_DIR"`
	CommandBufferSize    int           `env:"COMMAND_BUFFER_SIZE,default=256"`
	EventBufferSize      int           `env:"EVENT_BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=128"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	AckTimeout           time.Duration `env:"ACK_TIMEOUT,default=5s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
	JournalPath          string        `env:"JOURNAL_PATH"`
	MaxTextLength        int           `env:"MAX_TEXT_LENGTH,default=1024"`
}

// LoadConfig reads a .env file when present then decodes the environment.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("dotenv error: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if config.CommandBufferSize < 0 || config.EventBufferSize < 0 || config.ConnectionBufferSize < 1 {
		return Config{}, fmt.Errorf("config error: buffer sizes must be positive")
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
