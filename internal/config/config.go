package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Backpressure   string        `mapstructure:"backpressure"`

	Log     LogConfig     `mapstructure:"log"`
	Room    RoomConfig    `mapstructure:"room"`
	Storage StorageConfig `mapstructure:"storage"`
	Limits  LimitsConfig  `mapstructure:"limits"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RoomConfig struct {
	MinCode     int           `mapstructure:"min_code"`
	MaxCode     int           `mapstructure:"max_code"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
	LazyCreate  bool          `mapstructure:"lazy_create"`
}

type StorageConfig struct {
	Driver          string        `mapstructure:"driver"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	PublicURL       string        `mapstructure:"public_url"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
	DeleteTimeout   time.Duration `mapstructure:"delete_timeout"`
	ListLimit       int           `mapstructure:"list_limit"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
}

type LimitsConfig struct {
	JoinRate     float64 `mapstructure:"join_rate"`
	JoinBurst    int     `mapstructure:"join_burst"`
	ConnectRate  float64 `mapstructure:"connect_rate"`
	ConnectBurst int     `mapstructure:"connect_burst"`
}

const (
	StorageNone   = "none"
	StorageMemory = "memory"
	StorageS3     = "s3"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("secret", "change-me")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("backpressure", "kick")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("room.min_code", 100000)
	v.SetDefault("room.max_code", 999999)
	v.SetDefault("room.max_attempts", 10)
	v.SetDefault("room.grace_period", "0s")
	v.SetDefault("room.lazy_create", false)

	v.SetDefault("storage.driver", StorageNone)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.public_url", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.presign_ttl", "1h")
	v.SetDefault("storage.delete_timeout", "30s")
	v.SetDefault("storage.list_limit", 100)
	v.SetDefault("storage.max_upload_size", 50<<20)

	v.SetDefault("limits.join_rate", 2.0)
	v.SetDefault("limits.join_burst", 10)
	v.SetDefault("limits.connect_rate", 5.0)
	v.SetDefault("limits.connect_burst", 20)
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
// DROP_* environment variables (from the process or a .env file) override
// both, e.g. DROP_ROOM_GRACE_PERIOD=5s.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("DROP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Dur("grace", cfg.Room.GracePeriod).
		Str("storage", cfg.Storage.Driver).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Room.MinCode <= 0 || c.Room.MinCode > c.Room.MaxCode {
		errs = append(errs, fmt.Errorf("room code range [%d, %d] is empty", c.Room.MinCode, c.Room.MaxCode))
	}
	if c.Room.MaxAttempts <= 0 {
		errs = append(errs, errors.New("room.max_attempts must be positive"))
	}
	if c.Room.GracePeriod < 0 {
		errs = append(errs, errors.New("room.grace_period must not be negative"))
	}
	switch c.Storage.Driver {
	case StorageNone, StorageMemory:
	case StorageS3:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.endpoint and storage.bucket are required for s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
