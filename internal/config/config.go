package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "BLOG"

type Config struct {
	Addr     string `mapstructure:"addr"`
	DiagAddr string `mapstructure:"diag_addr"`

	Database DatabaseConfig  `mapstructure:"database"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Upload   UploadConfig    `mapstructure:"upload"`
	Limit    RateLimitConfig `mapstructure:"ratelimit"`
	HTTP     HTTPConfig      `mapstructure:"http"`
	Log      LogConfig       `mapstructure:"log"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type CacheConfig struct {
	Driver string        `mapstructure:"driver"` // "memory" or "redis"
	TTL    time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StorageConfig struct {
	// Root is the public storage directory; images live in Root/images.
	Root string `mapstructure:"root"`
}

type UploadConfig struct {
	MaxBytes  int64 `mapstructure:"max_bytes"`
	MaxPixels int64 `mapstructure:"max_pixels"` // width*height ceiling, checked before decoding
	Quality   int   `mapstructure:"quality"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type HTTPConfig struct {
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	UploadTimeout time.Duration `mapstructure:"upload_timeout"`

	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// SetDefaults registers every key so that env overrides work even when no
// config file mentions it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":3333")
	v.SetDefault("diag_addr", ":9999")
	v.SetDefault("database.dsn", "blog.db")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", 60*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.root", "storage/app/public")
	v.SetDefault("upload.max_bytes", 2<<20)
	v.SetDefault("upload.max_pixels", 40_000_000)
	v.SetDefault("upload.quality", 80)
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.upload_timeout", 30*time.Second)
	v.SetDefault("http.trust_proxy", false)
	v.SetDefault("log.development", false)
}

// New returns a viper instance wired to defaults and BLOG_* env vars.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", file, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver: unknown driver %q (valid: memory, redis)", c.Cache.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Upload.MaxPixels <= 0 {
		return fmt.Errorf("upload.max_pixels must be positive, got %d", c.Upload.MaxPixels)
	}
	if c.Upload.Quality < 1 || c.Upload.Quality > 100 {
		return fmt.Errorf("upload.quality must be within 1..100, got %d", c.Upload.Quality)
	}
	if c.Storage.Root == "" {
		return errors.New("storage.root is required")
	}

	return nil
}
