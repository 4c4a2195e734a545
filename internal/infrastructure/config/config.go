package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Server storage backends.
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	APIBase  string `env:"BLOG_API_BASE"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Redis   RedisConfig
	Server  ServerConfig
	Mongo   MongoConfig
}

type SessionConfig struct {
	Profile string `env:"BLOG_PROFILE,  default=default"`
	Store   string `env:"SESSION_STORE, default=file"`
	Dir     string `env:"SESSION_DIR"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type ServerConfig struct {
	Port      string            `env:"PORT,       default=8080"`
	JWTSecret string            `env:"JWT_SECRET, default=dev-secret"`
	TokenTTL  time.Duration     `env:"TOKEN_TTL,  default=24h"`
	Storage   string            `env:"STORAGE,    default=memory"`
	UploadDir string            `env:"UPLOAD_DIR, default=./uploads"`
	SeedUsers map[string]string `env:"SEED_USERS, default=author:author"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=blogkit"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Session.Store {
	case SessionStoreFile, SessionStoreRedis, SessionStoreMemory:
	default:
		return nil, fmt.Errorf("config: unknown SESSION_STORE %q", cfg.Session.Store)
	}
	switch cfg.Server.Storage {
	case StorageMemory, StorageMongo:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE %q", cfg.Server.Storage)
	}
	return &cfg, nil
}

// SessionDir is the directory holding the profile's token file,
// defaulting to <user config dir>/blogkit/<profile>.
func (c *Config) SessionDir() (string, error) {
	base := c.Session.Dir
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve session dir: %w", err)
		}
		base = filepath.Join(dir, "blogkit")
	}
	return filepath.Join(base, c.Session.Profile), nil
}

// IsDevelopment reports whether ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
