package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	App       AppConfig
	Auth      AuthConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Postgres  PostgresConfig
	Media     MediaConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Env             string        `env:"ENV" envDefault:"local"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8000"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type AuthConfig struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"120h"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"240h"`
	CookieSecure       string        `env:"AUTH_COOKIE_SECURE"`
	CookieSameSite     string        `env:"AUTH_COOKIE_SAMESITE"`
	CookieDomain       string        `env:"AUTH_COOKIE_DOMAIN"`
	CookiePath         string        `env:"AUTH_COOKIE_PATH"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"vidtube"`
}

type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"PGHOST" envDefault:"localhost"`
	Port        string `env:"PGPORT" envDefault:"5432"`
	User        string `env:"PGUSER"`
	Password    string `env:"PGPASSWORD"`
	Database    string `env:"PGDATABASE"`
	SSLMode     string `env:"PGSSLMODE" envDefault:"disable"`
}

type MediaConfig struct {
	Endpoint      string `env:"S3_ENDPOINT" envDefault:"http://localhost:9000"`
	Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	Bucket        string `env:"S3_BUCKET" envDefault:"vidtube"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	PublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL"`
	TempDir       string `env:"UPLOAD_TMP_DIR" envDefault:"./public/temp"`
	MaxUploadMB   int64  `env:"MAX_UPLOAD_MB" envDefault:"512"`
}

type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"vidtube-backend"`
}

// Load reads an optional .env file, then parses the process environment.
// Variables already present in the environment win over the file.
func Load(dotenvPaths ...string) (Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.App.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return Config{}, fmt.Errorf("unknown ENV %q", cfg.App.Env)
	}

	switch cfg.Store.Driver {
	case StoreMongo, StorePostgres:
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}
