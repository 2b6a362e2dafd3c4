package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendDynamo   Backend = "dynamo"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"xiuh"`

	Backend Backend `env:"STORE_BACKEND" envDefault:"memory"`

	DBDSN      string `env:"DB_DSN"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"xiuh.db"`

	DynamoTable    string `env:"DYNAMO_TABLE" envDefault:"xiuh-pets"`
	TimezoneTable  string `env:"TIMEZONE_TABLE" envDefault:"xiuh-timezones"`
	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-2"`
	DynamoEndpoint string `env:"DYNAMO_ENDPOINT"`

	// Secreto compartido con el gateway de Discord. Vacío = modo dev.
	GatewayToken string `env:"GATEWAY_TOKEN"`

	PetCacheTTL      time.Duration `env:"PET_CACHE_TTL" envDefault:"1h"`
	TimezoneCacheTTL time.Duration `env:"TIMEZONE_CACHE_TTL" envDefault:"168h"`
	CacheSize        int           `env:"CACHE_SIZE" envDefault:"10000"`
}

// Load carga un .env opcional y luego parsea el entorno.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse lee solo variables de entorno (sin .env).
func Parse() (Config, error) {
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite, BackendDynamo:
	case BackendPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("config: DB_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Backend)
	}
	if c.PetCacheTTL < 0 || c.TimezoneCacheTTL < 0 {
		return fmt.Errorf("config: cache ttl must not be negative")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("config: CACHE_SIZE must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
