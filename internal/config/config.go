package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Env        string `yaml:"env"`
	BaseURL    string `yaml:"base_url"`
	Storage    string `yaml:"storage"`
	Codec      `yaml:"codec"`
	HTTPServer `yaml:"http_server"`
	CORS       `yaml:"cors"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	LocalCache `yaml:"local_cache"`
	Tracing    `yaml:"tracing"`
	Log        `yaml:"log"`
}

// Codec selects how identifiers are turned into short codes.
type Codec struct {
	Kind      string `yaml:"kind"`
	Alphabet  string `yaml:"alphabet"`
	MinLength int    `yaml:"min_length"`
}

type HTTPServer struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
	CertFile        string        `yaml:"cert_file"`
	KeyFile         string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:            8080,
	ReadTimeout:     5 * time.Second,
	WriteTimeout:    10 * time.Second,
	IdleTimeout:     time.Minute,
	ShutdownTimeout: 10 * time.Second,
	MaxHeaderBytes:  1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

var defaultCORS = CORS{
	AllowedOrigins: []string{"*"},
	MaxAge:         300,
}

type Postgres struct {
	User                 string        `yaml:"user"`
	Password             string        `yaml:"password"`
	Host                 string        `yaml:"host"`
	Port                 int           `yaml:"port"`
	DB                   string        `yaml:"db"`
	SSLMode              string        `yaml:"sslmode"`
	MigrationsPath       string        `yaml:"migrations_path"`
	ConnectAttempts      int           `yaml:"connect_attempts"`
	ConnectRetryInterval time.Duration `yaml:"connect_retry_interval"`
	ConnMaxIdleTime      time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime      time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns         int           `yaml:"max_idle_conns"`
	MaxOpenConns         int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:                 "localhost",
	Port:                 5432,
	SSLMode:              "disable",
	MigrationsPath:       "file://migrations",
	ConnectAttempts:      5,
	ConnectRetryInterval: 2 * time.Second,
	ConnMaxIdleTime:      5 * time.Minute,
	ConnMaxLifetime:      30 * time.Minute,
	MaxIdleConns:         5,
	MaxOpenConns:         25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Redis struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

var defaultRedis = Redis{
	Addr: "localhost:6379",
	TTL:  time.Hour,
}

type LocalCache struct {
	Enabled  bool          `yaml:"enabled"`
	MaxItems int64         `yaml:"max_items"`
	TTL      time.Duration `yaml:"ttl"`
}

var defaultLocalCache = LocalCache{
	Enabled:  true,
	MaxItems: 100_000,
	TTL:      5 * time.Minute,
}

type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

var defaultTracing = Tracing{
	Endpoint:    "localhost:4317",
	ServiceName: "base62-shortener",
}

type Log struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	Concise bool   `yaml:"concise"`
}

var defaultLog = Log{
	Level:   "info",
	Concise: true,
}

// Load reads the YAML config at path on top of the defaults. References of
// the form ${VAR} are expanded from the environment, which is first
// populated from a .env file in the working directory when one exists.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read config file: %w", op, err)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: failed to load .env file: %w", op, err)
	}

	var cfg Config
	setDefaults(&cfg)

	expanded := os.ExpandEnv(string(data))
	if err := yaml.NewDecoder(bytes.NewBufferString(expanded)).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.Storage = StoragePostgres
	cfg.Codec = Codec{Kind: "base62", MinLength: 0}
	cfg.HTTPServer = defaultHTTPServer
	cfg.CORS = defaultCORS
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
	cfg.LocalCache = defaultLocalCache
	cfg.Tracing = defaultTracing
	cfg.Log = defaultLog
}
