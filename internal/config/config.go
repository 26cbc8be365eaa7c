package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Debug   bool    `yaml:"debug" env:"DEBUG"`
	DataDir string  `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
	Limiter Limiter `yaml:"limiter"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Auth    Auth    `yaml:"auth"`
	Media   Media   `yaml:"media"`
	Session Session `yaml:"session"`
	BgTasks BgTasks `yaml:"bg_tasks"`
	Clients Clients `yaml:"clients"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
	Host string `yaml:"host" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"5s"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	// Path of the SQLite file; relative paths live under DataDir.
	Path        string        `yaml:"path" env:"STORAGE_PATH" env-default:"movies.db"`
	BusyTimeout time.Duration `yaml:"busy_timeout" env-default:"5s"`

	Dsn             string        `yaml:"dsn" env:"STORAGE_DSN"`
	MaxConns        int           `yaml:"max_conns" env-default:"10"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	InitTimeout     time.Duration `yaml:"init_timeout" env-default:"5s"`
}

type Auth struct {
	BcryptCost int `yaml:"bcrypt_cost" env-default:"10"`
}

type Media struct {
	PhotosDir  string        `yaml:"photos_dir" env-default:"profile_photos"`
	PruneGrace time.Duration `yaml:"prune_grace" env-default:"10m"`
}

type Session struct {
	Path string `yaml:"path" env-default:"session.json"`
}

type BgTasks struct {
	MaxWorkers int `yaml:"max_workers" env-default:"2"`
	QueueSize  int `yaml:"queue_size" env-default:"16"`
}

type Client struct {
	Addr         string        `yaml:"addr" env-required:"true"`
	Timeout      time.Duration `yaml:"timeout" env-default:"10s"`
	RetryTimeout time.Duration `yaml:"retry_timeout" env-default:"500ms"`
	RetriesCount int           `yaml:"retries_count" env-default:"2"`
}

type TMDBClient struct {
	Client       `yaml:",inline"`
	ApiKey       string `yaml:"api_key" env:"TMDB_API_KEY"`
	ImageBaseURL string `yaml:"image_base_url" env-default:"https://image.tmdb.org/t/p/w500"`
	Language     string `yaml:"language" env-default:"pt-BR"`
}

type Clients struct {
	TMDB TMDBClient `yaml:"tmdb"`
}

// DataPath resolves p against DataDir unless it is already absolute.
func (c *Config) DataPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configPath, letting variables from an optional .env file and
// the environment override it.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	switch cfg.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Storage.Dsn == "" {
			return nil, fmt.Errorf("storage.dsn is required for driver %q", cfg.Storage.Driver)
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return &cfg, nil
}
