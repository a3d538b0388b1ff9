package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Room     RoomConfig     `yaml:"room"`
	Database DatabaseConfig `yaml:"database"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address" env:"HTTP_ADDRESS" env-default:""`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RoomConfig struct {
	MaxPlayers         int `yaml:"max_players"`
	TimeoutHours       int `yaml:"timeout_hours"`
	SweepIntervalHours int `yaml:"sweep_interval_hours"`
}

// Timeout is the retention window after which an inactive room is reaped.
func (c RoomConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutHours) * time.Hour
}

// SweepInterval is how often the janitor runs.
func (c RoomConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalHours) * time.Hour
}

type DatabaseConfig struct {
	// DSN selects the Postgres-backed store; empty keeps rooms in memory.
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Room.MaxPlayers == 0 {
		c.Room.MaxPlayers = 8
	}
	if c.Room.TimeoutHours == 0 {
		c.Room.TimeoutHours = 24
	}
	if c.Room.SweepIntervalHours == 0 {
		c.Room.SweepIntervalHours = 24
	}
}
