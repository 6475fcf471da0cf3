package config

import (
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis    `yaml:"redis"`
	Channels Channels `yaml:"channels"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Channels - prefixes of the pub/sub channel names, the room id is appended to them.
type Channels struct {
	LobbyPrefix string `yaml:"lobby-prefix" env:"LOBBY_CHANNEL_PREFIX" env-default:"tictactoelobby--"`
	GamePrefix  string `yaml:"game-prefix" env:"GAME_CHANNEL_PREFIX" env-default:"tictactoegame--"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads config.yml and lets environment variables override it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// SlogLevel - LogLevel as understood by slog ("debug", "warn", "error+2", ...); anything else means info.
func (that *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(that.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
