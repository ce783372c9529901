package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/arthurguedes375/agar.io/internal/game"
)

// ErrInvalid is returned by Validate for settings the simulation cannot run with.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogFile     string
	DatabaseURL string

	MapWidth            int
	MapHeight           int
	FruitCount          int
	FruitRadius         int
	InitialPlayerRadius int
	MaxTickRate         int

	CommandBuffer  int
	SnapshotBuffer int

	PlayerName string
}

// Load reads the configuration from the environment. Values from a .env
// file in the working directory are used for keys that are not already set.
func Load() *Config {
	// A missing .env file is fine.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		LogFile:     getEnv("LOG_FILE", "agar.log"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		MapWidth:            getEnvInt("MAP_WIDTH", game.DefaultMapWidth),
		MapHeight:           getEnvInt("MAP_HEIGHT", game.DefaultMapHeight),
		FruitCount:          getEnvInt("FRUIT_COUNT", game.DefaultFruitCount),
		FruitRadius:         getEnvInt("FRUIT_RADIUS", game.DefaultFruitRadius),
		InitialPlayerRadius: getEnvInt("INITIAL_PLAYER_RADIUS", game.DefaultInitialPlayerRadius),
		MaxTickRate:         getEnvInt("MAX_TICK_RATE", game.DefaultMaxTickRate),

		CommandBuffer:  getEnvInt("COMMAND_BUFFER", 1024),
		SnapshotBuffer: getEnvInt("SNAPSHOT_BUFFER", 4),

		PlayerName: getEnv("PLAYER_NAME", "player"),
	}
}

// Validate checks that the world settings describe a playable game.
func (c *Config) Validate() error {
	positive := []struct {
		key   string
		value int
	}{
		{"MAP_WIDTH", c.MapWidth},
		{"MAP_HEIGHT", c.MapHeight},
		{"FRUIT_RADIUS", c.FruitRadius},
		{"INITIAL_PLAYER_RADIUS", c.InitialPlayerRadius},
		{"MAX_TICK_RATE", c.MaxTickRate},
		{"COMMAND_BUFFER", c.CommandBuffer},
		{"SNAPSHOT_BUFFER", c.SnapshotBuffer},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, p.key, p.value)
		}
	}
	if c.FruitCount < 0 {
		return fmt.Errorf("%w: FRUIT_COUNT must not be negative, got %d", ErrInvalid, c.FruitCount)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
