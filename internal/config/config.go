// internal/config/config.go
//
// Server and game configuration.
//
// Server settings come from the environment (main loads .env first):
//   APP_ENV         "production" enables Secure cookies (default development)
//   PORT            listen port                    (default 5175)
//   LOG_LEVEL       zerolog level                  (default info)
//   LOG_FORMAT      "json" or "console"            (default json)
//   CLIENT_ORIGIN   CORS origin                    (default http://localhost:5173)
//   SESSION_SECRET  HMAC key for session tokens    (default dev_secret_change_me)
//   COOKIE_NAME     session cookie name            (default numguess_session)
//   GAME_CONFIG     optional YAML file with game settings
//
// Game settings start from the embedded assets/game.yaml; keys present in
// GAME_CONFIG replace the defaults one by one.

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/numguess/assets"
)

// Game holds the tunables of the guessing game.
type Game struct {
	Levels            []int         `yaml:"levels" json:"levels"`
	DefaultLevel      int           `yaml:"defaultLevel" json:"defaultLevel"`
	CountdownTicks    int           `yaml:"countdownTicks" json:"countdownTicks"`
	CountdownInterval time.Duration `yaml:"countdownInterval" json:"-"`
	ElapsedInterval   time.Duration `yaml:"elapsedInterval" json:"-"`
	LeaderboardSize   int           `yaml:"leaderboardSize" json:"leaderboardSize"`
}

// Config is the full server configuration.
type Config struct {
	Env           string
	Port          string
	LogLevel      string
	LogFormat     string
	ClientOrigin  string
	SessionSecret string
	CookieName    string
	Game          Game
}

// Load reads the environment and the game settings.
func Load() (Config, error) {
	g, err := LoadGame(os.Getenv("GAME_CONFIG"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		SessionSecret: getEnv("SESSION_SECRET", "dev_secret_change_me"),
		CookieName:    getEnv("COOKIE_NAME", "numguess_session"),
		Game:          g,
	}, nil
}

// LoadGame returns the embedded defaults overlaid with the YAML file at path.
// An empty path means defaults only.
func LoadGame(path string) (Game, error) {
	var g Game
	def, err := assets.DefaultConfig()
	if err != nil {
		return Game{}, fmt.Errorf("read default game config: %w", err)
	}
	if err := yaml.Unmarshal(def, &g); err != nil {
		return Game{}, fmt.Errorf("parse default game config: %w", err)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Game{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &g); err != nil {
			return Game{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := g.Validate(); err != nil {
		return Game{}, err
	}
	return g, nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid game config")

// Validate checks the settings are playable.
func (g Game) Validate() error {
	if len(g.Levels) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidConfig)
	}
	for _, l := range g.Levels {
		if l < 1 {
			return fmt.Errorf("%w: level %d < 1", ErrInvalidConfig, l)
		}
	}
	if !slices.Contains(g.Levels, g.DefaultLevel) {
		return fmt.Errorf("%w: defaultLevel %d not in levels", ErrInvalidConfig, g.DefaultLevel)
	}
	if g.CountdownTicks < 1 {
		return fmt.Errorf("%w: countdownTicks must be >= 1", ErrInvalidConfig)
	}
	if g.CountdownInterval <= 0 || g.ElapsedInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	if g.LeaderboardSize < 1 {
		return fmt.Errorf("%w: leaderboardSize must be >= 1", ErrInvalidConfig)
	}
	return nil
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool { return c.Env == "production" }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
