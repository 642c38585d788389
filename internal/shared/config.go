package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Telegram    TelegramConfig    `toml:"telegram"`
	Credentials CredentialsConfig `toml:"credentials"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// TelegramConfig contains the bot token and webhook registration settings.
type TelegramConfig struct {
	Token         string `toml:"token"`
	WebhookURL    string `toml:"webhook_url"`
	WebhookPath   string `toml:"webhook_path"`
	WebhookSecret string `toml:"webhook_secret"`
	// Markdown is "v1" (legacy Markdown) or "v2" (MarkdownV2).
	Markdown string `toml:"markdown"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Yandex  TokenConfig   `toml:"yandex"`
	MTS     TokenConfig   `toml:"mts"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Configured reports whether both halves of the client credentials pair are set.
func (s SpotifyConfig) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// TokenConfig holds a single API token for providers that authenticate with one.
type TokenConfig struct {
	Token string `toml:"token"`
}

// PipelineConfig bounds the time spent on provider calls.
type PipelineConfig struct {
	ExtractTimeout Duration `toml:"extract_timeout"`
	SearchTimeout  Duration `toml:"search_timeout"`
}

// ServerConfig contains HTTP server settings for webhook mode.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr joins host and port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps [time.Duration] so it can be written as "8s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// envOverrides lists the process environment variables that take precedence over config.toml.
type envOverrides struct {
	TelegramToken       string `envconfig:"TELEGRAM_TOKEN"`
	WebhookURL          string `envconfig:"WEBHOOK_URL"`
	WebhookSecret       string `envconfig:"WEBHOOK_SECRET"`
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET"`
	YandexMusicToken    string `envconfig:"YANDEX_MUSIC_TOKEN"`
	MTSMusicToken       string `envconfig:"MTS_MUSIC_TOKEN"`
	LogLevel            string `envconfig:"LOG_LEVEL"`
	Port                int    `envconfig:"PORT"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig builds the process configuration once at start-up.
//
// The TOML file is optional: a missing file falls back to [DefaultConfig]. A .env file in the working directory
// is loaded if present, then environment variables are applied on top.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			config = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overlays non-empty environment variables onto the configuration.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Telegram.Token, env.TelegramToken)
	set(&c.Telegram.WebhookURL, env.WebhookURL)
	set(&c.Telegram.WebhookSecret, env.WebhookSecret)
	set(&c.Credentials.Spotify.ClientID, env.SpotifyClientID)
	set(&c.Credentials.Spotify.ClientSecret, env.SpotifyClientSecret)
	set(&c.Credentials.Yandex.Token, env.YandexMusicToken)
	set(&c.Credentials.MTS.Token, env.MTSMusicToken)
	set(&c.Log.Level, env.LogLevel)
	if env.Port > 0 {
		c.Server.Port = env.Port
	}
	return nil
}

// Validate checks the settings needed to run the bot transport.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("%w: telegram token is required (TELEGRAM_TOKEN)", ErrMissingCredentials)
	}
	switch c.Telegram.Markdown {
	case "", "v1", "v2":
	default:
		return fmt.Errorf("%w: telegram.markdown must be v1 or v2, got %q", ErrInvalidConfig, c.Telegram.Markdown)
	}
	if c.Pipeline.SearchTimeout.Duration <= 0 || c.Pipeline.ExtractTimeout.Duration <= 0 {
		return fmt.Errorf("%w: pipeline timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
