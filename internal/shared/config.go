package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// PlaylistTarget selects how the destination playlist is chosen.
type PlaylistTarget string

const (
	TargetInteractive PlaylistTarget = "interactive"
	TargetFixed       PlaylistTarget = "fixed"
)

// PublishMode selects whether a blend replaces or extends the destination playlist.
type PublishMode string

const (
	PublishReplace PublishMode = "replace"
	PublishAppend  PublishMode = "append"
)

// ParsePublishMode validates a publish mode name.
func ParsePublishMode(s string) (PublishMode, error) {
	switch PublishMode(s) {
	case PublishReplace, PublishAppend:
		return PublishMode(s), nil
	default:
		return "", fmt.Errorf("%w: publish mode %q (must be replace or append)", ErrInvalidArgument, s)
	}
}

// StorageDriver names the backend holding the four cache documents.
type StorageDriver string

const (
	DriverJSON   StorageDriver = "json"
	DriverSQLite StorageDriver = "sqlite"
	DriverBolt   StorageDriver = "bolt"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Generator   GeneratorConfig   `toml:"generator"`
	Playlist    PlaylistConfig    `toml:"playlist"`
	Storage     StorageConfig     `toml:"storage"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Spotify     SpotifyAPIConfig  `toml:"spotify"`
	Logging     LoggingConfig     `toml:"logging"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	OpenAI  OpenAIConfig  `toml:"openai"`
}

// SpotifyConfig contains Spotify API credentials and the persisted OAuth2 token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	TokenType    string    `toml:"token_type,omitempty"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// OpenAIConfig contains the OpenAI API key.
type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
}

// GeneratorConfig selects and tunes the song generator.
type GeneratorConfig struct {
	Provider       string  `toml:"provider"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	BaseURL        string  `toml:"base_url"`
	PlaylistLength int     `toml:"playlist_length"`
}

// PlaylistConfig unifies the destination and publish behaviour of a blend.
type PlaylistConfig struct {
	Target      PlaylistTarget `toml:"target"`
	ID          string         `toml:"id"`
	PublishMode PublishMode    `toml:"publish_mode"`
	Rename      bool           `toml:"rename"`
	Description string         `toml:"description"`
}

// StorageConfig names the four cache documents and where they live.
type StorageConfig struct {
	Driver    StorageDriver `toml:"driver"`
	Dir       string        `toml:"dir"`
	Themes    string        `toml:"themes"`
	Songs     string        `toml:"songs"`
	Requests  string        `toml:"requests"`
	Playlists string        `toml:"playlists"`
}

// DatabaseConfig contains database connection settings for the sqlite and bolt drivers.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SpotifyAPIConfig tunes calls made to the Spotify Web API.
type SpotifyAPIConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Token returns the persisted OAuth2 token, or nil if none has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update stores a freshly issued token.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrAuthFailed)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = token.Expiry
	return nil
}

// Map returns the client credentials in the shape expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Validate checks enum fields and numeric bounds.
func (c *Config) Validate() error {
	switch c.Playlist.Target {
	case TargetInteractive:
	case TargetFixed:
		if c.Playlist.ID == "" {
			return fmt.Errorf("%w: playlist.id is required when playlist.target is fixed", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: playlist.target %q", ErrInvalidConfig, c.Playlist.Target)
	}

	if _, err := ParsePublishMode(string(c.Playlist.PublishMode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite, DriverBolt:
	default:
		return fmt.Errorf("%w: storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Generator.PlaylistLength <= 0 {
		return fmt.Errorf("%w: generator.playlist_length must be positive", ErrInvalidConfig)
	}

	return nil
}

// ApplyEnv overlays secrets from the environment (and a .env file in the working directory, if present).
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
}

// StorePath returns the JSON document path for a store name.
func (s StorageConfig) StorePath(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Missing keys keep the embedded defaults.
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

// SaveConfig writes the configuration back to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
