package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	Database     string `toml:"database"`
	AvatarsDir   string `toml:"avatars_dir"`
	YTAvatarsDir string `toml:"yt_avatars_dir"`
	ProfilesCSV  string `toml:"profiles_csv"`
	StaticDir    string `toml:"static_dir"`
}

// Apify contains connection settings for the scraping provider.
type Apify struct {
	Token               string `toml:"token"`
	BaseURL             string `toml:"base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	RunTimeoutSeconds   int    `toml:"run_timeout_seconds"`
	MaxRetries          int    `toml:"max_retries"`
}

// Instagram contains hashtag and profile scraping settings.
type Instagram struct {
	HashtagActor       string   `toml:"hashtag_actor"`
	ProfileActor       string   `toml:"profile_actor"`
	Hashtags           []string `toml:"hashtags"`
	ResultsLimit       int      `toml:"results_limit"`
	ProfileBatchSize   int      `toml:"profile_batch_size"`
	ProfileConcurrency int      `toml:"profile_concurrency"`
}

// YouTube contains channel search and scraping settings.
type YouTube struct {
	ChannelActor       string   `toml:"channel_actor"`
	SearchQueries      []string `toml:"search_queries"`
	ResultsPerQuery    int      `toml:"results_per_query"`
	MinSubscribers     int64    `toml:"min_subscribers"`
	MaxSubscribers     int64    `toml:"max_subscribers"`
	MaxChannels        int      `toml:"max_channels"`
	ChannelBatchSize   int      `toml:"channel_batch_size"`
	ChannelConcurrency int      `toml:"channel_concurrency"`
}

// LLM contains scoring oracle connection settings.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
}

// Analysis contains batch scoring settings.
type Analysis struct {
	BatchSize    int `toml:"batch_size"`
	BioMaxLength int `toml:"bio_max_length"`
}

// Avatars contains avatar download settings.
type Avatars struct {
	Concurrency    int `toml:"concurrency"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Server contains dashboard settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// Config encapsulates all configuration values for creatorscope.
//
// Configuration sections by subsystem:
//   - Paths: data directory, database file, avatar caches, profiles CSV
//   - Apify: scraping provider credentials and run polling
//   - Instagram: hashtag discovery and profile scraping
//   - YouTube: search queries, subscriber range, channel batching
//   - LLM: scoring oracle connection settings
//   - Analysis: batch size and prompt shaping
//   - Avatars: download concurrency
//   - Server: dashboard bind address
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Apify     Apify     `toml:"apify"`
	Instagram Instagram `toml:"instagram"`
	YouTube   YouTube   `toml:"youtube"`
	LLM       LLM       `toml:"llm"`
	Analysis  Analysis  `toml:"analysis"`
	Avatars   Avatars   `toml:"avatars"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/creatorscope/config.toml")
}

// Load locates, parses, and validates a configuration file. Variables from a
// .env file in the working directory are applied first. The returned config has
// all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv applies a .env file without overriding variables already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("creatorscope.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory, the database parent and both
// avatar caches.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		filepath.Dir(c.Paths.Database),
		c.Paths.AvatarsDir,
		c.Paths.YTAvatarsDir,
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SnapshotPath returns the location of a raw scrape snapshot in the data directory.
func (c *Config) SnapshotPath(name string) string {
	return filepath.Join(c.Paths.DataDir, name)
}

// LockPath returns the run lock file used by write commands.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "creatorscope.lock")
}

// LogPath returns the log file written when logging.file is enabled.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.DataDir, "creatorscope.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
