package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here; commands that talk to external services call RequireApify or
// RequireLLM.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireApify reports whether scraping credentials are configured.
func (c *Config) RequireApify() error {
	if strings.TrimSpace(c.Apify.Token) == "" {
		return fmt.Errorf("apify.token is required. Set APIFY_API_TOKEN or edit %s (create with 'creatorscope config init')", configHint())
	}
	return nil
}

// RequireLLM reports whether scoring oracle credentials are configured.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY (or LLM_API_KEY) or edit %s", configHint())
	}
	return nil
}

func configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return "~/.config/creatorscope/config.toml"
	}
	return path
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.Database) == "" {
		return errors.New("paths.database must be set")
	}
	if c.Paths.AvatarsDir == c.Paths.YTAvatarsDir {
		return errors.New("paths.avatars_dir and paths.yt_avatars_dir must differ")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.MinSubscribers < 0 {
		return errors.New("youtube.min_subscribers must be >= 0")
	}
	if c.YouTube.MaxSubscribers > 0 && c.YouTube.MaxSubscribers < c.YouTube.MinSubscribers {
		return errors.New("youtube.max_subscribers must be >= youtube.min_subscribers")
	}
	if c.YouTube.ResultsPerQuery > maxYouTubeResultsPerQuery {
		return fmt.Errorf("youtube.results_per_query must be <= %d", maxYouTubeResultsPerQuery)
	}
	if c.YouTube.MaxChannels > maxYouTubeChannelsConfigured {
		return fmt.Errorf("youtube.max_channels must be <= %d", maxYouTubeChannelsConfigured)
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Analysis.BatchSize > maxAnalysisBatchSize {
		return fmt.Errorf("analysis.batch_size must be <= %d", maxAnalysisBatchSize)
	}
	for key, value := range map[string]int{
		"avatars.concurrency":           c.Avatars.Concurrency,
		"instagram.profile_concurrency": c.Instagram.ProfileConcurrency,
		"youtube.channel_concurrency":   c.YouTube.ChannelConcurrency,
	} {
		if value > maxRunnerConcurrency {
			return fmt.Errorf("%s must be <= %d", key, maxRunnerConcurrency)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if math.IsNaN(c.LLM.Temperature) || c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		return fmt.Errorf("llm.base_url must be an http(s) URL, got %q", c.LLM.BaseURL)
	}
	return nil
}

func (c *Config) validateServer() error {
	idx := strings.LastIndex(c.Server.Bind, ":")
	if idx < 0 {
		return fmt.Errorf("server.bind must be host:port, got %q", c.Server.Bind)
	}
	port, err := strconv.Atoi(c.Server.Bind[idx+1:])
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("server.bind has invalid port in %q", c.Server.Bind)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
