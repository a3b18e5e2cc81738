package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeApify()
	c.normalizeInstagram()
	c.normalizeYouTube()
	c.normalizeLLM()
	c.normalizeAnalysis()
	c.normalizeAvatars()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.Database, err = c.expandUnderData(c.Paths.Database, defaultDatabaseName); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if c.Paths.AvatarsDir, err = c.expandUnderData(c.Paths.AvatarsDir, defaultAvatarsDirName); err != nil {
		return fmt.Errorf("paths.avatars_dir: %w", err)
	}
	if c.Paths.YTAvatarsDir, err = c.expandUnderData(c.Paths.YTAvatarsDir, defaultYTAvatarsDirName); err != nil {
		return fmt.Errorf("paths.yt_avatars_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ProfilesCSV) == "" {
		c.Paths.ProfilesCSV = defaultProfilesCSV
	}
	if c.Paths.ProfilesCSV, err = expandPath(strings.TrimSpace(c.Paths.ProfilesCSV)); err != nil {
		return fmt.Errorf("paths.profiles_csv: %w", err)
	}
	if strings.TrimSpace(c.Paths.StaticDir) != "" {
		if c.Paths.StaticDir, err = expandPath(strings.TrimSpace(c.Paths.StaticDir)); err != nil {
			return fmt.Errorf("paths.static_dir: %w", err)
		}
	}
	return nil
}

// expandUnderData resolves value, or fallback relative to the data directory
// when value is empty.
func (c *Config) expandUnderData(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Join(c.Paths.DataDir, fallback), nil
	}
	return expandPath(value)
}

func (c *Config) normalizeApify() {
	c.Apify.Token = strings.TrimSpace(c.Apify.Token)
	if c.Apify.Token == "" {
		if value, ok := os.LookupEnv("APIFY_API_TOKEN"); ok {
			c.Apify.Token = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("APIFY_TOKEN"); ok {
			c.Apify.Token = strings.TrimSpace(value)
		}
	}
	c.Apify.BaseURL = strings.TrimRight(strings.TrimSpace(c.Apify.BaseURL), "/")
	if c.Apify.BaseURL == "" {
		c.Apify.BaseURL = defaultApifyBaseURL
	}
	if c.Apify.PollIntervalSeconds <= 0 {
		c.Apify.PollIntervalSeconds = defaultApifyPollInterval
	}
	if c.Apify.RunTimeoutSeconds <= 0 {
		c.Apify.RunTimeoutSeconds = defaultApifyRunTimeout
	}
	if c.Apify.MaxRetries < 0 {
		c.Apify.MaxRetries = 0
	}
}

func (c *Config) normalizeInstagram() {
	c.Instagram.HashtagActor = strings.TrimSpace(c.Instagram.HashtagActor)
	if c.Instagram.HashtagActor == "" {
		c.Instagram.HashtagActor = defaultHashtagActor
	}
	c.Instagram.ProfileActor = strings.TrimSpace(c.Instagram.ProfileActor)
	if c.Instagram.ProfileActor == "" {
		c.Instagram.ProfileActor = defaultProfileActor
	}
	tags := make([]string, 0, len(c.Instagram.Hashtags))
	seen := make(map[string]struct{}, len(c.Instagram.Hashtags))
	for _, tag := range c.Instagram.Hashtags {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		tags = append(tags, normalized)
	}
	if len(tags) == 0 {
		tags = []string{defaultInstagramHashtag}
	}
	c.Instagram.Hashtags = tags
	if c.Instagram.ResultsLimit <= 0 {
		c.Instagram.ResultsLimit = defaultHashtagResultsLimit
	}
	if c.Instagram.ProfileBatchSize <= 0 {
		c.Instagram.ProfileBatchSize = defaultProfileBatchSize
	}
	if c.Instagram.ProfileConcurrency <= 0 {
		c.Instagram.ProfileConcurrency = defaultProfileConcurrency
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.ChannelActor = strings.TrimSpace(c.YouTube.ChannelActor)
	if c.YouTube.ChannelActor == "" {
		c.YouTube.ChannelActor = defaultChannelActor
	}
	queries := make([]string, 0, len(c.YouTube.SearchQueries))
	for _, query := range c.YouTube.SearchQueries {
		if trimmed := strings.TrimSpace(query); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) == 0 {
		queries = append(queries, defaultSearchQueries...)
	}
	c.YouTube.SearchQueries = queries
	if c.YouTube.ResultsPerQuery <= 0 {
		c.YouTube.ResultsPerQuery = defaultResultsPerQuery
	}
	if c.YouTube.MaxChannels <= 0 {
		c.YouTube.MaxChannels = defaultMaxChannels
	}
	if c.YouTube.ChannelBatchSize <= 0 {
		c.YouTube.ChannelBatchSize = defaultChannelBatchSize
	}
	if c.YouTube.ChannelConcurrency <= 0 {
		c.YouTube.ChannelConcurrency = defaultChannelConcurrency
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"LLM_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.BatchSize <= 0 {
		c.Analysis.BatchSize = defaultAnalysisBatchSize
	}
	if c.Analysis.BioMaxLength <= 0 {
		c.Analysis.BioMaxLength = defaultBioMaxLength
	}
}

func (c *Config) normalizeAvatars() {
	if c.Avatars.Concurrency <= 0 {
		c.Avatars.Concurrency = defaultAvatarConcurrency
	}
	if c.Avatars.TimeoutSeconds <= 0 {
		c.Avatars.TimeoutSeconds = defaultAvatarTimeoutSeconds
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
		host := "127.0.0.1"
		if idx := strings.LastIndex(c.Server.Bind, ":"); idx >= 0 {
			host = c.Server.Bind[:idx]
		}
		c.Server.Bind = host + ":" + strings.TrimSpace(port)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
