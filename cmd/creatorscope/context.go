package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"creatorscope/internal/avatars"
	"creatorscope/internal/config"
	"creatorscope/internal/logging"
	"creatorscope/internal/runlock"
	"creatorscope/internal/services"
	"creatorscope/internal/services/apify"
	"creatorscope/internal/services/llm"
	"creatorscope/internal/store"
	"creatorscope/internal/telemetry"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	metrics *telemetry.Metrics
	store   *store.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		metrics:    telemetry.New(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger, _ = logging.NewFromConfig(nil)
		}
		c.logger = logger
	})
	return c.logger
}

// openStore opens the database once per process.
func (c *commandContext) openStore() (*store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.store = s
	return s, nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// withLock runs fn while holding the data directory lock.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return fmt.Errorf("%w; wait for the other command to finish", err)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			c.loggerValue().Warn("lock release failed", logging.Error(err))
		}
	}()
	return fn()
}

func (c *commandContext) apifyClient() (*apify.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireApify(); err != nil {
		return nil, err
	}
	retry := services.DefaultRetryConfig()
	retry.MaxRetries = cfg.Apify.MaxRetries
	return apify.NewClient(apify.Config{
		Token:        cfg.Apify.Token,
		BaseURL:      cfg.Apify.BaseURL,
		PollInterval: time.Duration(cfg.Apify.PollIntervalSeconds) * time.Second,
		RunTimeout:   time.Duration(cfg.Apify.RunTimeoutSeconds) * time.Second,
		Retry:        retry,
	}, apify.WithLogger(c.loggerValue()), apify.WithMetrics(c.metrics)), nil
}

func (c *commandContext) llmClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		Temperature:    cfg.LLM.Temperature,
	}), nil
}

func (c *commandContext) avatarDownloader(platform store.Platform) *avatars.Downloader {
	cfg := c.configValue()
	dir := cfg.Paths.AvatarsDir
	if platform == store.PlatformYouTube {
		dir = cfg.Paths.YTAvatarsDir
	}
	return avatars.New(dir, avatars.Options{
		Concurrency: cfg.Avatars.Concurrency,
		Timeout:     time.Duration(cfg.Avatars.TimeoutSeconds) * time.Second,
		Logger:      c.loggerValue(),
		Metrics:     c.metrics,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parsePlatformFlag(value string) (store.Platform, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return store.ParsePlatform(value)
}
