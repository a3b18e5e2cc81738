package testsupport

import (
	"path/filepath"
	"testing"

	"creatorscope/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	dataDir := filepath.Join(base, "data")
	cfgVal.Paths.DataDir = dataDir
	cfgVal.Paths.Database = filepath.Join(dataDir, "creators.db")
	cfgVal.Paths.AvatarsDir = filepath.Join(dataDir, "avatars")
	cfgVal.Paths.YTAvatarsDir = filepath.Join(dataDir, "yt_avatars")
	cfgVal.Paths.ProfilesCSV = filepath.Join(dataDir, "ideal_creator_profiles.csv")
	cfgVal.Apify.Token = "test-token"
	cfgVal.LLM.APIKey = "test-key"
	cfgVal.Server.Bind = "127.0.0.1:3999"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithApify points the Apify client at a test server.
func WithApify(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Apify.BaseURL = baseURL
		b.cfg.Apify.PollIntervalSeconds = 1
	}
}

// WithLLM points the scoring oracle at a test server.
func WithLLM(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = baseURL
	}
}

// WithProfiles writes an ideal profiles sheet and points the config at it.
func WithProfiles(csv string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Paths.ProfilesCSV, csv)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
