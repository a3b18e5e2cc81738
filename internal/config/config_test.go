package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"creatorscope/internal/config"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APIFY_API_TOKEN", "APIFY_TOKEN", "LLM_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPathsUnderDataDir(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	work := t.TempDir()
	t.Chdir(work)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}

	wantData := filepath.Join(work, "data")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.Database != filepath.Join(wantData, "creators.db") {
		t.Fatalf("unexpected database path: %q", cfg.Paths.Database)
	}
	if cfg.Paths.AvatarsDir != filepath.Join(wantData, "avatars") {
		t.Fatalf("unexpected avatars dir: %q", cfg.Paths.AvatarsDir)
	}
	if cfg.Paths.YTAvatarsDir != filepath.Join(wantData, "yt_avatars") {
		t.Fatalf("unexpected yt avatars dir: %q", cfg.Paths.YTAvatarsDir)
	}
	if cfg.Analysis.BatchSize != 10 {
		t.Fatalf("expected default batch size 10, got %d", cfg.Analysis.BatchSize)
	}
	if cfg.Avatars.Concurrency != 10 {
		t.Fatalf("expected default avatar concurrency 10, got %d", cfg.Avatars.Concurrency)
	}
	if cfg.YouTube.MinSubscribers != 10000 || cfg.YouTube.MaxSubscribers != 500000 {
		t.Fatalf("unexpected subscriber range: %d-%d", cfg.YouTube.MinSubscribers, cfg.YouTube.MaxSubscribers)
	}
	if len(cfg.YouTube.SearchQueries) == 0 {
		t.Fatal("expected default search queries")
	}
	if cfg.Server.Bind != "127.0.0.1:3000" {
		t.Fatalf("unexpected server bind: %q", cfg.Server.Bind)
	}
	if err := cfg.RequireApify(); err == nil {
		t.Fatal("expected RequireApify to fail without a token")
	}
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected RequireLLM to fail without a key")
	}
}

func TestLoadReadsDotEnvAndPort(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	t.Chdir(work)

	env := "APIFY_API_TOKEN=apify-from-env\nOPENAI_API_KEY=sk-from-env\nPORT=4100\n"
	if err := os.WriteFile(filepath.Join(work, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("APIFY_API_TOKEN")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("PORT")
	})

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Apify.Token != "apify-from-env" {
		t.Fatalf("expected apify token from .env, got %q", cfg.Apify.Token)
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Fatalf("expected llm key from .env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Server.Bind != "127.0.0.1:4100" {
		t.Fatalf("expected PORT override, got %q", cfg.Server.Bind)
	}
	if err := cfg.RequireApify(); err != nil {
		t.Fatalf("RequireApify: %v", err)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	t.Chdir(work)

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(work, "store")
	cfg.Instagram.Hashtags = []string{"#Higgsfield", "higgsfield", " aiart "}
	cfg.YouTube.SearchQueries = []string{"  ", "ai filmmaking"}
	cfg.Analysis.BatchSize = 5
	cfg.Logging.Format = "JSON"
	cfg.Logging.Level = "DEBUG"

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(work, "custom.toml")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to be loaded, got %q exists=%v", path, resolved, exists)
	}
	if got := strings.Join(loaded.Instagram.Hashtags, ","); got != "higgsfield,aiart" {
		t.Fatalf("unexpected hashtags: %q", got)
	}
	if len(loaded.YouTube.SearchQueries) != 1 || loaded.YouTube.SearchQueries[0] != "ai filmmaking" {
		t.Fatalf("unexpected search queries: %v", loaded.YouTube.SearchQueries)
	}
	if loaded.Analysis.BatchSize != 5 {
		t.Fatalf("expected batch size 5, got %d", loaded.Analysis.BatchSize)
	}
	if loaded.Logging.Format != "json" || loaded.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", loaded.Logging)
	}
	if loaded.Paths.Database != filepath.Join(work, "store", "creators.db") {
		t.Fatalf("unexpected database path: %q", loaded.Paths.Database)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"inverted subscriber range", func(c *config.Config) { c.YouTube.MinSubscribers = 600000 }, "youtube.max_subscribers"},
		{"huge batch", func(c *config.Config) { c.Analysis.BatchSize = 1000 }, "analysis.batch_size"},
		{"bad temperature", func(c *config.Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"bad bind", func(c *config.Config) { c.Server.Bind = "localhost" }, "server.bind"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"shared avatar dirs", func(c *config.Config) { c.Paths.YTAvatarsDir = c.Paths.AvatarsDir }, "avatars_dir"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.Database = "/tmp/x.db"
			cfg.Paths.AvatarsDir = "/tmp/avatars"
			cfg.Paths.YTAvatarsDir = "/tmp/yt_avatars"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectoriesAndSample(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.Database = filepath.Join(base, "db", "creators.db")
	cfg.Paths.AvatarsDir = filepath.Join(base, "data", "avatars")
	cfg.Paths.YTAvatarsDir = filepath.Join(base, "data", "yt_avatars")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, filepath.Dir(cfg.Paths.Database), cfg.Paths.AvatarsDir, cfg.Paths.YTAvatarsDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}

	samplePath := filepath.Join(base, "conf", "config.toml")
	if err := config.CreateSample(samplePath); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	var decoded config.Config
	data, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if decoded.Analysis.BatchSize != 10 {
		t.Fatalf("expected sample batch size 10, got %d", decoded.Analysis.BatchSize)
	}
}
