package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"creatorscope/internal/config"
	"creatorscope/internal/store"
	"creatorscope/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *store.Store
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("APIFY_API_TOKEN", "")
	for _, key := range []string{"OPENAI_API_KEY", "LLM_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(key, "")
	}

	opts = append([]testsupport.ConfigOption{testsupport.WithProfiles(testsupport.ProfilesCSV)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.File = false
	cfg.Logging.Level = "error"

	configPath := filepath.Join(homeDir, ".config", "creatorscope", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	stdout, stderr, _, err := runCLIContext(t, args, configPath)
	return stdout, stderr, err
}

func runCLIContext(t *testing.T, args []string, configPath string) (string, string, *commandContext, error) {
	t.Helper()
	cmd, cc := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := execute(context.Background(), cmd, cc)
	return stdout.String(), stderr.String(), cc, err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, path, string(content))
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
