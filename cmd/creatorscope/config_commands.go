package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"creatorscope/internal/config"
	"creatorscope/internal/profiles"
	"creatorscope/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set APIFY_API_TOKEN and OPENAI_API_KEY (or edit the file) before scraping or analyzing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data directory: %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Database: %s\n", cfg.Paths.Database)

			if ideal, err := profiles.Load(cfg.Paths.ProfilesCSV); err != nil {
				fmt.Fprintf(out, "Ideal profiles: unavailable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Ideal profiles: %d (%s)\n", len(ideal), strings.Join(profiles.Names(ideal), ", "))
			}
			fmt.Fprintf(out, "Apify token: %s\n", yesNo(cfg.RequireApify() == nil))
			fmt.Fprintf(out, "LLM key: %s\n", yesNo(cfg.RequireLLM() == nil))

			if check {
				client, err := ctx.llmClient()
				if err != nil {
					return err
				}
				checkCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				if err := client.HealthCheck(checkCtx); err != nil {
					if hint := services.Hint(err); hint != "" {
						return fmt.Errorf("llm health check: %w (%s)", err, hint)
					}
					return fmt.Errorf("llm health check: %w", err)
				}
				fmt.Fprintf(out, "LLM endpoint: ok (%s)\n", client.Model())
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also send a test request to the LLM endpoint")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
