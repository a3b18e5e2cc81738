package main

import (
	"github.com/spf13/cobra"

	"creatorscope/internal/dashboard"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var (
		bind      string
		accessLog bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			if bind == "" {
				bind = cfg.Server.Bind
			}
			opts := dashboard.Options{
				Store:        s,
				Metrics:      ctx.metrics,
				Logger:       ctx.loggerValue(),
				AvatarsDir:   cfg.Paths.AvatarsDir,
				YTAvatarsDir: cfg.Paths.YTAvatarsDir,
				StaticDir:    cfg.Paths.StaticDir,
			}
			if accessLog {
				opts.AccessLog = cmd.ErrOrStderr()
			}
			return dashboard.Serve(cmd.Context(), dashboard.New(opts), bind, ctx.loggerValue())
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override the listen address")
	cmd.Flags().BoolVar(&accessLog, "access-log", true, "Write one line per request to stderr")
	return cmd
}
