package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"creatorscope/internal/profiles"
	"creatorscope/internal/scoring"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		fresh      bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score stored creators against the ideal profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			ideal, err := profiles.Load(cfg.Paths.ProfilesCSV)
			if err != nil {
				return err
			}
			client, err := ctx.llmClient()
			if err != nil {
				return err
			}
			return ctx.withLock(func() error {
				s, err := ctx.openStore()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if fresh {
					removed, err := s.ClearAnalysisResults(cmd.Context())
					if err != nil {
						return err
					}
					if !jsonOutput {
						fmt.Fprintf(out, "Cleared %d previous results\n", removed)
					}
				}
				oracle := scoring.NewLLMOracle(client, ideal)
				pipeline, err := scoring.NewPipeline(scoring.Options{
					Source:       s,
					Sink:         s,
					Oracle:       oracle,
					ProfileNames: oracle.Names(),
					BatchSize:    cfg.Analysis.BatchSize,
					BioMaxLength: cfg.Analysis.BioMaxLength,
					Logger:       ctx.loggerValue(),
					Metrics:      ctx.metrics,
				})
				if err != nil {
					return err
				}
				var progress func(scoring.Progress)
				if !jsonOutput {
					progress = func(p scoring.Progress) {
						fmt.Fprintf(out, "Batch %d/%d (%d/%d analyzed)\n", p.Batch, p.TotalBatches, p.Analyzed, p.Total)
					}
				}
				summary, runErr := pipeline.Run(cmd.Context(), progress)
				if jsonOutput {
					if err := writeJSON(cmd, summary); err != nil {
						return err
					}
					return runErr
				}
				fmt.Fprintf(out, "Analyzed %d of %d creators in %s", summary.Analyzed, summary.Total, summary.Duration.Round(time.Millisecond))
				if summary.SkippedBatches > 0 {
					fmt.Fprintf(out, " (%d of %d batches skipped)", summary.SkippedBatches, summary.TotalBatches)
				}
				fmt.Fprintln(out)
				return runErr
			})
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Delete previous results before scoring")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}
