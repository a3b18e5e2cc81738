package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"creatorscope/internal/avatars"
	"creatorscope/internal/ingest"
	"creatorscope/internal/scrape"
	"creatorscope/internal/store"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Discover creators through Apify actors",
	}
	scrapeCmd.AddCommand(newScrapeInstagramCommand(ctx))
	scrapeCmd.AddCommand(newScrapeYouTubeCommand(ctx))
	return scrapeCmd
}

func (c *commandContext) scrapeDeps(platform store.Platform) (scrape.Deps, error) {
	client, err := c.apifyClient()
	if err != nil {
		return scrape.Deps{}, err
	}
	s, err := c.openStore()
	if err != nil {
		return scrape.Deps{}, err
	}
	cfg := c.configValue()
	return scrape.Deps{
		Actors:       client,
		Importer:     ingest.NewReconciler(s, c.loggerValue(), c.metrics),
		Avatars:      c.avatarDownloader(platform),
		SnapshotPath: cfg.SnapshotPath,
		Logger:       c.loggerValue(),
		Metrics:      c.metrics,
	}, nil
}

func newScrapeInstagramCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "instagram",
		Short: "Scrape hashtag posts and their creators' profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				deps, err := ctx.scrapeDeps(store.PlatformInstagram)
				if err != nil {
					return err
				}
				report, err := scrape.NewInstagram(ctx.configValue().Instagram, deps).Run(cmd.Context())
				printScrapeReport(cmd.OutOrStdout(), "Instagram", "creators", report)
				return err
			})
		},
	}
}

func newScrapeYouTubeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "youtube",
		Short: "Search YouTube and scrape matching channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				deps, err := ctx.scrapeDeps(store.PlatformYouTube)
				if err != nil {
					return err
				}
				report, err := scrape.NewYouTube(ctx.configValue().YouTube, deps).Run(cmd.Context())
				printScrapeReport(cmd.OutOrStdout(), "YouTube", "channels", report)
				return err
			})
		},
	}
}

func printScrapeReport(out io.Writer, label, noun string, report scrape.Report) {
	fmt.Fprintf(out, "%s scrape: %d raw items, %d %s discovered, %d scraped\n",
		label, report.RawItems, report.Discovered, noun, report.Scraped)
	if report.OutOfRange > 0 {
		fmt.Fprintf(out, "Skipped %d %s outside the subscriber range\n", report.OutOfRange, noun)
	}
	if report.Dropped > 0 {
		fmt.Fprintf(out, "Dropped %d undecodable items\n", report.Dropped)
	}
	if report.FailedBatches > 0 || report.SkippedBatches > 0 {
		fmt.Fprintf(out, "Batches: %d failed, %d skipped\n", report.FailedBatches, report.SkippedBatches)
	}
	printImportSummary(out, report.Import)
	printAvatarSummary(out, report.Avatars)
}

func printImportSummary(out io.Writer, summary ingest.Summary) {
	fmt.Fprintf(out, "Imported %d creators and %d items", summary.Creators, summary.Items)
	if summary.FailedCreators > 0 || summary.FailedItems > 0 {
		fmt.Fprintf(out, " (%d creators and %d items skipped)", summary.FailedCreators, summary.FailedItems)
	}
	fmt.Fprintln(out)
}

func printAvatarSummary(out io.Writer, summary avatars.Summary) {
	total := summary.Downloaded + summary.Cached + summary.NoURL + summary.Failed + summary.Skipped
	if total == 0 {
		return
	}
	fmt.Fprintf(out, "Avatars: %d downloaded, %d cached, %d without url, %d failed\n",
		summary.Downloaded, summary.Cached, summary.NoURL, summary.Failed)
}
