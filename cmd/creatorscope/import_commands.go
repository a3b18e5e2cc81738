package main

import (
	"github.com/spf13/cobra"

	"creatorscope/internal/ingest"
	"creatorscope/internal/scrape"
	"creatorscope/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Re-ingest saved scrape snapshots",
	}
	importCmd.AddCommand(newImportInstagramCommand(ctx))
	importCmd.AddCommand(newImportYouTubeCommand(ctx))
	return importCmd
}

func newImportInstagramCommand(ctx *commandContext) *cobra.Command {
	var skipAvatars bool
	cmd := &cobra.Command{
		Use:   "instagram [creator_profiles.json]",
		Short: "Import a profile actor snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configValue().SnapshotPath(scrape.CreatorProfilesFile)
			if len(args) == 1 {
				path = args[0]
			}
			return ctx.withLock(func() error {
				profiles, err := scrape.ReadInstagramSnapshot(path, ctx.loggerValue())
				if err != nil {
					return err
				}
				s, err := ctx.openStore()
				if err != nil {
					return err
				}
				reconciler := ingest.NewReconciler(s, ctx.loggerValue(), ctx.metrics)
				summary, err := reconciler.ImportInstagram(cmd.Context(), scrape.InstagramRecords(profiles))
				printImportSummary(cmd.OutOrStdout(), summary)
				if err != nil || skipAvatars {
					return err
				}
				downloader := ctx.avatarDownloader(store.PlatformInstagram)
				printAvatarSummary(cmd.OutOrStdout(), downloader.DownloadAll(cmd.Context(), scrape.InstagramAvatarRequests(profiles)))
				return cmd.Context().Err()
			})
		},
	}
	cmd.Flags().BoolVar(&skipAvatars, "skip-avatars", false, "Do not download profile pictures")
	return cmd
}

func newImportYouTubeCommand(ctx *commandContext) *cobra.Command {
	var skipAvatars bool
	cmd := &cobra.Command{
		Use:   "youtube [yt_channel_profiles.json]",
		Short: "Import a channel snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.configValue().SnapshotPath(scrape.YouTubeProfilesFile)
			if len(args) == 1 {
				path = args[0]
			}
			return ctx.withLock(func() error {
				records, err := scrape.ReadChannelSnapshot(path)
				if err != nil {
					return err
				}
				s, err := ctx.openStore()
				if err != nil {
					return err
				}
				reconciler := ingest.NewReconciler(s, ctx.loggerValue(), ctx.metrics)
				summary, err := reconciler.ImportYouTube(cmd.Context(), records)
				printImportSummary(cmd.OutOrStdout(), summary)
				if err != nil || skipAvatars {
					return err
				}
				downloader := ctx.avatarDownloader(store.PlatformYouTube)
				printAvatarSummary(cmd.OutOrStdout(), downloader.DownloadAll(cmd.Context(), scrape.ChannelAvatarRequests(records)))
				return cmd.Context().Err()
			})
		},
	}
	cmd.Flags().BoolVar(&skipAvatars, "skip-avatars", false, "Do not download channel thumbnails")
	return cmd
}
