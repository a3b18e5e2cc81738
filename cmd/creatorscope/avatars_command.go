package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"creatorscope/internal/avatars"
	"creatorscope/internal/store"
)

func newAvatarsCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string
	cmd := &cobra.Command{
		Use:   "avatars",
		Short: "Download missing avatars for stored creators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := parsePlatformFlag(platformFlag)
			if err != nil {
				return err
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if platform == "" || platform == store.PlatformInstagram {
				creators, err := s.ListCreators(cmd.Context())
				if err != nil {
					return err
				}
				reqs := make([]avatars.Request, 0, len(creators))
				for _, c := range creators {
					url := c.ProfilePicURL
					if url == "" {
						url = c.ProfilePicURLHD
					}
					reqs = append(reqs, avatars.Request{Key: c.Username, URL: url})
				}
				fmt.Fprintln(out, "Instagram")
				printAvatarSummary(out, ctx.avatarDownloader(store.PlatformInstagram).DownloadAll(cmd.Context(), reqs))
			}
			if platform == "" || platform == store.PlatformYouTube {
				channels, err := s.ListChannels(cmd.Context())
				if err != nil {
					return err
				}
				reqs := make([]avatars.Request, 0, len(channels))
				for _, c := range channels {
					reqs = append(reqs, avatars.Request{Key: c.ChannelID, URL: c.ThumbnailURL})
				}
				fmt.Fprintln(out, "YouTube")
				printAvatarSummary(out, ctx.avatarDownloader(store.PlatformYouTube).DownloadAll(cmd.Context(), reqs))
			}
			return cmd.Context().Err()
		},
	}
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Limit to instagram or youtube")
	return cmd
}
