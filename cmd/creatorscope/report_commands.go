package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"creatorscope/internal/store"
)

func newCreatorsCommand(ctx *commandContext) *cobra.Command {
	var (
		platformFlag string
		jsonOutput   bool
	)
	cmd := &cobra.Command{
		Use:   "creators",
		Short: "List stored creators with derived metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := parsePlatformFlag(platformFlag)
			if err != nil {
				return err
			}
			if platform == "" {
				platform = store.PlatformInstagram
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			if platform == store.PlatformYouTube {
				channels, err := s.ListChannels(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, channels)
				}
				rows := make([][]string, 0, len(channels))
				for _, c := range channels {
					rows = append(rows, []string{
						c.ChannelID,
						c.DisplayName(),
						formatCount(c.Subscribers),
						formatCount(int64(c.AvgViews)),
						formatPercent(c.EngagementRate),
						string(c.Tier),
						strings.Join(c.Niches, ","),
					})
				}
				return writeTable(cmd.OutOrStdout(),
					[]string{"Channel", "Name", "Subscribers", "Avg Views", "Engagement", "Tier", "Niches"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft})
			}

			creators, err := s.ListCreators(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, creators)
			}
			rows := make([][]string, 0, len(creators))
			for _, c := range creators {
				rows = append(rows, []string{
					c.Username,
					c.DisplayName(),
					formatCount(c.Followers),
					formatPercent(c.EngagementRate),
					string(c.Tier),
					strings.Join(c.Niches, ","),
				})
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Username", "Name", "Followers", "Engagement", "Tier", "Niches"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft})
		},
	}
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "instagram (default) or youtube")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var (
		platformFlag string
		jsonOutput   bool
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List analysis results, best score first",
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
			results, err := s.ListAnalysisResults(cmd.Context(), platform)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{
					string(r.Platform),
					r.CreatorID,
					r.CreatorName,
					r.BestFitProfile,
					strconv.Itoa(r.BestFitScore),
					r.Reasoning,
				})
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Platform", "Creator", "Name", "Best Fit", "Score", "Reasoning"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
		},
	}
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Limit to instagram or youtube")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}

type statsReport struct {
	Instagram          store.InstagramStats `json:"instagram"`
	InstagramCampaigns store.CampaignStats  `json:"instagram_campaigns"`
	YouTube            store.YouTubeStats   `json:"youtube"`
	YouTubeCampaigns   store.CampaignStats  `json:"youtube_campaigns"`
	Analysis           store.AnalysisStats  `json:"analysis"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate creator, campaign and analysis counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			c := cmd.Context()
			var report statsReport
			if report.Instagram, err = s.InstagramStats(c); err != nil {
				return err
			}
			if report.InstagramCampaigns, err = s.CampaignStats(c, store.PlatformInstagram); err != nil {
				return err
			}
			if report.YouTube, err = s.YouTubeStats(c); err != nil {
				return err
			}
			if report.YouTubeCampaigns, err = s.CampaignStats(c, store.PlatformYouTube); err != nil {
				return err
			}
			if report.Analysis, err = s.AnalysisStats(c); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Instagram: %d creators, %s followers (avg %s, max %s), %d verified, %d posts\n",
				report.Instagram.TotalCreators, formatCount(report.Instagram.TotalFollowers),
				formatCount(report.Instagram.AvgFollowers), formatCount(report.Instagram.MaxFollowers),
				report.Instagram.VerifiedCount, report.Instagram.TotalPosts)
			fmt.Fprintf(out, "YouTube: %d channels, %s subscribers (avg %s, max %s), %d verified, %d videos\n",
				report.YouTube.TotalChannels, formatCount(report.YouTube.TotalSubscribers),
				formatCount(report.YouTube.AvgSubscribers), formatCount(report.YouTube.MaxSubscribers),
				report.YouTube.VerifiedCount, report.YouTube.TotalVideos)
			fmt.Fprintf(out, "Campaigns: instagram %s; youtube %s\n",
				campaignLine(report.InstagramCampaigns), campaignLine(report.YouTubeCampaigns))
			fmt.Fprintf(out, "Analysis: %d results, avg score %.1f\n", report.Analysis.Total, report.Analysis.AvgScore)
			if len(report.Analysis.ByProfile) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(report.Analysis.ByProfile))
			for _, ps := range report.Analysis.ByProfile {
				rows = append(rows, []string{ps.Profile, strconv.FormatInt(ps.Count, 10), strconv.FormatFloat(ps.AvgScore, 'f', 1, 64)})
			}
			return writeTable(out, []string{"Best Fit", "Count", "Avg Score"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
	return cmd
}

func newCampaignsCommand(ctx *commandContext) *cobra.Command {
	var (
		platformFlag string
		jsonOutput   bool
	)
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List campaign status rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := parsePlatformFlag(platformFlag)
			if err != nil {
				return err
			}
			if platform == "" {
				platform = store.PlatformInstagram
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			campaigns, err := s.ListCampaigns(cmd.Context(), platform)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, campaigns)
			}
			rows := make([][]string, 0, len(campaigns))
			for _, c := range campaigns {
				rows = append(rows, []string{
					c.CreatorID,
					c.DisplayName,
					formatCount(c.Audience),
					string(c.Status),
					c.Notes,
					c.UpdatedAt.Format("2006-01-02 15:04"),
				})
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Creator", "Name", "Audience", "Status", "Notes", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft})
		},
	}
	cmd.AddCommand(newCampaignSetCommand(ctx))
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "instagram (default) or youtube")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}

func newCampaignSetCommand(ctx *commandContext) *cobra.Command {
	var (
		platformFlag string
		notes        string
	)
	cmd := &cobra.Command{
		Use:   "set <creator> <status>",
		Short: "Record campaign status for one creator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := parsePlatformFlag(platformFlag)
			if err != nil {
				return err
			}
			if platform == "" {
				platform = store.PlatformInstagram
			}
			status, err := store.ParseCampaignStatus(args[1])
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, store.CampaignStatusNames())
			}
			s, err := ctx.openStore()
			if err != nil {
				return err
			}
			campaign, err := s.SetCampaignStatus(cmd.Context(), platform, args[0], status, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", campaign.Platform, campaign.CreatorID, campaign.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "instagram (default) or youtube")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes stored with the status")
	return cmd
}

func campaignLine(s store.CampaignStats) string {
	return fmt.Sprintf("%d total (%d not contacted, %d contacted, %d confirmed, %d posted)",
		s.Total, s.NotContacted, s.Contacted, s.Confirmed, s.ContentPosted)
}

// formatCount renders large counts as 1.2K, 3.4M.
func formatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 10_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
