package cmd

import (
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var feedPages int

var feedCmd = &cobra.Command{
	Use:   "feed [location]",
	Short: "View the story feed for a neighborhood",
	Args: cobra.ArbitraryArgs,
	Long: `View the story feed for a neighborhood. Without a location the last
one you viewed is used. A story you just posted is pinned to the top once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		feedService := service.NewFeedService()
		return feedService.Show(cmd.Context(), strings.Join(args, " "), feedPages)
	},
}

var feedReactCmd = &cobra.Command{
	Use:   "react <post-id> <reaction>",
	Short: "Toggle a reaction on a post",
	Long:  "Toggle a reaction on a post: like, love, haha, wow, sad or angry. Reacting again with the same reaction removes it.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post-id", args[0])
		if err != nil {
			return err
		}
		feedService := service.NewFeedService()
		return feedService.React(cmd.Context(), postID, strings.ToLower(args[1]))
	},
}

var feedRepostCmd = &cobra.Command{
	Use:   "repost <post-id>",
	Short: "Toggle a repost of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post-id", args[0])
		if err != nil {
			return err
		}
		feedService := service.NewFeedService()
		return feedService.Repost(cmd.Context(), postID)
	},
}

func init() {
	feedCmd.Flags().IntVar(&feedPages, "pages", 1, "Number of pages to load")

	feedCmd.AddCommand(feedReactCmd)
	feedCmd.AddCommand(feedRepostCmd)
}
