package cmd

import (
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	postForce         bool
	postReportReason  string
	postReportDetails string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage posts",
	Long:  "Delete your posts, hide posts from your feed and report posts for moderation",
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post-id", args[0])
		if err != nil {
			return err
		}
		return service.NewPostService().Delete(cmd.Context(), postID, postForce)
	},
}

var postHideCmd = &cobra.Command{
	Use:   "hide <post-id>",
	Short: "Hide a post from your feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post-id", args[0])
		if err != nil {
			return err
		}
		return service.NewPostService().Hide(cmd.Context(), postID)
	},
}

var postUnhideCmd = &cobra.Command{
	Use:   "unhide <post-id>",
	Short: "Show a hidden post again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post-id", args[0])
		if err != nil {
			return err
		}
		return service.NewPostService().Unhide(cmd.Context(), postID)
	},
}

var postReportCmd = &cobra.Command{
	Use:   "report <post-id>",
	Short: "Report a post for moderation",
	Long: "Report a post. Without --reason a menu is shown. Reasons: " +
		strings.Join(api.ReportReasons, ", ") + ".",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post-id", args[0])
		if err != nil {
			return err
		}
		return service.NewPostService().Report(cmd.Context(), postID, postReportReason, postReportDetails, postForce)
	},
}

func init() {
	postDeleteCmd.Flags().BoolVarP(&postForce, "force", "f", false, "Skip confirmation")
	postReportCmd.Flags().StringVar(&postReportReason, "reason", "", "Report reason")
	postReportCmd.Flags().StringVar(&postReportDetails, "details", "", "Details, required for the Other reason")
	postReportCmd.Flags().BoolVarP(&postForce, "force", "f", false, "Submit without confirmation")

	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postHideCmd)
	postCmd.AddCommand(postUnhideCmd)
	postCmd.AddCommand(postReportCmd)
}
