package cmd

import (
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var profileReposts bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile commands",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [username]",
	Short: "Show a profile (yours by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := ""
		if len(args) == 1 {
			username = args[0]
		}
		profileService := service.NewProfileService()
		return profileService.Show(cmd.Context(), username, profileReposts)
	},
}

var profileFollowCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Follow or unfollow a user",
	Long:  "Toggle following a user. Running it again unfollows.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileService := service.NewProfileService()
		return profileService.ToggleFollow(cmd.Context(), args[0])
	},
}

func init() {
	profileShowCmd.Flags().BoolVar(&profileReposts, "reposts", false, "Show reposts instead of posts")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileFollowCmd)
}
