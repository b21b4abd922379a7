package cmd

import (
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	profileChanges service.ProfileChanges

	credentialsEmail    string
	credentialsPassword bool

	deleteAccountReason   string
	deleteAccountComments string
	deleteAccountForce    bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Account and CLI settings",
	Long:  "Edit your profile, change your email or password, delete your account and manage local CLI settings",
}

var settingsProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Edit your profile",
	Long:  "Update profile fields. Only the flags you pass are changed.",
	Example: `  pulse settings profile --bio "Ferries and coffee"
  pulse settings profile --picture ./me.jpg --home-location Ballard`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSettingsService().EditProfile(cmd.Context(), profileChanges)
	},
}

var settingsCredentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Change your email or password",
	Long:  "Change your account email with --email, your password with --password, or both. Passwords are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSettingsService().UpdateCredentials(cmd.Context(), credentialsEmail, credentialsPassword)
	},
}

var settingsHomeLocationCmd = &cobra.Command{
	Use:       "home-location <show|hide>",
	Short:     "Show or hide your home location on your profile",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"show", "hide"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSettingsService().SetHomeLocationVisible(cmd.Context(), args[0] == "show")
	},
}

var settingsDeleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Permanently delete your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSettingsService().DeleteAccount(cmd.Context(), deleteAccountReason, deleteAccountComments, deleteAccountForce)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Save a CLI setting to your config file",
	Example: `  pulse settings set feed.default_location Fremont`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewSettingsService().Set(args[0], args[1])
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one CLI setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		return service.NewSettingsService().Get(key)
	},
}

func init() {
	f := settingsProfileCmd.Flags()
	f.StringVar(&profileChanges.FirstName, "first-name", "", "First name")
	f.StringVar(&profileChanges.LastName, "last-name", "", "Last name")
	f.StringVar(&profileChanges.Username, "username", "", "Username")
	f.StringVar(&profileChanges.Email, "email", "", "Email")
	f.StringVar(&profileChanges.Bio, "bio", "", "Bio")
	f.StringVar(&profileChanges.HomeLocation, "home-location", "", "Home neighborhood")
	f.StringVar(&profileChanges.PicturePath, "picture", "", "Path to a profile picture")

	settingsCredentialsCmd.Flags().StringVar(&credentialsEmail, "email", "", "New email")
	settingsCredentialsCmd.Flags().BoolVar(&credentialsPassword, "password", false, "Change your password")

	settingsDeleteAccountCmd.Flags().StringVar(&deleteAccountReason, "reason", "", "Reason for leaving (prompted when omitted)")
	settingsDeleteAccountCmd.Flags().StringVar(&deleteAccountComments, "comments", "", "Anything else to tell us")
	settingsDeleteAccountCmd.Flags().BoolVarP(&deleteAccountForce, "force", "f", false, "Skip confirmation")

	settingsCmd.AddCommand(settingsProfileCmd)
	settingsCmd.AddCommand(settingsCredentialsCmd)
	settingsCmd.AddCommand(settingsHomeLocationCmd)
	settingsCmd.AddCommand(settingsDeleteAccountCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
}
