package cmd

import (
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	notificationsUnread bool
	notificationsForce  bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "Notification commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		notificationService := service.NewNotificationService()
		return notificationService.List(cmd.Context(), notificationsUnread)
	},
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		notificationService := service.NewNotificationService()
		return notificationService.List(cmd.Context(), notificationsUnread)
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("notification-id", args[0])
		if err != nil {
			return err
		}
		notificationService := service.NewNotificationService()
		return notificationService.Read(cmd.Context(), id)
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark all notifications as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		notificationService := service.NewNotificationService()
		return notificationService.ReadAll(cmd.Context())
	},
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete <notification-id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("notification-id", args[0])
		if err != nil {
			return err
		}
		notificationService := service.NewNotificationService()
		return notificationService.Delete(cmd.Context(), id)
	},
}

var notificationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		notificationService := service.NewNotificationService()
		return notificationService.DeleteAll(cmd.Context(), notificationsForce)
	},
}

func init() {
	notificationsCmd.PersistentFlags().BoolVar(&notificationsUnread, "unread", false, "Only show unread notifications")
	notificationsClearCmd.Flags().BoolVarP(&notificationsForce, "force", "f", false, "Skip confirmation")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
	notificationsCmd.AddCommand(notificationsClearCmd)
}
