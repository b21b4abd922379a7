package cmd

import (
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live messages and notifications",
	Long:  "Connect to live updates and print incoming messages and notifications until Ctrl+C.",
	RunE: func(cmd *cobra.Command, args []string) error {
		watchService := service.NewWatchService()
		return watchService.Watch(cmd.Context())
	},
}
