package cmd

import (
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	chatPages       int
	chatForEveryone bool
	chatForce       bool
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"dm"},
	Short:   "Direct message commands",
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List direct and group conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		chatService := service.NewChatService()
		return chatService.List(cmd.Context())
	},
}

var chatOpenCmd = &cobra.Command{
	Use:   "open <chat-id>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		chatService := service.NewChatService()
		return chatService.Open(cmd.Context(), chatID, chatPages)
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <chat-id> <message>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		chatService := service.NewChatService()
		return chatService.Send(cmd.Context(), chatID, strings.Join(args[1:], " "))
	},
}

var chatEditCmd = &cobra.Command{
	Use:   "edit <chat-id> <message-id> <text>",
	Short: "Edit a message you sent in the last 10 minutes",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		messageID, err := parseID("message-id", args[1])
		if err != nil {
			return err
		}
		chatService := service.NewChatService()
		return chatService.Edit(cmd.Context(), chatID, messageID, strings.Join(args[2:], " "))
	},
}

var chatUnsendCmd = &cobra.Command{
	Use:   "unsend <chat-id> <message-id>",
	Short: "Delete a message you sent in the last 10 minutes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		messageID, err := parseID("message-id", args[1])
		if err != nil {
			return err
		}
		chatService := service.NewChatService()
		return chatService.Delete(cmd.Context(), chatID, messageID, chatForEveryone)
	},
}

var chatStartCmd = &cobra.Command{
	Use:   "start <user-id>",
	Short: "Start a conversation with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseID("user-id", args[0])
		if err != nil {
			return err
		}
		chatService := service.NewChatService()
		return chatService.Start(cmd.Context(), userID)
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a whole conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		chatService := service.NewChatService()
		return chatService.DeleteChat(cmd.Context(), chatID, chatForce)
	},
}

var chatLiveCmd = &cobra.Command{
	Use:   "live [chat-id]",
	Short: "Chat interactively with live updates",
	Long: `Open a conversation and keep it updated as messages arrive. Without a
chat id the conversation from 'pulse chat start' is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var chatID int64
		if len(args) == 1 {
			id, err := parseID("chat-id", args[0])
			if err != nil {
				return err
			}
			chatID = id
		}
		chatService := service.NewChatService()
		return chatService.Live(cmd.Context(), chatID)
	},
}

func init() {
	chatOpenCmd.Flags().IntVar(&chatPages, "pages", 1, "Number of history pages to load")
	chatUnsendCmd.Flags().BoolVar(&chatForEveryone, "for-everyone", true, "Delete for both participants")
	chatDeleteCmd.Flags().BoolVarP(&chatForce, "force", "f", false, "Skip confirmation")

	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatOpenCmd)
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatEditCmd)
	chatCmd.AddCommand(chatUnsendCmd)
	chatCmd.AddCommand(chatStartCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(chatLiveCmd)
}
