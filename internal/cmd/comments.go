package cmd

import (
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	commentContentType string
	commentWithReplies bool
	commentReplyPages  int
)

var commentCmd = &cobra.Command{
	Use:     "comments",
	Aliases: []string{"comment"},
	Short:   "Comment commands",
	Long:    "Read, write and react to comments on a story",
}

var commentShowCmd = &cobra.Command{
	Use:   "show <content-id>",
	Short: "Show a story with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID("content-id", args[0])
		if err != nil {
			return err
		}
		commentService := service.NewCommentService(commentContentType)
		return commentService.Show(cmd.Context(), contentID, commentWithReplies)
	},
}

var commentRepliesCmd = &cobra.Command{
	Use:   "replies <content-id> <comment-id>",
	Short: "Show replies to a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID("content-id", args[0])
		if err != nil {
			return err
		}
		commentID, err := parseID("comment-id", args[1])
		if err != nil {
			return err
		}
		commentService := service.NewCommentService(commentContentType)
		return commentService.Replies(cmd.Context(), contentID, commentID, commentReplyPages)
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <content-id> <text>",
	Short: "Comment on a story",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID("content-id", args[0])
		if err != nil {
			return err
		}
		commentService := service.NewCommentService(commentContentType)
		return commentService.Add(cmd.Context(), contentID, strings.Join(args[1:], " "))
	},
}

var commentReplyCmd = &cobra.Command{
	Use:   "reply <content-id> <comment-id> <text>",
	Short: "Reply to a comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID("content-id", args[0])
		if err != nil {
			return err
		}
		parentID, err := parseID("comment-id", args[1])
		if err != nil {
			return err
		}
		commentService := service.NewCommentService(commentContentType)
		return commentService.Reply(cmd.Context(), contentID, parentID, strings.Join(args[2:], " "))
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <content-id> <comment-id> <text>",
	Short: "Edit your comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID("content-id", args[0])
		if err != nil {
			return err
		}
		commentID, err := parseID("comment-id", args[1])
		if err != nil {
			return err
		}
		commentService := service.NewCommentService(commentContentType)
		return commentService.Edit(cmd.Context(), contentID, commentID, strings.Join(args[2:], " "))
	},
}

var commentReactCmd = &cobra.Command{
	Use:   "react <content-id> <comment-id> <reaction>",
	Short: "Toggle a reaction on a comment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, err := parseID("content-id", args[0])
		if err != nil {
			return err
		}
		commentID, err := parseID("comment-id", args[1])
		if err != nil {
			return err
		}
		commentService := service.NewCommentService(commentContentType)
		return commentService.React(cmd.Context(), contentID, commentID, strings.ToLower(args[2]))
	},
}

func init() {
	commentCmd.PersistentFlags().StringVar(&commentContentType, "type", service.DefaultContentType, "Content type of the story")
	commentShowCmd.Flags().BoolVar(&commentWithReplies, "replies", false, "Also load the first page of each thread")
	commentRepliesCmd.Flags().IntVar(&commentReplyPages, "pages", 1, "Number of reply pages to load")

	commentCmd.AddCommand(commentShowCmd)
	commentCmd.AddCommand(commentRepliesCmd)
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentEditCmd)
	commentCmd.AddCommand(commentReactCmd)
}
