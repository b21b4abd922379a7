package cmd

import (
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	groupPages       int
	groupForce       bool
	groupForEveryone bool
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Group chat commands",
}

// groupIDs parses the leading numeric arguments of a group command
func groupIDs(args []string, names ...string) ([]int64, error) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := parseID(name, args[i])
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groupService := service.NewGroupService()
		return groupService.Create(cmd.Context(), strings.Join(args, " "))
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		groupService := service.NewGroupService()
		return groupService.List(cmd.Context())
	},
}

var groupMembersCmd = &cobra.Command{
	Use:   "members <group-id>",
	Short: "List members and roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Members(cmd.Context(), ids[0])
	},
}

var groupCountCmd = &cobra.Command{
	Use:   "count <group-id>",
	Short: "Show the number of members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Count(cmd.Context(), ids[0])
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add <group-id> <user-id>",
	Short: "Add a member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id", "user-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.AddMember(cmd.Context(), ids[0], ids[1])
	},
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove <group-id> <user-id>",
	Short: "Remove a member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id", "user-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.RemoveMember(cmd.Context(), ids[0], ids[1])
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Join(cmd.Context(), ids[0])
	},
}

var groupLeaveCmd = &cobra.Command{
	Use:   "leave <group-id>",
	Short: "Leave a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Leave(cmd.Context(), ids[0], groupForce)
	},
}

var groupRoleCmd = &cobra.Command{
	Use:   "role <group-id> <user-id> <admin|member>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id", "user-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.AssignRole(cmd.Context(), ids[0], ids[1], args[2])
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a group for everyone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Delete(cmd.Context(), ids[0], groupForce)
	},
}

var groupInviteCmd = &cobra.Command{
	Use:   "invite <group-id>",
	Short: "Create an invite link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Invite(cmd.Context(), ids[0])
	},
}

var groupAcceptCmd = &cobra.Command{
	Use:   "accept <invite-link>",
	Short: "Join a group through an invite link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groupService := service.NewGroupService()
		return groupService.JoinByInvite(cmd.Context(), args[0])
	},
}

var groupMessagesCmd = &cobra.Command{
	Use:   "messages <group-id>",
	Short: "Show group messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Messages(cmd.Context(), ids[0], groupPages)
	},
}

var groupSendCmd = &cobra.Command{
	Use:   "send <group-id> <message>",
	Short: "Send a message to a group",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.Send(cmd.Context(), ids[0], strings.Join(args[1:], " "))
	},
}

var groupEditCmd = &cobra.Command{
	Use:   "edit <group-id> <message-id> <text>",
	Short: "Edit a group message you sent in the last 10 minutes",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id", "message-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.EditMessage(cmd.Context(), ids[0], ids[1], strings.Join(args[2:], " "))
	},
}

var groupUnsendCmd = &cobra.Command{
	Use:   "unsend <group-id> <message-id>",
	Short: "Delete a group message you sent in the last 10 minutes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := groupIDs(args, "group-id", "message-id")
		if err != nil {
			return err
		}
		groupService := service.NewGroupService()
		return groupService.DeleteMessage(cmd.Context(), ids[0], ids[1], groupForEveryone)
	},
}

var groupLiveCmd = &cobra.Command{
	Use:   "live [group-id]",
	Short: "Chat in a group with live updates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var groupID int64
		if len(args) == 1 {
			ids, err := groupIDs(args, "group-id")
			if err != nil {
				return err
			}
			groupID = ids[0]
		}
		groupService := service.NewGroupService()
		return groupService.Live(cmd.Context(), groupID)
	},
}

func init() {
	groupLeaveCmd.Flags().BoolVarP(&groupForce, "force", "f", false, "Skip confirmation")
	groupDeleteCmd.Flags().BoolVarP(&groupForce, "force", "f", false, "Skip confirmation")
	groupMessagesCmd.Flags().IntVar(&groupPages, "pages", 1, "Number of history pages to load")
	groupUnsendCmd.Flags().BoolVar(&groupForEveryone, "for-everyone", true, "Delete for every member")

	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupMembersCmd)
	groupCmd.AddCommand(groupCountCmd)
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRemoveCmd)
	groupCmd.AddCommand(groupJoinCmd)
	groupCmd.AddCommand(groupLeaveCmd)
	groupCmd.AddCommand(groupRoleCmd)
	groupCmd.AddCommand(groupDeleteCmd)
	groupCmd.AddCommand(groupInviteCmd)
	groupCmd.AddCommand(groupAcceptCmd)
	groupCmd.AddCommand(groupMessagesCmd)
	groupCmd.AddCommand(groupSendCmd)
	groupCmd.AddCommand(groupEditCmd)
	groupCmd.AddCommand(groupUnsendCmd)
	groupCmd.AddCommand(groupLiveCmd)
}
