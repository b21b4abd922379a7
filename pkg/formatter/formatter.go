package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	output.PrintSuccess(format, args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	output.PrintError(format, args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	output.PrintInfo(format, args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	output.PrintWarning(format, args...)
}

// PrintKeyValue prints key-value pairs using the centralized output service
func PrintKeyValue(data map[string]interface{}) {
	_ = output.PrintRecord("", data)
}

var reactionEmoji = map[string]string{
	api.ReactionLike:  "👍",
	api.ReactionLove:  "❤️",
	api.ReactionHaha:  "😂",
	api.ReactionWow:   "😮",
	api.ReactionSad:   "😢",
	api.ReactionAngry: "😠",
}

// Emoji returns the emoji for a reaction type, or the type itself
func Emoji(reaction string) string {
	if e, ok := reactionEmoji[reaction]; ok {
		return e
	}
	return reaction
}

// Reactions renders a reaction summary like "❤️👍 12"
func Reactions(top []string, total int) string {
	var sb strings.Builder
	for _, r := range top {
		sb.WriteString(Emoji(r))
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "%d", total)
	return sb.String()
}

// TimeAgo renders t relative to now
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}

// DisplayName is "First Last" or the username
func DisplayName(u api.UserSummary) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "@" + u.Username
	}
	return name
}

// Truncate shortens s to n runes with an ellipsis
func Truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// PostRow is one feed table row
func PostRow(p api.Post) []string {
	title := Truncate(p.Title, 48)
	if p.IsNewlyPosted {
		title = "★ " + title
	}
	mine := ""
	if p.UserReaction != "" {
		mine = Emoji(p.UserReaction)
	}
	if p.HasUserReposted {
		mine += " ↻"
	}
	return []string{
		fmt.Sprintf("%d", p.ID),
		title,
		Truncate(p.Location, 28),
		"@" + p.User.Username,
		Reactions(p.TopReactions, p.TotalReactions),
		fmt.Sprintf("%d", p.CommentsCount),
		strings.TrimSpace(mine),
		p.TimeSincePost,
	}
}

// PostColumns are the headers matching PostRow
var PostColumns = []string{"ID", "TITLE", "LOCATION", "BY", "REACTIONS", "COMMENTS", "YOU", "POSTED"}

// MessageLine renders a chat message, marking the viewer's own
func MessageLine(m api.Message, me int64, now time.Time) string {
	who := "them"
	switch {
	case m.SenderID == me:
		who = "you"
	case m.Sender != nil:
		who = "@" + m.Sender.Username
	}
	stamp := TimeAgo(m.CreatedTime(), now)
	return fmt.Sprintf("[%d] %s %s: %s", m.ID, Faint.Sprint(stamp), Bold.Sprint(who), m.Content)
}

// NotificationLine renders a notification with an unread marker
func NotificationLine(n api.Notification, now time.Time) string {
	marker := " "
	if !n.IsRead {
		marker = Info.Sprint("•")
	}
	return fmt.Sprintf("%s [%d] %s %s", marker, n.ID, n.Content, Faint.Sprint(TimeAgo(api.ParseTimestamp(n.CreatedAt), now)))
}

// CommentLine renders a comment, indented one level for replies
func CommentLine(c api.Comment, now time.Time) string {
	indent := ""
	if c.ParentID != nil {
		indent = "    ↳ "
	}
	line := fmt.Sprintf("%s[%d] %s: %s  %s", indent, c.ID, Bold.Sprint("@"+c.User.Username), c.Content,
		Reactions(c.TopReactions, c.TotalReactions))
	if c.UserReaction != "" {
		line += " (you " + Emoji(c.UserReaction) + ")"
	}
	if c.ParentID == nil && c.RepliesCount > 0 {
		line += Faint.Sprintf("  %d replies", c.RepliesCount)
	}
	if ts := TimeAgo(api.ParseTimestamp(c.CreatedAt), now); ts != "" {
		line += Faint.Sprint("  " + ts)
	}
	return line
}
