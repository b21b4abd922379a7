package cmd

import (
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts for pulse",
	Long: `Generate shell completion scripts for bash, zsh, fish, or powershell.

To load completions in your shell session, run:

Bash:
  source <(pulse completion bash)

Zsh:
  source <(pulse completion zsh)

Fish:
  pulse completion fish | source

PowerShell:
  pulse completion powershell | Out-String | Invoke-Expression

To load completions for every new session, execute once:

Bash:
  pulse completion bash > /etc/bash_completion.d/pulse

Zsh:
  pulse completion zsh > /usr/local/share/zsh/site-functions/_pulse

Fish:
  pulse completion fish > ~/.config/fish/completions/pulse.fish

PowerShell:
  pulse completion powershell >> $PROFILE
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := output.Writer()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(w)
		case "zsh":
			return rootCmd.GenZshCompletion(w)
		case "fish":
			return rootCmd.GenFishCompletion(w, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(w)
		}
		return fmt.Errorf("unknown shell: %s", args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
