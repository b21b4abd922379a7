package cmd

import (
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(output.Writer(), "Pulse CLI v%s\n", Version)
	},
}
