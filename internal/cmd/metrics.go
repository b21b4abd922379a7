package cmd

import (
	"fmt"
	"os"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show client metrics from the previous command",
	Long: `Print the Prometheus text file written after each command. Point a
node_exporter textfile collector at metrics.file to scrape it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetString("metrics.file")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			formatter.PrintInfo("No metrics recorded yet at %s", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read metrics: %w", err)
		}
		_, err = output.Writer().Write(data)
		return err
	},
}
