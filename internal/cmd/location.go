package cmd

import (
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	detectLat float64
	detectLon float64
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Find Seattle neighborhoods",
}

var locationSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search neighborhoods by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locationService := service.NewLocationService()
		return locationService.Search(cmd.Context(), strings.Join(args, " "))
	},
}

var locationDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Find the neighborhood nearest to coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		locationService := service.NewLocationService()
		return locationService.Detect(cmd.Context(), detectLat, detectLon)
	},
}

func init() {
	locationDetectCmd.Flags().Float64Var(&detectLat, "lat", 0, "Latitude")
	locationDetectCmd.Flags().Float64Var(&detectLon, "lon", 0, "Longitude")
	_ = locationDetectCmd.MarkFlagRequired("lat")
	_ = locationDetectCmd.MarkFlagRequired("lon")

	locationCmd.AddCommand(locationSearchCmd)
	locationCmd.AddCommand(locationDetectCmd)
}
