package cmd

import (
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/service"
	"github.com/spf13/cobra"
)

var (
	storyTitle    string
	storyBody     string
	storyMedia    string
	storyLocation string
	storyLat      float64
	storyLon      float64
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Post stories",
	Long:  "Post a photo or video story to a Seattle neighborhood",
}

var storyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Post a story interactively",
	Long: `Post a story step by step. Pass --lat and --lon to have the nearest
neighborhood proposed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		storyService := service.NewStoryService()

		var near *[2]float64
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return clierrors.ValidationError("coordinates", "--lat and --lon go together")
			}
			near = &[2]float64{storyLat, storyLon}
		}
		return storyService.Create(cmd.Context(), near)
	},
}

var storyPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a story from flags",
	Long:  "Post a story without prompts. --location must name a neighborhood exactly as 'pulse location search' lists it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		storyService := service.NewStoryService()
		return storyService.Post(cmd.Context(), storyTitle, storyBody, storyMedia, storyLocation)
	},
}

func init() {
	storyCreateCmd.Flags().Float64Var(&storyLat, "lat", 0, "Your latitude")
	storyCreateCmd.Flags().Float64Var(&storyLon, "lon", 0, "Your longitude")

	storyPostCmd.Flags().StringVar(&storyTitle, "title", "", "Story title")
	storyPostCmd.Flags().StringVar(&storyBody, "body", "", "Story text")
	storyPostCmd.Flags().StringVar(&storyMedia, "media", "", "Path to a photo or video")
	storyPostCmd.Flags().StringVar(&storyLocation, "location", "", "Neighborhood")
	_ = storyPostCmd.MarkFlagRequired("title")
	_ = storyPostCmd.MarkFlagRequired("media")
	_ = storyPostCmd.MarkFlagRequired("location")

	storyCmd.AddCommand(storyCreateCmd)
	storyCmd.AddCommand(storyPostCmd)
}
