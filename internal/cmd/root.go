package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/metrics"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/telemetry"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	verbose    bool
	configPath string
	outputFmt  string

	tracer *sdktrace.TracerProvider
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse CLI - Seattle neighborhood stories, chat and notifications",
	Long: `Pulse is a command-line client for Seattle Pulse. Browse the
story feed for your neighborhood, post stories, comment and react, chat
with neighbors and follow live notifications from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Initialize config and logger
		if err := config.Init(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
			os.Exit(1)
		}

		logger.Init(verbose)
		metrics.Initialize()

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				fmt.Fprintf(os.Stderr, "Error: invalid output format %q (text, json, table)\n", outputFmt)
				os.Exit(1)
			}
			config.Set("output.format", outputFmt)
		}

		tp, err := telemetry.InitTracer(cmd.Context(), telemetry.Config{
			ServiceName:  "pulse-cli",
			Environment:  config.GetString("env"),
			OTLPEndpoint: config.GetString("telemetry.endpoint"),
			SamplingRate: config.GetFloat("telemetry.sampling_rate"),
		})
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		}
		tracer = tp
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown(cmd.Context())
	},
}

// shutdown flushes traces and writes the metrics textfile
func shutdown(ctx context.Context) {
	if tracer != nil {
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Debug("Tracer shutdown failed", "error", err)
		}
		tracer = nil
	}
	if path := config.GetString("metrics.file"); path != "" {
		if err := metrics.Get().WriteTextfile(path); err != nil {
			logger.Debug("Failed to write metrics", "path", path, "error", err)
		}
	}
}

func Execute() {
	cmd, err := rootCmd.ExecuteContextC(context.Background())
	if err != nil {
		shutdown(context.Background())
		fmt.Fprint(os.Stderr, clierrors.FormatError(describeError(cmd, err, session.Current())))
		os.Exit(1)
	}
}

// describeError reports a 401 on a saved session as an expired session.
// A failed login keeps its own message.
func describeError(cmd *cobra.Command, err error, user session.User) error {
	if user.UserID == 0 || cmd == loginCmd {
		return err
	}
	cliErr := clierrors.CategorizeError(err)
	if cliErr.Type != clierrors.ErrorTypeAuth || cliErr.StatusCode != http.StatusUnauthorized {
		return err
	}
	expired := clierrors.SessionExpiredError()
	expired.Cause = err
	expired.StatusCode = cliErr.StatusCode
	return expired
}

// parseID parses a numeric id argument
func parseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, clierrors.ValidationError(name, fmt.Sprintf("%q is not a valid id", arg))
	}
	return id, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/pulse/cli/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")

	// Add subcommands
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
}
