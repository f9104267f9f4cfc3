package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "candidatevet",
	Short:        "Candidate vetting pipeline and digital presence audits",
	Long:         "Runs endorsement vettings through their stages and audits candidates' public web presence.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("log-format")
		level, _ := cmd.Flags().GetString("log-level")
		logger := logging.New(cmd.ErrOrStderr(), format, level)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	},
}

// Execute is called by main.main. It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	ctx = logging.WithLogger(ctx, logging.New(rootCmd.ErrOrStderr(), "text", "info"))
	ctx = logging.WithAttrs(ctx, slog.String("app", "candidatevet"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (default: ./configs/config.yaml when present)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("as", "", "Comma-separated capabilities: chair,national,board,member")
	rootCmd.PersistentFlags().Uint64("member-id", 0, "Committee member id acting on the request")
}
