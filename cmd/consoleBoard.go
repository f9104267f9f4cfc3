package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/usecase/boardconsole"
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"tui"},
	Short:   "Interactive terminal views over the vetting pipeline",
}

var consoleBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Start the vetting pipeline console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		stage, _ := cmd.Flags().GetString("stage")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")

		model := boardconsole.NewBoardModel(ctx, svc.vettings, svc.audits, boardconsole.BoardOptions{
			Capabilities:    caps,
			StageFilter:     stage,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run board console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.AddCommand(consoleBoardCmd)
	consoleBoardCmd.Flags().String("stage", "", "Only show vettings in this stage")
	consoleBoardCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
