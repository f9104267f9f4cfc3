package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Digital presence audits",
}

var auditStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an audit for a vetting and run it to completion",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("vetting")
		audit, err := svc.audits.StartAndRun(ctx, caps, vettingID)
		if err != nil {
			logging.Error(ctx, "audit failed to start", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start audit")
		}
		return writeAudit(cmd, audit)
	}),
}

var auditShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show an audit, or the latest audit of a vetting",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		auditID, _ := cmd.Flags().GetUint64("id")
		vettingID, _ := cmd.Flags().GetUint64("vetting")
		var (
			audit ports.DigitalAudit
			err   error
		)
		switch {
		case auditID != 0:
			audit, err = svc.audits.GetAudit(ctx, auditID)
		case vettingID != 0:
			audit, err = svc.audits.GetLatestAudit(ctx, vettingID)
		default:
			return errs.Validationf("--id or --vetting is required")
		}
		if err != nil {
			return errs.Wrap(err, "get audit")
		}
		if err := writeAudit(cmd, audit); err != nil {
			return err
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			return nil
		}
		details := map[string]json.RawMessage{}
		for key, value := range map[string]string{
			"breakdown": audit.BreakdownJSON,
			"risk":      audit.RiskJSON,
			"opponents": audit.OpponentResultsJSON,
			"discovery": audit.DiscoveryLogJSON,
		} {
			if value != "" {
				details[key] = json.RawMessage(value)
			}
		}
		return printJSON(cmd, details)
	}),
}

var auditPlatformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the platforms an audit found",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		auditID, _ := cmd.Flags().GetUint64("id")
		platforms, err := svc.audits.ListAuditPlatforms(ctx, auditID)
		if err != nil {
			return errs.Wrap(err, "list audit platforms")
		}
		if len(platforms) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "no platforms")
			return err
		}
		for _, platform := range platforms {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\tconfidence=%s\tscore=%d(%s)\n",
				platform.EntityType, platform.EntityName, platform.PlatformName, platform.URL,
				platform.ConfidenceLevel, platform.TotalScore, platform.Grade,
			); err != nil {
				return errs.Wrap(err, "write platform output")
			}
		}
		return nil
	}),
}

func writeAudit(cmd *cobra.Command, audit ports.DigitalAudit) error {
	line := fmt.Sprintf("audit %d vetting=%d run=%s status=%s", audit.AuditID, audit.VettingID, audit.RunID, audit.Status)
	if audit.Score != nil {
		line += fmt.Sprintf(" score=%d grade=%s", *audit.Score, audit.Grade)
	}
	if audit.ErrorMessage != nil {
		line += " error=" + *audit.ErrorMessage
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
		return errs.Wrap(err, "write audit output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditStartCmd, auditShowCmd, auditPlatformsCmd)

	auditStartCmd.Flags().Uint64("vetting", 0, "Vetting id")
	_ = auditStartCmd.MarkFlagRequired("vetting")

	auditShowCmd.Flags().Uint64("id", 0, "Audit id")
	auditShowCmd.Flags().Uint64("vetting", 0, "Show the latest audit of this vetting")
	auditShowCmd.Flags().Bool("verbose", false, "Print breakdown, risk, opponents and discovery log")

	auditPlatformsCmd.Flags().Uint64("id", 0, "Audit id")
	_ = auditPlatformsCmd.MarkFlagRequired("id")
}
