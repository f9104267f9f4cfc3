package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Work on research report sections",
}

var sectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sections of a vetting",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		vettingID, _ := cmd.Flags().GetUint64("vetting")
		views, err := svc.vettings.ListSections(ctx, vettingID)
		if err != nil {
			return errs.Wrap(err, "list sections")
		}
		for _, view := range views {
			source := "empty"
			switch {
			case view.ReviewedData != "":
				source = "reviewed"
			case view.AIDraftData != "":
				source = "draft"
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\tcontent=%s\tassigned=%v\n",
				view.SectionID, view.SectionType, view.Status, source, view.AssignedMemberIDs); err != nil {
				return errs.Wrap(err, "write section output")
			}
		}
		return nil
	}),
}

var sectionUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a section's status, reviewed content or notes",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		sectionID, _ := cmd.Flags().GetUint64("id")
		input := usecasevetting.UpdateSectionInput{SectionID: sectionID}
		if cmd.Flags().Changed("status") {
			status, _ := cmd.Flags().GetString("status")
			input.Status = &status
		}
		if cmd.Flags().Changed("data") {
			raw, _ := cmd.Flags().GetString("data")
			data, err := readJSONFlag(raw)
			if err != nil {
				return err
			}
			input.ReviewedData = &data
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			input.Notes = &notes
		}

		section, err := svc.vettings.UpdateSection(ctx, caps, input)
		if err != nil {
			logging.Error(ctx, "update section failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update section")
		}
		return writeSection(cmd, "updated", section)
	}),
}

var sectionAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a committee member to a section",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		sectionID, _ := cmd.Flags().GetUint64("id")
		memberID, _ := cmd.Flags().GetUint64("member")
		section, err := svc.vettings.AssignSection(ctx, caps, sectionID, memberID)
		if err != nil {
			return errs.Wrap(err, "assign section")
		}
		return writeSection(cmd, "assigned", section)
	}),
}

var sectionUnassignCmd = &cobra.Command{
	Use:   "unassign",
	Short: "Remove a member from a section",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		sectionID, _ := cmd.Flags().GetUint64("id")
		memberID, _ := cmd.Flags().GetUint64("member")
		if err := svc.vettings.UnassignSection(ctx, caps, sectionID, memberID); err != nil {
			return errs.Wrap(err, "unassign section")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "unassigned member %d from section %d\n", memberID, sectionID); err != nil {
			return errs.Wrap(err, "write unassign output")
		}
		return nil
	}),
}

var sectionDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate a model draft for a section",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("vetting")
		sectionType, _ := cmd.Flags().GetString("type")
		force, _ := cmd.Flags().GetBool("force")

		section, err := svc.vettings.GenerateSectionDraft(ctx, caps, usecasevetting.GenerateDraftInput{
			VettingID:   vettingID,
			SectionType: sectionType,
			Force:       force,
		})
		if err != nil {
			logging.Error(ctx, "generate section draft failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate section draft")
		}
		if err := writeSection(cmd, "drafted", section); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), section.AIDraftData)
		return err
	}),
}

func writeSection(cmd *cobra.Command, action string, section ports.ReportSection) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s section: %d %s status=%s\n", action, section.SectionID, section.SectionType, section.Status); err != nil {
		return errs.Wrap(err, "write section output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(sectionCmd)
	sectionCmd.AddCommand(sectionListCmd, sectionUpdateCmd, sectionAssignCmd, sectionUnassignCmd, sectionDraftCmd)

	for _, command := range []*cobra.Command{sectionListCmd, sectionDraftCmd} {
		command.Flags().Uint64("vetting", 0, "Vetting id")
		_ = command.MarkFlagRequired("vetting")
	}
	for _, command := range []*cobra.Command{sectionUpdateCmd, sectionAssignCmd, sectionUnassignCmd} {
		command.Flags().Uint64("id", 0, "Section id")
		_ = command.MarkFlagRequired("id")
	}
	for _, command := range []*cobra.Command{sectionAssignCmd, sectionUnassignCmd} {
		command.Flags().Uint64("member", 0, "Committee member id")
		_ = command.MarkFlagRequired("member")
	}

	sectionUpdateCmd.Flags().String("status", "", "New status")
	sectionUpdateCmd.Flags().String("data", "", "Reviewed JSON content, inline or @file")
	sectionUpdateCmd.Flags().String("notes", "", "Reviewer notes")

	sectionDraftCmd.Flags().String("type", "", "Section type")
	sectionDraftCmd.Flags().Bool("force", false, "Replace an existing draft")
	_ = sectionDraftCmd.MarkFlagRequired("type")
}
