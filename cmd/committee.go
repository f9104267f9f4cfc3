package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

var committeeCmd = &cobra.Command{
	Use:   "committee",
	Short: "Manage vetting committees",
}

var committeeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a committee",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		committee, err := svc.vettings.CreateCommittee(ctx, caps, name)
		if err != nil {
			return errs.Wrap(err, "create committee")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created committee: %d %s\n", committee.CommitteeID, committee.Name); err != nil {
			return errs.Wrap(err, "write committee output")
		}
		return nil
	}),
}

var committeeAddMemberCmd = &cobra.Command{
	Use:   "add-member",
	Short: "Add a member to a committee",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		committeeID, _ := cmd.Flags().GetUint64("committee")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		inactive, _ := cmd.Flags().GetBool("inactive")

		member, err := svc.vettings.AddCommitteeMember(ctx, caps, usecasevetting.AddCommitteeMemberInput{
			CommitteeID: committeeID,
			Name:        name,
			Role:        role,
			Active:      !inactive,
		})
		if err != nil {
			return errs.Wrap(err, "add committee member")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "added member: %d %s role=%s active=%t\n", member.MemberID, member.Name, member.Role, member.Active); err != nil {
			return errs.Wrap(err, "write member output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(committeeCmd)
	committeeCmd.AddCommand(committeeCreateCmd, committeeAddMemberCmd)

	committeeCreateCmd.Flags().String("name", "", "Committee name")
	_ = committeeCreateCmd.MarkFlagRequired("name")

	committeeAddMemberCmd.Flags().Uint64("committee", 0, "Committee id")
	committeeAddMemberCmd.Flags().String("name", "", "Member name")
	committeeAddMemberCmd.Flags().String("role", "member", "chair|member")
	committeeAddMemberCmd.Flags().Bool("inactive", false, "Add the member as inactive")
	_ = committeeAddMemberCmd.MarkFlagRequired("committee")
	_ = committeeAddMemberCmd.MarkFlagRequired("name")
}
