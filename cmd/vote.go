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

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Board votes and endorsement results",
}

var voteRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the acting board member's vote",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("vetting")
		choice, _ := cmd.Flags().GetString("vote")
		comment, _ := cmd.Flags().GetString("comment")

		vote, err := svc.vettings.RecordBoardVote(ctx, caps, usecasevetting.RecordBoardVoteInput{
			VettingID: vettingID,
			Vote:      choice,
			Comment:   comment,
		})
		if err != nil {
			return errs.Wrap(err, "record board vote")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "recorded vote: %d voter=%d vote=%s\n", vote.VoteID, vote.VoterID, vote.Vote); err != nil {
			return errs.Wrap(err, "write vote output")
		}
		return nil
	}),
}

var voteTallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Show the current board tally",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		vettingID, _ := cmd.Flags().GetUint64("vetting")
		tally, err := svc.vettings.GetBoardTally(ctx, vettingID)
		if err != nil {
			return errs.Wrap(err, "get board tally")
		}
		finalized := "-"
		if tally.Finalized != nil {
			finalized = string(*tally.Finalized)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(),
			"endorse=%d do_not_endorse=%d no_position=%d abstain=%d votes=%d result=%s finalized=%s\n",
			tally.Tally.Endorse, tally.Tally.DoNotEndorse, tally.Tally.NoPosition, tally.Tally.Abstain,
			tally.Votes, tally.Result, finalized,
		); err != nil {
			return errs.Wrap(err, "write tally output")
		}
		return nil
	}),
}

var voteFinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Freeze the tally as the endorsement result",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("vetting")
		vetting, err := svc.vettings.FinalizeEndorsement(ctx, caps, vettingID)
		if err != nil {
			return errs.Wrap(err, "finalize endorsement")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "vetting %d endorsement=%s\n", vetting.VettingID, *vetting.EndorsementResult); err != nil {
			return errs.Wrap(err, "write finalize output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(voteCmd)
	voteCmd.AddCommand(voteRecordCmd, voteTallyCmd, voteFinalizeCmd)

	for _, command := range []*cobra.Command{voteRecordCmd, voteTallyCmd, voteFinalizeCmd} {
		command.Flags().Uint64("vetting", 0, "Vetting id")
		_ = command.MarkFlagRequired("vetting")
	}
	voteRecordCmd.Flags().String("vote", "", "endorse|do_not_endorse|no_position|abstain")
	voteRecordCmd.Flags().String("comment", "", "Optional comment")
	_ = voteRecordCmd.MarkFlagRequired("vote")
}
