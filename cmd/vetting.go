package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"candidatevet/internal/bootstrap"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

var vettingCmd = &cobra.Command{
	Use:   "vetting",
	Short: "Manage candidate vettings",
}

// vettingFile is the TOML intake form accepted by vetting create --file.
type vettingFile struct {
	CandidateName string   `toml:"candidate_name"`
	Office        string   `toml:"office"`
	District      string   `toml:"district"`
	State         string   `toml:"state"`
	Party         string   `toml:"party"`
	CommitteeID   uint64   `toml:"committee_id"`
	KnownURLs     []string `toml:"known_urls"`
	Opponents     []struct {
		Name       string `toml:"name"`
		Party      string `toml:"party"`
		Incumbent  bool   `toml:"incumbent"`
		Background string `toml:"background"`
	} `toml:"opponents"`
}

func loadVettingFile(path string) (usecasevetting.CreateVettingInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return usecasevetting.CreateVettingInput{}, errs.Wrap(err, "read vetting file")
	}
	var file vettingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return usecasevetting.CreateVettingInput{}, errs.Validationf("parse vetting file %s: %v", path, err)
	}

	input := usecasevetting.CreateVettingInput{
		CandidateName: file.CandidateName,
		Office:        file.Office,
		District:      file.District,
		State:         file.State,
		Party:         file.Party,
		KnownURLs:     file.KnownURLs,
	}
	if file.CommitteeID != 0 {
		committeeID := file.CommitteeID
		input.CommitteeID = &committeeID
	}
	for _, opponent := range file.Opponents {
		input.Opponents = append(input.Opponents, usecasevetting.OpponentInput{
			Name:       opponent.Name,
			Party:      opponent.Party,
			Incumbent:  opponent.Incumbent,
			Background: opponent.Background,
		})
	}
	return input, nil
}

var vettingCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a vetting from flags or a TOML intake file",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}

		var input usecasevetting.CreateVettingInput
		if path, _ := cmd.Flags().GetString("file"); strings.TrimSpace(path) != "" {
			input, err = loadVettingFile(path)
			if err != nil {
				return err
			}
		} else {
			input.CandidateName, _ = cmd.Flags().GetString("name")
			input.Office, _ = cmd.Flags().GetString("office")
			input.District, _ = cmd.Flags().GetString("district")
			input.State, _ = cmd.Flags().GetString("state")
			input.Party, _ = cmd.Flags().GetString("party")
			input.KnownURLs, _ = cmd.Flags().GetStringSlice("url")
			if committeeID, _ := cmd.Flags().GetUint64("committee"); committeeID != 0 {
				input.CommitteeID = &committeeID
			}
			opponents, _ := cmd.Flags().GetStringSlice("opponent")
			for _, name := range opponents {
				input.Opponents = append(input.Opponents, usecasevetting.OpponentInput{Name: name})
			}
		}

		vetting, err := svc.vettings.CreateVetting(ctx, caps, input)
		if err != nil {
			logging.Error(ctx, "create vetting failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create vetting")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created vetting: %d stage=%s\n", vetting.VettingID, vetting.Stage); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var vettingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vettings, optionally in one stage",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		stage, _ := cmd.Flags().GetString("stage")
		vettings, err := svc.vettings.ListVettings(ctx, stage)
		if err != nil {
			return errs.Wrap(err, "list vettings")
		}
		if len(vettings) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "no vettings")
			return err
		}
		for _, vetting := range vettings {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", vetting.VettingID, vetting.Stage, vetting.CandidateName, vetting.Office); err != nil {
				return errs.Wrap(err, "write list output")
			}
		}
		return nil
	}),
}

var vettingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a vetting with its opponents",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		vettingID, _ := cmd.Flags().GetUint64("id")
		vetting, err := svc.vettings.GetVetting(ctx, vettingID)
		if err != nil {
			return errs.Wrap(err, "get vetting")
		}
		opponents, err := svc.vettings.ListOpponents(ctx, vettingID)
		if err != nil {
			return errs.Wrap(err, "list opponents")
		}
		return writeVetting(cmd, vetting, opponents)
	}),
}

func writeVetting(cmd *cobra.Command, vetting ports.Vetting, opponents []ports.Opponent) error {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Vetting: %d\n", vetting.VettingID))
	builder.WriteString(fmt.Sprintf("Candidate: %s (%s)\n", vetting.CandidateName, firstNonEmpty(vetting.Party, "-")))
	builder.WriteString(fmt.Sprintf("Office: %s district=%s state=%s\n", vetting.Office, firstNonEmpty(vetting.District, "-"), firstNonEmpty(vetting.State, "-")))
	builder.WriteString(fmt.Sprintf("Stage: %s\n", vetting.Stage))
	if vetting.Recommendation != nil {
		builder.WriteString(fmt.Sprintf("Recommendation: %s\n", *vetting.Recommendation))
	}
	if vetting.EndorsementResult != nil {
		builder.WriteString(fmt.Sprintf("Endorsement: %s\n", *vetting.EndorsementResult))
	}
	if vetting.InterviewDate != nil {
		builder.WriteString(fmt.Sprintf("Interview: %s\n", *vetting.InterviewDate))
	}
	builder.WriteString(fmt.Sprintf("Known URLs: %s\n", firstNonEmpty(strings.Join(vetting.KnownURLs, ", "), "-")))
	builder.WriteString("Opponents:\n")
	if len(opponents) == 0 {
		builder.WriteString("- none\n")
	}
	for _, opponent := range opponents {
		incumbent := ""
		if opponent.Incumbent {
			incumbent = " incumbent"
		}
		builder.WriteString(fmt.Sprintf("- %d %s (%s)%s\n", opponent.OpponentID, opponent.Name, firstNonEmpty(opponent.Party, "-"), incumbent))
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), builder.String()); err != nil {
		return errs.Wrap(err, "write vetting output")
	}
	return nil
}

var vettingAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Move a vetting to another stage",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("id")
		to, _ := cmd.Flags().GetString("to")

		vetting, err := svc.vettings.TransitionStage(ctx, caps, usecasevetting.TransitionStageInput{VettingID: vettingID, To: to})
		if err != nil {
			logging.Error(ctx, "transition stage failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "transition stage")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "vetting %d stage=%s\n", vetting.VettingID, vetting.Stage); err != nil {
			return errs.Wrap(err, "write advance output")
		}
		return nil
	}),
}

var vettingRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Record the committee recommendation",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("id")
		recommendation, _ := cmd.Flags().GetString("recommendation")

		vetting, err := svc.vettings.SetRecommendation(ctx, caps, vettingID, recommendation)
		if err != nil {
			return errs.Wrap(err, "set recommendation")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "vetting %d recommendation=%s\n", vetting.VettingID, *vetting.Recommendation); err != nil {
			return errs.Wrap(err, "write recommend output")
		}
		return nil
	}),
}

var vettingInterviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Record the candidate interview",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("id")
		date, _ := cmd.Flags().GetString("date")
		notes, _ := cmd.Flags().GetString("notes")

		vetting, err := svc.vettings.RecordInterview(ctx, caps, usecasevetting.RecordInterviewInput{
			VettingID: vettingID,
			Date:      date,
			Notes:     notes,
		})
		if err != nil {
			return errs.Wrap(err, "record interview")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "vetting %d interview=%s\n", vetting.VettingID, *vetting.InterviewDate); err != nil {
			return errs.Wrap(err, "write interview output")
		}
		return nil
	}),
}

var vettingOpponentCmd = &cobra.Command{
	Use:   "opponent",
	Short: "Add an opponent to a vetting",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caps, err := actingCaps(cmd)
		if err != nil {
			return err
		}
		vettingID, _ := cmd.Flags().GetUint64("id")
		name, _ := cmd.Flags().GetString("name")
		party, _ := cmd.Flags().GetString("party")
		incumbent, _ := cmd.Flags().GetBool("incumbent")
		background, _ := cmd.Flags().GetString("background")

		opponent, err := svc.vettings.AddOpponent(ctx, caps, vettingID, usecasevetting.OpponentInput{
			Name:       name,
			Party:      party,
			Incumbent:  incumbent,
			Background: background,
		})
		if err != nil {
			return errs.Wrap(err, "add opponent")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "added opponent: %d %s\n", opponent.OpponentID, opponent.Name); err != nil {
			return errs.Wrap(err, "write opponent output")
		}
		return nil
	}),
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(vettingCmd)
	vettingCmd.AddCommand(vettingCreateCmd, vettingListCmd, vettingShowCmd, vettingAdvanceCmd, vettingRecommendCmd, vettingInterviewCmd, vettingOpponentCmd)

	vettingCreateCmd.Flags().String("file", "", "TOML intake file")
	vettingCreateCmd.Flags().String("name", "", "Candidate name")
	vettingCreateCmd.Flags().String("office", "", "Office sought")
	vettingCreateCmd.Flags().String("district", "", "District")
	vettingCreateCmd.Flags().String("state", "", "State code or name")
	vettingCreateCmd.Flags().String("party", "", "Party")
	vettingCreateCmd.Flags().Uint64("committee", 0, "Reviewing committee id")
	vettingCreateCmd.Flags().StringSlice("url", nil, "Known candidate URL (repeatable)")
	vettingCreateCmd.Flags().StringSlice("opponent", nil, "Opponent name (repeatable)")

	vettingListCmd.Flags().String("stage", "", "Only vettings in this stage")

	for _, command := range []*cobra.Command{vettingShowCmd, vettingAdvanceCmd, vettingRecommendCmd, vettingInterviewCmd, vettingOpponentCmd} {
		command.Flags().Uint64("id", 0, "Vetting id")
		_ = command.MarkFlagRequired("id")
	}

	vettingAdvanceCmd.Flags().String("to", "", "Target stage")
	_ = vettingAdvanceCmd.MarkFlagRequired("to")

	vettingRecommendCmd.Flags().String("recommendation", "", "endorse|do_not_endorse|no_position")
	_ = vettingRecommendCmd.MarkFlagRequired("recommendation")

	vettingInterviewCmd.Flags().String("date", "", "Interview date (YYYY-MM-DD)")
	vettingInterviewCmd.Flags().String("notes", "", "Interview notes")
	_ = vettingInterviewCmd.MarkFlagRequired("date")

	vettingOpponentCmd.Flags().String("name", "", "Opponent name")
	vettingOpponentCmd.Flags().String("party", "", "Opponent party")
	vettingOpponentCmd.Flags().Bool("incumbent", false, "Opponent is the incumbent")
	vettingOpponentCmd.Flags().String("background", "", "Background notes")
	_ = vettingOpponentCmd.MarkFlagRequired("name")
}
