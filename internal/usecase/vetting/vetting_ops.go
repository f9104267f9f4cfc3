package vetting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"candidatevet/internal/bootstrap/logging"
	domainaudit "candidatevet/internal/domain/audit"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

// CreateVetting promotes a survey into a vetting with one section per type.
func (s *Service) CreateVetting(ctx context.Context, caps domainvetting.Capabilities, input CreateVettingInput) (ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return ports.Vetting{}, err
	}
	if !caps.CanCreateVetting() {
		return ports.Vetting{}, permissionDenied("create vettings")
	}

	name := strings.TrimSpace(input.CandidateName)
	if name == "" {
		return ports.Vetting{}, errs.Validationf("candidate name is required")
	}
	office := strings.TrimSpace(input.Office)
	if office == "" {
		return ports.Vetting{}, errs.Validationf("office is required")
	}

	state := strings.TrimSpace(input.State)
	if state != "" {
		code, _ := domainaudit.ResolveState(state)
		if code == "" {
			return ports.Vetting{}, errs.Validationf("unknown state %q", input.State)
		}
		state = code
	}

	opponents := make([]ports.Opponent, 0, len(input.Opponents))
	for _, opponent := range input.Opponents {
		opponentName := strings.TrimSpace(opponent.Name)
		if opponentName == "" {
			return ports.Vetting{}, errs.Validationf("opponent name is required")
		}
		opponents = append(opponents, ports.Opponent{
			Name:       opponentName,
			Party:      strings.TrimSpace(opponent.Party),
			Incumbent:  opponent.Incumbent,
			Background: strings.TrimSpace(opponent.Background),
		})
	}

	now := s.nowString()
	var created ports.Vetting
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if input.CommitteeID != nil {
			if _, err := s.repo.GetCommittee(txCtx, *input.CommitteeID); err != nil {
				return err
			}
		}

		vetting, err := s.repo.CreateVetting(txCtx, ports.Vetting{
			CandidateName: name,
			Office:        office,
			District:      strings.TrimSpace(input.District),
			State:         state,
			Party:         strings.TrimSpace(input.Party),
			CommitteeID:   input.CommitteeID,
			Stage:         domainvetting.StageSurveySubmitted,
			KnownURLs:     normalizeKnownURLs(input.KnownURLs),
			CreatedAt:     now,
			UpdatedAt:     now,
		}, domainvetting.SectionTypes, opponents)
		if err != nil {
			return err
		}
		created = vetting
		return nil
	}); err != nil {
		return ports.Vetting{}, err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.vetting")),
		"vetting created",
		slog.Uint64("vetting_id", created.VettingID),
		slog.Int("opponents", len(opponents)),
	)
	s.setCacheBestEffort(ctx, cacheStageKey(created.VettingID), string(created.Stage))
	return created, nil
}

func (s *Service) GetVetting(ctx context.Context, vettingID uint64) (ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return ports.Vetting{}, err
	}
	return s.repo.GetVetting(ctx, vettingID)
}

func (s *Service) ListVettings(ctx context.Context, stage string) ([]ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	filter := ports.VettingFilter{}
	if strings.TrimSpace(stage) != "" {
		parsed, err := domainvetting.ParseStage(stage)
		if err != nil {
			return nil, err
		}
		filter.Stage = parsed
	}
	return s.repo.ListVettings(ctx, filter)
}

// TransitionStage evaluates the gate for the requested move and writes it only if the stage is unchanged.
func (s *Service) TransitionStage(ctx context.Context, caps domainvetting.Capabilities, input TransitionStageInput) (ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return ports.Vetting{}, err
	}
	if !caps.CanTransitionStage() {
		return ports.Vetting{}, permissionDenied("transition stages")
	}

	to, err := domainvetting.ParseStage(input.To)
	if err != nil {
		return ports.Vetting{}, err
	}

	now := s.nowString()
	var from domainvetting.Stage
	var updated ports.Vetting
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vetting, err := s.repo.GetVetting(txCtx, input.VettingID)
		if err != nil {
			return err
		}
		from = vetting.Stage

		if !domainvetting.IsValidStageTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", domainvetting.ErrInvalidStageTransition, from, to)
		}

		sections, err := s.repo.ListSections(txCtx, vetting.VettingID)
		if err != nil {
			return err
		}
		if ok, reason := domainvetting.CanAdvanceStage(from, to, gateInput(vetting, sections)); !ok {
			return fmt.Errorf("%w: %s", domainvetting.ErrStageGate, reason)
		}

		moved, err := s.repo.CompareAndSetStage(txCtx, vetting.VettingID, from, to, now)
		if err != nil {
			return err
		}
		if !moved {
			return errs.Conflictf("vetting %d left stage %s before the transition was written", vetting.VettingID, from)
		}

		vetting.Stage = to
		vetting.UpdatedAt = now
		updated = vetting
		return nil
	}); err != nil {
		return ports.Vetting{}, err
	}

	logging.Info(
		logging.WithVetting(logging.WithComponent(ctx, "usecase.vetting"), updated.VettingID),
		"vetting stage changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	s.setCacheBestEffort(ctx, cacheStageKey(updated.VettingID), string(to))
	s.publishBestEffort(ctx, ports.SubjectStageChanged, ports.StageChangedEvent{
		VettingID: updated.VettingID,
		From:      from,
		To:        to,
		ActorID:   caps.MemberID,
		Source:    "manual",
		ChangedAt: now,
	})
	return updated, nil
}

// CachedStage returns the last known stage, falling back to the repository.
func (s *Service) CachedStage(ctx context.Context, vettingID uint64) (domainvetting.Stage, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	if s.cache != nil {
		if value, found, err := s.cache.Get(ctx, cacheStageKey(vettingID)); err == nil && found {
			if stage, err := domainvetting.ParseStage(value); err == nil {
				return stage, nil
			}
		}
	}

	vetting, err := s.repo.GetVetting(ctx, vettingID)
	if err != nil {
		return "", err
	}
	s.setCacheBestEffort(ctx, cacheStageKey(vettingID), string(vetting.Stage))
	return vetting.Stage, nil
}

func (s *Service) SetRecommendation(ctx context.Context, caps domainvetting.Capabilities, vettingID uint64, recommendation string) (ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return ports.Vetting{}, err
	}
	if !caps.CanRecommend() {
		return ports.Vetting{}, permissionDenied("record recommendations")
	}

	outcome, err := domainvetting.ParseOutcome(recommendation)
	if err != nil {
		return ports.Vetting{}, err
	}

	now := s.nowString()
	var updated ports.Vetting
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vetting, err := s.repo.GetVetting(txCtx, vettingID)
		if err != nil {
			return err
		}
		if vetting.Stage != domainvetting.StageCommitteeReview {
			return errs.Validationf("recommendation can only be recorded in %s, vetting is in %s", domainvetting.StageCommitteeReview, vetting.Stage)
		}
		if vetting.Recommendation != nil {
			return errs.Conflictf("vetting %d already has recommendation %s", vettingID, *vetting.Recommendation)
		}
		if err := s.repo.SetRecommendation(txCtx, vettingID, outcome, now); err != nil {
			return err
		}
		vetting.Recommendation = &outcome
		vetting.UpdatedAt = now
		updated = vetting
		return nil
	}); err != nil {
		return ports.Vetting{}, err
	}
	return updated, nil
}

func (s *Service) RecordInterview(ctx context.Context, caps domainvetting.Capabilities, input RecordInterviewInput) (ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return ports.Vetting{}, err
	}
	if !caps.CanRecommend() {
		return ports.Vetting{}, permissionDenied("record interviews")
	}

	date, err := parseInterviewDate(input.Date)
	if err != nil {
		return ports.Vetting{}, err
	}
	notes := strings.TrimSpace(input.Notes)

	now := s.nowString()
	var updated ports.Vetting
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vetting, err := s.repo.GetVetting(txCtx, input.VettingID)
		if err != nil {
			return err
		}
		if vetting.Stage != domainvetting.StageInterview {
			return errs.Validationf("interview can only be recorded in %s, vetting is in %s", domainvetting.StageInterview, vetting.Stage)
		}
		if err := s.repo.SetInterview(txCtx, vetting.VettingID, date, notes, now); err != nil {
			return err
		}
		vetting.InterviewDate = &date
		vetting.InterviewNotes = notes
		vetting.UpdatedAt = now
		updated = vetting
		return nil
	}); err != nil {
		return ports.Vetting{}, err
	}
	return updated, nil
}

func (s *Service) AddOpponent(ctx context.Context, caps domainvetting.Capabilities, vettingID uint64, input OpponentInput) (ports.Opponent, error) {
	if err := s.check(ctx); err != nil {
		return ports.Opponent{}, err
	}
	if !caps.CanManageOpponents() {
		return ports.Opponent{}, permissionDenied("manage opponents")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ports.Opponent{}, errs.Validationf("opponent name is required")
	}

	var created ports.Opponent
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetVetting(txCtx, vettingID); err != nil {
			return err
		}
		opponent, err := s.repo.CreateOpponent(txCtx, ports.Opponent{
			VettingID:  vettingID,
			Name:       name,
			Party:      strings.TrimSpace(input.Party),
			Incumbent:  input.Incumbent,
			Background: strings.TrimSpace(input.Background),
			CreatedAt:  s.nowString(),
		})
		if err != nil {
			return err
		}
		created = opponent
		return nil
	}); err != nil {
		return ports.Opponent{}, err
	}
	return created, nil
}

func (s *Service) ListOpponents(ctx context.Context, vettingID uint64) ([]ports.Opponent, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetVetting(ctx, vettingID); err != nil {
		return nil, err
	}
	return s.repo.ListOpponents(ctx, vettingID)
}

func gateInput(vetting ports.Vetting, sections []ports.ReportSection) domainvetting.GateInput {
	states := make([]domainvetting.SectionState, 0, len(sections))
	for _, section := range sections {
		states = append(states, domainvetting.SectionState{Type: section.SectionType, Status: section.Status})
	}
	return domainvetting.GateInput{
		Sections:          states,
		HasRecommendation: vetting.Recommendation != nil,
		HasResult:         vetting.EndorsementResult != nil,
	}
}

// normalizeKnownURLs trims and drops duplicates by the audit dedup key, keeping first spelling.
func normalizeKnownURLs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		key := domainaudit.DedupKey(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

func parseInterviewDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.Validationf("interview date is required")
	}
	if parsed, err := time.Parse(time.DateOnly, raw); err == nil {
		return parsed.Format(time.DateOnly), nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC().Format(time.RFC3339), nil
	}
	return "", errs.Validationf("interview date %q must be YYYY-MM-DD or RFC3339", raw)
}
