package vetting

import (
	"context"
	"strings"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

type BoardTally struct {
	VettingID uint64
	Tally     domainvetting.Tally
	Result    domainvetting.Outcome
	Votes     int
	Finalized *domainvetting.Outcome
}

// StageColumn groups the vettings currently sitting in one stage.
type StageColumn struct {
	Stage    domainvetting.Stage
	Vettings []ports.Vetting
}

func (s *Service) RecordBoardVote(ctx context.Context, caps domainvetting.Capabilities, input RecordBoardVoteInput) (ports.BoardVote, error) {
	if err := s.check(ctx); err != nil {
		return ports.BoardVote{}, err
	}
	if !caps.CanVote() {
		return ports.BoardVote{}, permissionDenied("vote on endorsements")
	}
	if caps.MemberID == 0 {
		return ports.BoardVote{}, errs.Validationf("voter id is required")
	}

	choice, err := domainvetting.ParseVoteChoice(input.Vote)
	if err != nil {
		return ports.BoardVote{}, err
	}

	var created ports.BoardVote
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vetting, err := s.repo.GetVetting(txCtx, input.VettingID)
		if err != nil {
			return err
		}
		if vetting.Stage != domainvetting.StageBoardVote {
			return errs.Validationf("votes can only be recorded in %s, vetting is in %s", domainvetting.StageBoardVote, vetting.Stage)
		}
		if vetting.EndorsementResult != nil {
			return errs.Conflictf("vetting %d endorsement is already finalized", vetting.VettingID)
		}

		vote, err := s.repo.CreateBoardVote(txCtx, ports.BoardVote{
			VettingID: vetting.VettingID,
			VoterID:   caps.MemberID,
			Vote:      choice,
			Comment:   strings.TrimSpace(input.Comment),
			CreatedAt: s.nowString(),
		})
		if err != nil {
			return err
		}
		created = vote
		return nil
	}); err != nil {
		return ports.BoardVote{}, err
	}
	return created, nil
}

func (s *Service) GetBoardTally(ctx context.Context, vettingID uint64) (BoardTally, error) {
	if err := s.check(ctx); err != nil {
		return BoardTally{}, err
	}

	vetting, err := s.repo.GetVetting(ctx, vettingID)
	if err != nil {
		return BoardTally{}, err
	}
	return s.tally(ctx, vetting)
}

// FinalizeEndorsement stores the tally result. It can only happen once per vetting.
func (s *Service) FinalizeEndorsement(ctx context.Context, caps domainvetting.Capabilities, vettingID uint64) (ports.Vetting, error) {
	if err := s.check(ctx); err != nil {
		return ports.Vetting{}, err
	}
	if !caps.CanFinalizeEndorsement() {
		return ports.Vetting{}, permissionDenied("finalize endorsements")
	}

	now := s.nowString()
	var updated ports.Vetting
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vetting, err := s.repo.GetVetting(txCtx, vettingID)
		if err != nil {
			return err
		}
		if vetting.Stage != domainvetting.StageBoardVote {
			return errs.Validationf("endorsement can only be finalized in %s, vetting is in %s", domainvetting.StageBoardVote, vetting.Stage)
		}
		if vetting.EndorsementResult != nil {
			return errs.Conflictf("vetting %d endorsement is already finalized", vettingID)
		}

		tally, err := s.tally(txCtx, vetting)
		if err != nil {
			return err
		}
		set, err := s.repo.SetEndorsementResult(txCtx, vettingID, tally.Result, now)
		if err != nil {
			return err
		}
		if !set {
			return errs.Conflictf("vetting %d endorsement is already finalized", vettingID)
		}

		result := tally.Result
		vetting.EndorsementResult = &result
		vetting.UpdatedAt = now
		updated = vetting
		return nil
	}); err != nil {
		return ports.Vetting{}, err
	}
	return updated, nil
}

// PipelineBoard returns every stage in order with the vettings currently in it.
func (s *Service) PipelineBoard(ctx context.Context) ([]StageColumn, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	vettings, err := s.repo.ListVettings(ctx, ports.VettingFilter{})
	if err != nil {
		return nil, err
	}

	byStage := make(map[domainvetting.Stage][]ports.Vetting, len(domainvetting.Stages))
	for _, vetting := range vettings {
		byStage[vetting.Stage] = append(byStage[vetting.Stage], vetting)
	}

	columns := make([]StageColumn, 0, len(domainvetting.Stages))
	for _, stage := range domainvetting.Stages {
		columns = append(columns, StageColumn{Stage: stage, Vettings: byStage[stage]})
	}
	return columns, nil
}

func (s *Service) tally(ctx context.Context, vetting ports.Vetting) (BoardTally, error) {
	votes, err := s.repo.ListBoardVotes(ctx, vetting.VettingID)
	if err != nil {
		return BoardTally{}, err
	}

	choices := make([]domainvetting.VoteChoice, 0, len(votes))
	for _, vote := range votes {
		choices = append(choices, vote.Vote)
	}
	tally := domainvetting.TallyVotes(choices)
	return BoardTally{
		VettingID: vetting.VettingID,
		Tally:     tally,
		Result:    domainvetting.EndorsementResult(tally),
		Votes:     len(votes),
		Finalized: vetting.EndorsementResult,
	}, nil
}
