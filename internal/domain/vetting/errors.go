package vetting

import (
	"fmt"

	"candidatevet/internal/errs"
)

var (
	ErrInvalidStage             = fmt.Errorf("%w: invalid stage", errs.ErrValidation)
	ErrInvalidStageTransition   = fmt.Errorf("%w: invalid stage transition", errs.ErrValidation)
	ErrStageGate                = fmt.Errorf("%w: stage gate not satisfied", errs.ErrValidation)
	ErrInvalidSectionType       = fmt.Errorf("%w: invalid section type", errs.ErrValidation)
	ErrInvalidSectionStatus     = fmt.Errorf("%w: invalid section status", errs.ErrValidation)
	ErrInvalidSectionTransition = fmt.Errorf("%w: invalid section status transition", errs.ErrValidation)
	ErrInvalidVote              = fmt.Errorf("%w: invalid board vote", errs.ErrValidation)
	ErrInvalidRecommendation    = fmt.Errorf("%w: invalid recommendation", errs.ErrValidation)
	ErrInvalidCommitteeRole     = fmt.Errorf("%w: invalid committee role", errs.ErrValidation)
)
