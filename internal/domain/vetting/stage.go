package vetting

import (
	"fmt"
	"strings"
)

type Stage string

const (
	StageSurveySubmitted       Stage = "survey_submitted"
	StageAutoAudit             Stage = "auto_audit"
	StageAssigned              Stage = "assigned"
	StageResearch              Stage = "research"
	StageInterview             Stage = "interview"
	StageCommitteeReview       Stage = "committee_review"
	StageBoardVote             Stage = "board_vote"
	StagePressReleaseCreated   Stage = "press_release_created"
	StagePressReleasePublished Stage = "press_release_published"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageSurveySubmitted,
	StageAutoAudit,
	StageAssigned,
	StageResearch,
	StageInterview,
	StageCommitteeReview,
	StageBoardVote,
	StagePressReleaseCreated,
	StagePressReleasePublished,
}

type StageTransition struct {
	From Stage
	To   Stage
}

var stageTransitions = []StageTransition{
	{From: StageSurveySubmitted, To: StageAutoAudit},
	{From: StageAutoAudit, To: StageAssigned},
	{From: StageAssigned, To: StageResearch},
	{From: StageResearch, To: StageInterview},
	{From: StageInterview, To: StageCommitteeReview},
	{From: StageCommitteeReview, To: StageBoardVote},
	{From: StageBoardVote, To: StagePressReleaseCreated},
	{From: StagePressReleaseCreated, To: StagePressReleasePublished},
}

// StageTransitions returns a copy of the forward adjacency table.
func StageTransitions() []StageTransition {
	out := make([]StageTransition, len(stageTransitions))
	copy(out, stageTransitions)
	return out
}

func ParseStage(raw string) (Stage, error) {
	candidate := Stage(strings.ToLower(strings.TrimSpace(raw)))
	for _, stage := range Stages {
		if stage == candidate {
			return stage, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
}

// NextStage returns the single forward target of from, if any.
func NextStage(from Stage) (Stage, bool) {
	for _, transition := range stageTransitions {
		if transition.From == from {
			return transition.To, true
		}
	}
	return "", false
}

func IsTerminalStage(stage Stage) bool {
	_, ok := NextStage(stage)
	return !ok
}

func IsValidStageTransition(from Stage, to Stage) bool {
	for _, transition := range stageTransitions {
		if transition.From == from && transition.To == to {
			return true
		}
	}
	return false
}

// RequiredResearchSections must all be completed before research → interview.
var RequiredResearchSections = []SectionType{
	SectionCandidateBackground,
	SectionOpponentResearch,
	SectionDistrictData,
	SectionVotingRules,
	SectionDigitalPresence,
}

// GateInput carries the state the stage gates read.
type GateInput struct {
	Sections          []SectionState
	HasRecommendation bool
	HasResult         bool
}

type SectionState struct {
	Type   SectionType
	Status SectionStatus
}

// CanAdvanceStage reports whether from → to is allowed. When it is not, reason explains why.
func CanAdvanceStage(from Stage, to Stage, in GateInput) (ok bool, reason string) {
	if !IsValidStageTransition(from, to) {
		return false, fmt.Sprintf("transition %s -> %s is not allowed", from, to)
	}

	switch {
	case from == StageResearch && to == StageInterview:
		missing := IncompleteRequiredSections(in.Sections)
		if len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for _, sectionType := range missing {
				names = append(names, string(sectionType))
			}
			return false, "required sections not completed: " + strings.Join(names, ", ")
		}
	case from == StageCommitteeReview && to == StageBoardVote:
		if !in.HasRecommendation {
			return false, "committee recommendation is required"
		}
	case from == StageBoardVote && to == StagePressReleaseCreated:
		if !in.HasResult {
			return false, "endorsement result has not been finalized"
		}
	}
	return true, ""
}

// IncompleteRequiredSections returns required section types that are missing or not completed.
func IncompleteRequiredSections(sections []SectionState) []SectionType {
	statusByType := make(map[SectionType]SectionStatus, len(sections))
	for _, section := range sections {
		statusByType[section.Type] = section.Status
	}

	missing := make([]SectionType, 0, len(RequiredResearchSections))
	for _, required := range RequiredResearchSections {
		if statusByType[required] != SectionStatusCompleted {
			missing = append(missing, required)
		}
	}
	return missing
}
