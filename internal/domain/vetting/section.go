package vetting

import (
	"fmt"
	"strings"
)

type SectionType string

const (
	SectionExecutiveSummary    SectionType = "executive_summary"
	SectionCandidateBackground SectionType = "candidate_background"
	SectionOpponentResearch    SectionType = "opponent_research"
	SectionDistrictData        SectionType = "district_data"
	SectionVotingRules         SectionType = "voting_rules"
	SectionDigitalPresence     SectionType = "digital_presence"
	SectionInterviewSummary    SectionType = "interview_summary"
)

// SectionTypes is the fixed set; one section row per type is created with each vetting.
var SectionTypes = []SectionType{
	SectionExecutiveSummary,
	SectionCandidateBackground,
	SectionOpponentResearch,
	SectionDistrictData,
	SectionVotingRules,
	SectionDigitalPresence,
	SectionInterviewSummary,
}

func ParseSectionType(raw string) (SectionType, error) {
	candidate := SectionType(strings.ToLower(strings.TrimSpace(raw)))
	for _, sectionType := range SectionTypes {
		if sectionType == candidate {
			return sectionType, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSectionType, raw)
}

type SectionStatus string

const (
	SectionStatusNotStarted    SectionStatus = "not_started"
	SectionStatusAssigned      SectionStatus = "assigned"
	SectionStatusInProgress    SectionStatus = "in_progress"
	SectionStatusCompleted     SectionStatus = "completed"
	SectionStatusNeedsRevision SectionStatus = "needs_revision"
)

var SectionStatuses = []SectionStatus{
	SectionStatusNotStarted,
	SectionStatusAssigned,
	SectionStatusInProgress,
	SectionStatusCompleted,
	SectionStatusNeedsRevision,
}

type SectionTransition struct {
	From SectionStatus
	To   SectionStatus
}

var sectionTransitions = []SectionTransition{
	{From: SectionStatusNotStarted, To: SectionStatusAssigned},
	{From: SectionStatusNotStarted, To: SectionStatusInProgress},
	{From: SectionStatusAssigned, To: SectionStatusInProgress},
	{From: SectionStatusInProgress, To: SectionStatusCompleted},
	{From: SectionStatusInProgress, To: SectionStatusNeedsRevision},
	{From: SectionStatusCompleted, To: SectionStatusNeedsRevision},
	{From: SectionStatusNeedsRevision, To: SectionStatusInProgress},
}

func SectionTransitions() []SectionTransition {
	out := make([]SectionTransition, len(sectionTransitions))
	copy(out, sectionTransitions)
	return out
}

func ParseSectionStatus(raw string) (SectionStatus, error) {
	candidate := SectionStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range SectionStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSectionStatus, raw)
}

func IsValidSectionTransition(from SectionStatus, to SectionStatus) bool {
	for _, transition := range sectionTransitions {
		if transition.From == from && transition.To == to {
			return true
		}
	}
	return false
}

// StatusAfterAssignment is the status a section takes when a member is assigned to it.
func StatusAfterAssignment(current SectionStatus) SectionStatus {
	if current == SectionStatusNotStarted {
		return SectionStatusAssigned
	}
	return current
}

// EffectiveContent prefers the human-reviewed content and falls back to the AI draft.
func EffectiveContent(reviewedData string, aiDraftData string) string {
	if strings.TrimSpace(reviewedData) != "" {
		return reviewedData
	}
	return aiDraftData
}
