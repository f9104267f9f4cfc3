package vetting

import (
	"fmt"
	"sort"
	"strings"
)

type VoteChoice string

const (
	VoteEndorse      VoteChoice = "endorse"
	VoteDoNotEndorse VoteChoice = "do_not_endorse"
	VoteNoPosition   VoteChoice = "no_position"
	VoteAbstain      VoteChoice = "abstain"
)

func ParseVoteChoice(raw string) (VoteChoice, error) {
	switch candidate := VoteChoice(strings.ToLower(strings.TrimSpace(raw))); candidate {
	case VoteEndorse, VoteDoNotEndorse, VoteNoPosition, VoteAbstain:
		return candidate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVote, raw)
	}
}

// Outcome is both a committee recommendation and a finalized board result.
type Outcome string

const (
	OutcomeEndorse      Outcome = "endorse"
	OutcomeDoNotEndorse Outcome = "do_not_endorse"
	OutcomeNoPosition   Outcome = "no_position"
)

func ParseOutcome(raw string) (Outcome, error) {
	switch candidate := Outcome(strings.ToLower(strings.TrimSpace(raw))); candidate {
	case OutcomeEndorse, OutcomeDoNotEndorse, OutcomeNoPosition:
		return candidate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRecommendation, raw)
	}
}

type Tally struct {
	Endorse      int `json:"endorse"`
	DoNotEndorse int `json:"do_not_endorse"`
	NoPosition   int `json:"no_position"`
	Abstain      int `json:"abstain"`
}

func TallyVotes(votes []VoteChoice) Tally {
	var tally Tally
	for _, vote := range votes {
		switch vote {
		case VoteEndorse:
			tally.Endorse++
		case VoteDoNotEndorse:
			tally.DoNotEndorse++
		case VoteNoPosition:
			tally.NoPosition++
		case VoteAbstain:
			tally.Abstain++
		}
	}
	return tally
}

// EndorsementResult picks the top non-abstain bucket. No substantive votes, or a tie
// between the two leading buckets, resolves to no_position.
func EndorsementResult(tally Tally) Outcome {
	buckets := []struct {
		outcome Outcome
		count   int
	}{
		{OutcomeEndorse, tally.Endorse},
		{OutcomeDoNotEndorse, tally.DoNotEndorse},
		{OutcomeNoPosition, tally.NoPosition},
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})

	top := buckets[0]
	if top.count == 0 || top.count == buckets[1].count {
		return OutcomeNoPosition
	}
	return top.outcome
}
