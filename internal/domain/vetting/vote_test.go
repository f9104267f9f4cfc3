package vetting

import "testing"

func TestEndorsementResult(t *testing.T) {
	testCases := []struct {
		name  string
		tally Tally
		want  Outcome
	}{
		{name: "tie", tally: Tally{Endorse: 3, DoNotEndorse: 3}, want: OutcomeNoPosition},
		{name: "all abstain", tally: Tally{Abstain: 5}, want: OutcomeNoPosition},
		{name: "endorse wins", tally: Tally{Endorse: 4, DoNotEndorse: 2, NoPosition: 1}, want: OutcomeEndorse},
		{name: "do not endorse wins", tally: Tally{Endorse: 1, DoNotEndorse: 2}, want: OutcomeDoNotEndorse},
		{name: "three way tie", tally: Tally{Endorse: 2, DoNotEndorse: 2, NoPosition: 2}, want: OutcomeNoPosition},
		{name: "no position wins", tally: Tally{NoPosition: 3, Endorse: 1}, want: OutcomeNoPosition},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := EndorsementResult(testCase.tally); got != testCase.want {
				t.Fatalf("EndorsementResult(%+v) = %s, want %s", testCase.tally, got, testCase.want)
			}
		})
	}
}

func TestTallyVotesIgnoresAbstainForResult(t *testing.T) {
	tally := TallyVotes([]VoteChoice{VoteEndorse, VoteAbstain, VoteAbstain, VoteAbstain, VoteDoNotEndorse, VoteEndorse})
	if tally.Endorse != 2 || tally.DoNotEndorse != 1 || tally.Abstain != 3 {
		t.Fatalf("TallyVotes() = %+v", tally)
	}
	if got := EndorsementResult(tally); got != OutcomeEndorse {
		t.Fatalf("EndorsementResult() = %s", got)
	}
}

func TestParseVoteChoice(t *testing.T) {
	if _, err := ParseVoteChoice("maybe"); err == nil {
		t.Fatalf("ParseVoteChoice(maybe) expected error")
	}
	if got, err := ParseVoteChoice("ABSTAIN"); err != nil || got != VoteAbstain {
		t.Fatalf("ParseVoteChoice(ABSTAIN) = %s, %v", got, err)
	}
}
