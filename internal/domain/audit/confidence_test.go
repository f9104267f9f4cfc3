package audit

import (
	"math"
	"testing"
)

func approx(a float64, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreConfidenceCampaignDomain(t *testing.T) {
	got := ScoreConfidence(ConfidenceInput{
		URL:    "https://janedoe-for-senate.com",
		Title:  "Jane Doe for Senate",
		Name:   "Jane Doe",
		Office: "Senate",
		State:  "TX",
	})

	if !approx(got.Signals.NameMatch, 0.4) {
		t.Fatalf("name match = %v, want 0.4", got.Signals.NameMatch)
	}
	if got.Signals.OfficeMatch <= 0 || got.Signals.DomainAuthority <= 0 {
		t.Fatalf("signals = %+v", got.Signals)
	}
	if got.Level != ConfidenceHigh && got.Level != ConfidenceMedium {
		t.Fatalf("level = %s (score %v)", got.Level, got.Score)
	}
	if !approx(got.Score, 0.665) {
		t.Fatalf("score = %v, want 0.665", got.Score)
	}
}

func TestNameMatchTiers(t *testing.T) {
	testCases := []struct {
		name  string
		url   string
		title string
		want  float64
	}{
		{name: "underscore joined", url: "https://ballotpedia.org/Jane_Doe", want: 0.4},
		{name: "both separate", url: "https://example.org/profile", title: "Jane Q. Doe", want: 0.35},
		{name: "last only", url: "https://doefarms.com", title: "Doe Family Farms", want: 0.2},
		{name: "first token", url: "https://example.org", title: "Ask Jane", want: 0.1},
		{name: "none", url: "https://example.org", title: "Unrelated", want: 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := ScoreConfidence(ConfidenceInput{URL: testCase.url, Title: testCase.title, Name: "Jane Doe"})
			if !approx(got.Signals.NameMatch, testCase.want) {
				t.Fatalf("name match = %v, want %v", got.Signals.NameMatch, testCase.want)
			}
		})
	}
}

func TestOfficeAndLocationMatch(t *testing.T) {
	fullName := ScoreConfidence(ConfidenceInput{URL: "https://example.net", Title: "Jane Doe Texas Senate", Name: "Jane Doe", Office: "Senate", State: "TX"})
	if !approx(fullName.Signals.LocationMatch, 0.15) || !approx(fullName.Signals.OfficeMatch, 0.2) {
		t.Fatalf("signals = %+v", fullName.Signals)
	}

	codeToken := ScoreConfidence(ConfidenceInput{URL: "https://example.net", Title: "Jane Doe (TX) Senate", Name: "Jane Doe", Office: "Senate", State: "TX"})
	if !approx(codeToken.Signals.OfficeMatch, 0.3) || !approx(codeToken.Signals.LocationMatch, 0.08) {
		t.Fatalf("signals = %+v", codeToken.Signals)
	}

	partial := ScoreConfidence(ConfidenceInput{URL: "https://example.net", Title: "Doe joins the council race", Name: "Jane Doe", Office: "City Council"})
	if !approx(partial.Signals.OfficeMatch, 0.1) {
		t.Fatalf("partial office match = %v", partial.Signals.OfficeMatch)
	}
}

func TestDomainAuthority(t *testing.T) {
	testCases := map[string]float64{
		"ballotpedia.org":         0.1,
		"www.facebook.com":        0.09,
		"instagram.com":           0.08,
		"sos.texas.gov":           0.09,
		"electjane.org":           0.06,
		"janedoe.com":             0.05,
		"jane.example.net":        0.03,
		"inbox.com":               0.05,
		"m.youtube.com":           0.08,
		"justfacts.votesmart.org": 0.1,
	}
	for host, want := range testCases {
		if got := domainAuthority(host); !approx(got, want) {
			t.Fatalf("domainAuthority(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestContentSignalsCap(t *testing.T) {
	got := contentSignals("vote elect campaign senate congress candidate district")
	if !approx(got, 0.05) {
		t.Fatalf("contentSignals() = %v, want 0.05", got)
	}
	if got := contentSignals("campaign"); !approx(got, 0.015) {
		t.Fatalf("contentSignals(one) = %v", got)
	}
}

func TestConfidenceLevelFor(t *testing.T) {
	testCases := map[float64]ConfidenceLevel{
		0.7: ConfidenceHigh, 0.69: ConfidenceMedium, 0.5: ConfidenceMedium,
		0.3: ConfidenceLow, 0.29: ConfidenceNone, 0: ConfidenceNone,
	}
	for score, want := range testCases {
		if got := ConfidenceLevelFor(score); got != want {
			t.Fatalf("ConfidenceLevelFor(%v) = %s, want %s", score, got, want)
		}
	}
}

func TestScoreConfidenceClamped(t *testing.T) {
	got := ScoreConfidence(ConfidenceInput{
		URL:    "https://ballotpedia.org/Jane_Doe_Texas_Senate_TX",
		Title:  "Jane Doe - Texas State Senate candidate, vote, campaign, district, election",
		Name:   "Jane Doe",
		Office: "Texas State Senate",
		State:  "TX",
	})
	if got.Score > 1 || got.Level != ConfidenceHigh {
		t.Fatalf("confidence = %+v", got)
	}
}
