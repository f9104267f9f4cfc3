package audit

import (
	"math"
	"testing"
)

func cleanPlatform(url string) ScoredPlatform {
	return perfectPlatform(url)
}

func TestAssessRiskClean(t *testing.T) {
	got := AssessRisk([]ScoredPlatform{cleanPlatform("https://janedoe.com")})
	if got.Overall != 0 || got.Level != SeverityNone || len(got.Risks) != 0 {
		t.Fatalf("AssessRisk(clean) = %+v", got)
	}
}

func TestAssessRiskSingleCategory(t *testing.T) {
	testCases := []struct {
		name      string
		platforms func() []ScoredPlatform
		category  RiskCategory
		points    float64
		overall   float64
	}{
		{
			name: "security unencrypted",
			platforms: func() []ScoredPlatform {
				return []ScoredPlatform{cleanPlatform("http://janedoe.com")}
			},
			category: RiskSecurity, points: 25, overall: 7.5,
		},
		{
			name: "consistency below one",
			platforms: func() []ScoredPlatform {
				p := cleanPlatform("https://janedoe.com")
				p.Score.Consistency = 0.5
				return []ScoredPlatform{p}
			},
			category: RiskConsistency, points: 30, overall: 7.5,
		},
		{
			name: "consistency below two",
			platforms: func() []ScoredPlatform {
				p := cleanPlatform("https://janedoe.com")
				p.Score.Consistency = 1
				return []ScoredPlatform{p}
			},
			category: RiskConsistency, points: 15, overall: 3.75,
		},
		{
			name: "abandonment one inactive",
			platforms: func() []ScoredPlatform {
				p := cleanPlatform("https://janedoe.com")
				p.Signals.IsActive = false
				p.Signals.RecentlyActive = false
				return []ScoredPlatform{p}
			},
			category: RiskAbandonment, points: 20, overall: 4,
		},
		{
			name: "reputation low quality",
			platforms: func() []ScoredPlatform {
				a := cleanPlatform("https://janedoe.com")
				b := cleanPlatform("https://janedoe.org")
				a.Score.Quality = 1
				b.Score.Quality = 0
				return []ScoredPlatform{a, b}
			},
			category: RiskReputation, points: 20, overall: 3,
		},
		{
			name: "compliance missing contact",
			platforms: func() []ScoredPlatform {
				p := cleanPlatform("https://janedoe.com")
				p.Signals.HasContactInfo = false
				return []ScoredPlatform{p}
			},
			category: RiskCompliance, points: 20, overall: 2,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := AssessRisk(testCase.platforms())
			for category, score := range got.Categories {
				if category == testCase.category {
					if score != testCase.points {
						t.Fatalf("%s = %v, want %v", category, score, testCase.points)
					}
					continue
				}
				if score != 0 {
					t.Fatalf("%s = %v, want 0", category, score)
				}
			}
			if math.Abs(got.Overall-testCase.overall) > 1e-9 {
				t.Fatalf("overall = %v, want %v", got.Overall, testCase.overall)
			}
			if len(got.Risks) != 1 || got.Risks[0].Description == "" || got.Risks[0].Mitigation == "" {
				t.Fatalf("risks = %+v", got.Risks)
			}
		})
	}
}

func TestAssessRiskAllCategories(t *testing.T) {
	platforms := make([]ScoredPlatform, 0, 3)
	for _, url := range []string{"http://facebook.com/jd", "http://x.com/jd", "http://instagram.com/jd"} {
		platforms = append(platforms, ScoredPlatform{
			URL:            url,
			Classification: Classification{PlatformType: "facebook", Category: CategorySocialMedia},
			Confidence:     Confidence{Score: 0.1, Level: ConfidenceNone},
		})
	}

	got := AssessRisk(platforms)
	want := map[RiskCategory]float64{
		RiskSecurity:    90,
		RiskConsistency: 30,
		RiskAbandonment: 40,
		RiskReputation:  65,
		RiskCompliance:  20,
	}
	for category, points := range want {
		if got.Categories[category] != points {
			t.Fatalf("%s = %v, want %v", category, got.Categories[category], points)
		}
	}
	if math.Abs(got.Overall-54.25) > 1e-9 {
		t.Fatalf("overall = %v, want 54.25", got.Overall)
	}
	if got.Level != SeverityMedium {
		t.Fatalf("level = %s", got.Level)
	}
	if math.Abs(WeightedRisk(got.Categories)-got.Overall) > 1e-9 {
		t.Fatalf("overall is not the weighted sum of categories")
	}
}

func TestAssessRiskCapsCategoryBeforeWeighting(t *testing.T) {
	platforms := make([]ScoredPlatform, 0, 5)
	for _, url := range []string{"http://a.com", "http://b.com", "http://c.com", "http://d.com", "http://e.com"} {
		platforms = append(platforms, cleanPlatform(url))
	}
	got := AssessRisk(platforms)
	if got.Categories[RiskSecurity] != 100 {
		t.Fatalf("security = %v, want capped 100", got.Categories[RiskSecurity])
	}
	if got.Overall != 30 || got.Level != SeverityLow {
		t.Fatalf("overall = %v level = %s", got.Overall, got.Level)
	}
}

func TestSeverityFor(t *testing.T) {
	testCases := map[float64]Severity{80: SeverityCritical, 79.9: SeverityHigh, 60: SeverityHigh, 40: SeverityMedium, 20: SeverityLow, 19.99: SeverityNone}
	for score, want := range testCases {
		if got := SeverityFor(score); got != want {
			t.Fatalf("SeverityFor(%v) = %s, want %s", score, got, want)
		}
	}
}

func TestAuditStatusTransitions(t *testing.T) {
	if !CanTransitionStatus(StatusPending, StatusRunning) || !CanTransitionStatus(StatusRunning, StatusFailed) {
		t.Fatalf("forward audit transitions rejected")
	}
	if CanTransitionStatus(StatusCompleted, StatusRunning) || CanTransitionStatus(StatusFailed, StatusCompleted) || CanTransitionStatus(StatusPending, StatusCompleted) {
		t.Fatalf("terminal or skipping audit transitions accepted")
	}
	if !StatusRunning.IsActive() || StatusCompleted.IsActive() || !StatusFailed.IsTerminal() {
		t.Fatalf("status predicates wrong")
	}
}
