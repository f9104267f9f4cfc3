package audit

import (
	"fmt"
	"math"
	"strings"
)

type RiskCategory string

const (
	RiskSecurity    RiskCategory = "security"
	RiskConsistency RiskCategory = "consistency"
	RiskAbandonment RiskCategory = "abandonment"
	RiskReputation  RiskCategory = "reputation"
	RiskCompliance  RiskCategory = "compliance"
)

var riskWeights = []struct {
	category RiskCategory
	weight   float64
}{
	{RiskSecurity, 0.30},
	{RiskConsistency, 0.25},
	{RiskAbandonment, 0.20},
	{RiskReputation, 0.15},
	{RiskCompliance, 0.10},
}

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityNone     Severity = "NONE"
)

func SeverityFor(score float64) Severity {
	switch {
	case score >= 80:
		return SeverityCritical
	case score >= 60:
		return SeverityHigh
	case score >= 40:
		return SeverityMedium
	case score >= 20:
		return SeverityLow
	default:
		return SeverityNone
	}
}

type Risk struct {
	Category    RiskCategory `json:"category"`
	Severity    Severity     `json:"severity"`
	Points      float64      `json:"points"`
	Description string       `json:"description"`
	Mitigation  string       `json:"mitigation"`
	URL         string       `json:"url,omitempty"`
}

type RiskProfile struct {
	Categories map[RiskCategory]float64 `json:"categories"`
	Overall    float64                  `json:"overall"`
	Level      Severity                 `json:"level"`
	Risks      []Risk                   `json:"risks"`
}

type riskAccumulator struct {
	scores map[RiskCategory]float64
	risks  []Risk
}

func (a *riskAccumulator) add(risk Risk) {
	a.scores[risk.Category] += risk.Points
	a.risks = append(a.risks, risk)
}

// AssessRisk derives the weighted risk profile for one person's scored platforms.
func AssessRisk(platforms []ScoredPlatform) RiskProfile {
	acc := &riskAccumulator{scores: make(map[RiskCategory]float64, len(riskWeights))}

	assessSecurity(acc, platforms)
	assessConsistency(acc, platforms)
	assessAbandonment(acc, platforms)
	assessReputation(acc, platforms)
	assessCompliance(acc, platforms)

	profile := RiskProfile{
		Categories: make(map[RiskCategory]float64, len(riskWeights)),
		Risks:      acc.risks,
	}
	for _, entry := range riskWeights {
		profile.Categories[entry.category] = clamp(acc.scores[entry.category], 0, 100)
	}
	profile.Overall = WeightedRisk(profile.Categories)
	profile.Level = SeverityFor(profile.Overall)
	if profile.Risks == nil {
		profile.Risks = []Risk{}
	}
	return profile
}

func assessSecurity(acc *riskAccumulator, platforms []ScoredPlatform) {
	hasWebsite := false
	for _, platform := range platforms {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(platform.URL)), "http://") {
			acc.add(Risk{
				Category:    RiskSecurity,
				Severity:    SeverityHigh,
				Points:      25,
				Description: "Platform is served without encryption (HTTP)",
				Mitigation:  "Enable HTTPS and redirect all HTTP traffic",
				URL:         platform.URL,
			})
		}
		switch platform.Classification.Category {
		case CategoryCampaignWebsite, CategoryWebsite:
			hasWebsite = true
		}
	}
	if !hasWebsite {
		acc.add(Risk{
			Category:    RiskSecurity,
			Severity:    SeverityMedium,
			Points:      15,
			Description: "No distinguishable campaign website; identity rests on third-party platforms",
			Mitigation:  "Register an official campaign domain and link it from every profile",
		})
	}
}

func assessConsistency(acc *riskAccumulator, platforms []ScoredPlatform) {
	if len(platforms) == 0 {
		return
	}
	sum := 0.0
	for _, platform := range platforms {
		sum += platform.Score.Consistency
	}
	average := sum / float64(len(platforms))
	switch {
	case average < 1:
		acc.add(Risk{
			Category:    RiskConsistency,
			Severity:    SeverityHigh,
			Points:      30,
			Description: fmt.Sprintf("Branding and messaging are inconsistent across platforms (average %.1f/3)", average),
			Mitigation:  "Align names, handles, logos and core message across every platform",
		})
	case average < 2:
		acc.add(Risk{
			Category:    RiskConsistency,
			Severity:    SeverityMedium,
			Points:      15,
			Description: fmt.Sprintf("Branding and messaging are partially consistent (average %.1f/3)", average),
			Mitigation:  "Standardise profile names and reuse the campaign logo",
		})
	}
}

func assessAbandonment(acc *riskAccumulator, platforms []ScoredPlatform) {
	inactive := 0
	for _, platform := range platforms {
		if !platform.Active() {
			inactive++
		}
	}
	switch {
	case inactive >= 3:
		acc.add(Risk{
			Category:    RiskAbandonment,
			Severity:    SeverityHigh,
			Points:      40,
			Description: fmt.Sprintf("%d platforms show no recent activity", inactive),
			Mitigation:  "Archive abandoned accounts or resume regular posting",
		})
	case inactive >= 1:
		acc.add(Risk{
			Category:    RiskAbandonment,
			Severity:    SeverityLow,
			Points:      20,
			Description: fmt.Sprintf("%d platform(s) show no recent activity", inactive),
			Mitigation:  "Post an update or point the profile at an active channel",
		})
	}
}

func assessReputation(acc *riskAccumulator, platforms []ScoredPlatform) {
	lowQuality := 0
	for _, platform := range platforms {
		if platform.Score.Quality <= 1 {
			lowQuality++
		}
		if platform.Confidence.Score < 0.3 {
			acc.add(Risk{
				Category:    RiskReputation,
				Severity:    SeverityMedium,
				Points:      15,
				Description: "Platform attributed with low confidence; possible impersonation or namesake",
				Mitigation:  "Verify ownership and claim or report the profile",
				URL:         platform.URL,
			})
		}
	}
	if lowQuality >= 2 {
		acc.add(Risk{
			Category:    RiskReputation,
			Severity:    SeverityMedium,
			Points:      20,
			Description: fmt.Sprintf("%d platforms present low-quality content", lowQuality),
			Mitigation:  "Refresh bios, imagery and pinned content on weak platforms",
		})
	}
}

func assessCompliance(acc *riskAccumulator, platforms []ScoredPlatform) {
	if len(platforms) == 0 {
		return
	}
	missing := 0
	for _, platform := range platforms {
		if !platform.Signals.HasContactInfo {
			missing++
		}
	}
	if float64(missing) > float64(len(platforms))/2 {
		acc.add(Risk{
			Category:    RiskCompliance,
			Severity:    SeverityMedium,
			Points:      20,
			Description: fmt.Sprintf("%d of %d platforms lack contact information", missing, len(platforms)),
			Mitigation:  "Publish a campaign email or phone and the required disclaimer on each platform",
		})
	}
}

// WeightedRisk combines already-capped category scores with the fixed weights.
func WeightedRisk(categories map[RiskCategory]float64) float64 {
	total := 0.0
	for _, entry := range riskWeights {
		total += math.Max(0, math.Min(100, categories[entry.category])) * entry.weight
	}
	return round2(total)
}
