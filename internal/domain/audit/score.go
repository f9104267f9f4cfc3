package audit

import "math"

type ContentQuality string

const (
	ContentQualityGood ContentQuality = "good"
	ContentQualityFair ContentQuality = "fair"
	ContentQualityPoor ContentQuality = "poor"
)

// PlatformSignals are the observable facts one platform is scored on.
type PlatformSignals struct {
	HasProfile               bool           `json:"has_profile"`
	IsActive                 bool           `json:"is_active"`
	RecentlyActive           bool           `json:"recently_active"`
	HasLogo                  bool           `json:"has_logo"`
	NamingConsistent         bool           `json:"naming_consistent"`
	MessagingConsistent      bool           `json:"messaging_consistent"`
	LogoConsistent           bool           `json:"logo_consistent"`
	ContentQuality           ContentQuality `json:"content_quality"`
	ProfessionalPresentation bool           `json:"professional_presentation"`
	HasContactInfo           bool           `json:"has_contact_info"`
	HasEmail                 bool           `json:"has_email"`
	HasPhone                 bool           `json:"has_phone"`
	HasWebsite               bool           `json:"has_website"`
}

type PlatformScore struct {
	Presence      float64 `json:"presence"`
	Consistency   float64 `json:"consistency"`
	Quality       float64 `json:"quality"`
	Accessibility float64 `json:"accessibility"`
	Total         int     `json:"total"`
	Grade         string  `json:"grade"`
}

func ScorePlatform(in PlatformSignals) PlatformScore {
	presence := 0.0
	if in.HasProfile {
		presence++
	}
	if in.IsActive || in.RecentlyActive {
		presence++
	}
	if in.HasLogo {
		presence++
	}

	consistency := 0.0
	if in.NamingConsistent {
		consistency++
	}
	if in.MessagingConsistent {
		consistency++
	}
	if in.LogoConsistent {
		consistency++
	}

	quality := 0.0
	switch in.ContentQuality {
	case ContentQualityGood:
		quality += 2
	case ContentQualityFair:
		quality++
	}
	if in.ProfessionalPresentation {
		quality++
	}

	accessibility := 0.0
	if in.HasContactInfo {
		accessibility++
	}
	methods := 0
	for _, present := range []bool{in.HasEmail, in.HasPhone, in.HasWebsite} {
		if present {
			methods++
		}
	}
	switch {
	case methods >= 3:
		accessibility += 2
	case methods >= 2:
		accessibility++
	}

	score := PlatformScore{
		Presence:      clamp(presence, 0, 3),
		Consistency:   clamp(consistency, 0, 3),
		Quality:       clamp(quality, 0, 3),
		Accessibility: clamp(accessibility, 0, 3),
	}
	score.Total = int(math.Round(score.Presence + score.Consistency + score.Quality + score.Accessibility))
	score.Grade = PlatformGrade(score.Total)
	return score
}

func PlatformGrade(total int) string {
	switch {
	case total >= 11:
		return "A"
	case total >= 9:
		return "B"
	case total >= 7:
		return "C"
	case total >= 5:
		return "D"
	default:
		return "F"
	}
}

// ScoredPlatform is one classified, scored URL.
type ScoredPlatform struct {
	URL            string          `json:"url"`
	Title          string          `json:"title"`
	Classification Classification  `json:"classification"`
	Confidence     Confidence      `json:"confidence"`
	Signals        PlatformSignals `json:"signals"`
	Score          PlatformScore   `json:"score"`
}

func (p ScoredPlatform) Active() bool {
	return p.Signals.IsActive || p.Signals.RecentlyActive
}

// OpponentSummary is what the overall score needs from one opponent's audit.
type OpponentSummary struct {
	Name          string  `json:"name"`
	PlatformCount int     `json:"platform_count"`
	AverageScore  float64 `json:"average_score"`
}

type ScoreBreakdown struct {
	DigitalPresence        float64 `json:"digital_presence"`
	CampaignConsistency    float64 `json:"campaign_consistency"`
	CommunicationQuality   float64 `json:"communication_quality"`
	VoterAccessibility     float64 `json:"voter_accessibility"`
	CompetitivePositioning float64 `json:"competitive_positioning"`
}

type OverallScore struct {
	Score     int            `json:"score"`
	Grade     string         `json:"grade"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

const maxCountedPlatforms = 10

// ScoreOverall computes the 0–100 candidate score. Opponents feed only the
// competitive positioning component; an empty opponents slice keeps its baseline.
func ScoreOverall(platforms []ScoredPlatform, opponents []OpponentSummary) OverallScore {
	if len(platforms) == 0 {
		return OverallScore{Score: 0, Grade: OverallGrade(0)}
	}

	count := float64(len(platforms))
	active, scored := 0, 0
	var consistency, quality, accessibility, totals float64
	for _, platform := range platforms {
		if platform.Active() {
			active++
		}
		if platform.Score.Total > 0 {
			scored++
		}
		consistency += platform.Score.Consistency
		quality += platform.Score.Quality
		accessibility += platform.Score.Accessibility
		totals += float64(platform.Score.Total)
	}

	breakdown := ScoreBreakdown{
		DigitalPresence: math.Min(count, maxCountedPlatforms)/maxCountedPlatforms*10 +
			float64(active)/count*6 +
			float64(scored)/count*4,
		CampaignConsistency:    consistency / count / 3 * 20,
		CommunicationQuality:   quality / count / 3 * 20,
		VoterAccessibility:     accessibility / count / 3 * 20,
		CompetitivePositioning: competitivePositioning(len(platforms), totals/count, opponents),
	}
	breakdown = roundBreakdown(breakdown)

	total := breakdown.DigitalPresence + breakdown.CampaignConsistency + breakdown.CommunicationQuality +
		breakdown.VoterAccessibility + breakdown.CompetitivePositioning
	score := int(math.Round(clamp(total, 0, 100)))
	return OverallScore{
		Score:     score,
		Grade:     OverallGrade(score),
		Breakdown: breakdown,
	}
}

func competitivePositioning(platformCount int, averageScore float64, opponents []OpponentSummary) float64 {
	score := 10.0
	if len(opponents) == 0 {
		return score
	}

	var countSum, scoreSum float64
	for _, opponent := range opponents {
		countSum += float64(opponent.PlatformCount)
		scoreSum += opponent.AverageScore
	}
	opponentCount := countSum / float64(len(opponents))
	opponentScore := scoreSum / float64(len(opponents))

	switch {
	case float64(platformCount) > opponentCount:
		score += 5
	case float64(platformCount) == opponentCount:
		score += 2
	}
	switch {
	case averageScore > opponentScore:
		score += 5
	case averageScore >= 0.9*opponentScore:
		score += 2
	}
	return score
}

type gradeBucket struct {
	min   int
	grade string
}

var overallGrades = []gradeBucket{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{60, "D"}, {0, "F"},
}

func OverallGrade(score int) string {
	for _, bucket := range overallGrades {
		if score >= bucket.min {
			return bucket.grade
		}
	}
	return "F"
}

// SummarizeOpponent reduces an opponent's platforms to the comparison inputs.
func SummarizeOpponent(name string, platforms []ScoredPlatform) OpponentSummary {
	summary := OpponentSummary{Name: name, PlatformCount: len(platforms)}
	if len(platforms) == 0 {
		return summary
	}
	total := 0
	for _, platform := range platforms {
		total += platform.Score.Total
	}
	summary.AverageScore = round2(float64(total) / float64(len(platforms)))
	return summary
}

func roundBreakdown(in ScoreBreakdown) ScoreBreakdown {
	return ScoreBreakdown{
		DigitalPresence:        round2(in.DigitalPresence),
		CampaignConsistency:    round2(in.CampaignConsistency),
		CommunicationQuality:   round2(in.CommunicationQuality),
		VoterAccessibility:     round2(in.VoterAccessibility),
		CompetitivePositioning: round2(in.CompetitivePositioning),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
