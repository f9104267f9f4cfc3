package audit

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Observation is what discovery knows about one URL: search metadata only, no page content.
type Observation struct {
	URL            string
	Title          string
	Snippet        string
	RelevanceScore float64
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\(?\b[2-9]\d{2}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)
)

// ExtractSignals derives scoring signals from an observation and its attribution.
func ExtractSignals(obs Observation, classification Classification, confidence Confidence, now time.Time) PlatformSignals {
	snippet := strings.TrimSpace(obs.Snippet)
	lowerSnippet := strings.ToLower(snippet)

	signals := PlatformSignals{
		HasProfile:     true,
		IsActive:       obs.RelevanceScore >= 0.5,
		RecentlyActive: mentionsRecentYear(lowerSnippet, now),
	}

	switch classification.Category {
	case CategorySocialMedia, CategoryProfessional, CategoryContent, CategoryCampaignWebsite:
		signals.HasLogo = true
	}
	signals.NamingConsistent = confidence.Signals.NameMatch >= 0.35
	signals.MessagingConsistent = confidence.Signals.OfficeMatch > 0 || confidence.Signals.ContentSignals > 0
	signals.LogoConsistent = signals.HasLogo && confidence.Score >= 0.5

	switch {
	case len(snippet) >= 120:
		signals.ContentQuality = ContentQualityGood
	case len(snippet) >= 40:
		signals.ContentQuality = ContentQualityFair
	default:
		signals.ContentQuality = ContentQualityPoor
	}
	signals.ProfessionalPresentation = strings.HasPrefix(strings.ToLower(strings.TrimSpace(obs.URL)), "https://") &&
		strings.TrimSpace(obs.Title) != ""

	signals.HasEmail = emailPattern.MatchString(snippet)
	signals.HasPhone = phonePattern.MatchString(snippet)
	signals.HasWebsite = classification.Category == CategoryCampaignWebsite ||
		classification.Category == CategoryWebsite ||
		strings.Contains(lowerSnippet, "www.") ||
		strings.Contains(lowerSnippet, "http")
	signals.HasContactInfo = signals.HasEmail || signals.HasPhone || strings.Contains(lowerSnippet, "contact")
	return signals
}

func mentionsRecentYear(text string, now time.Time) bool {
	if now.IsZero() {
		return false
	}
	for _, year := range []int{now.Year(), now.Year() - 1} {
		if strings.Contains(text, strconv.Itoa(year)) {
			return true
		}
	}
	return false
}

// ScoreObservation runs classification, confidence and scoring for one URL.
// ok is false when the URL cannot be classified.
func ScoreObservation(obs Observation, subject ConfidenceInput, now time.Time) (ScoredPlatform, bool) {
	classification := Classify(obs.URL)
	if classification == nil {
		return ScoredPlatform{}, false
	}
	subject.URL = obs.URL
	subject.Title = obs.Title
	confidence := ScoreConfidence(subject)
	signals := ExtractSignals(obs, *classification, confidence, now)
	return ScoredPlatform{
		URL:            obs.URL,
		Title:          obs.Title,
		Classification: *classification,
		Confidence:     confidence,
		Signals:        signals,
		Score:          ScorePlatform(signals),
	}, true
}
