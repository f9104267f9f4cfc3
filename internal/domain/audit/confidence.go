package audit

import (
	"math"
	"strings"
	"unicode"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
	ConfidenceNone   ConfidenceLevel = "NONE"
)

type ConfidenceInput struct {
	URL    string
	Title  string
	Name   string
	Office string
	State  string
}

type ConfidenceSignals struct {
	NameMatch       float64 `json:"name_match"`
	OfficeMatch     float64 `json:"office_match"`
	LocationMatch   float64 `json:"location_match"`
	DomainAuthority float64 `json:"domain_authority"`
	ContentSignals  float64 `json:"content_signals"`
}

type Confidence struct {
	Score   float64           `json:"score"`
	Level   ConfidenceLevel   `json:"level"`
	Signals ConfidenceSignals `json:"signals"`
}

var politicalKeywords = []string{
	"vote", "elect", "campaign", "senate", "congress", "candidate", "district",
	"council", "mayor", "governor", "representative", "endorse", "legislature", "ballot",
}

type domainScore struct {
	domain string
	score  float64
}

var domainAuthorityTable = []domainScore{
	{"ballotpedia.org", 0.1},
	{"votesmart.org", 0.1},
	{"fec.gov", 0.1},
	{"opensecrets.org", 0.1},
	{"govtrack.us", 0.1},
	{"facebook.com", 0.09},
	{"twitter.com", 0.09},
	{"x.com", 0.09},
	{"linkedin.com", 0.09},
	{"instagram.com", 0.08},
	{"youtube.com", 0.08},
	{"tiktok.com", 0.08},
}

func ConfidenceLevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= 0.7:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.3:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// ScoreConfidence estimates how likely a URL belongs to the named person.
func ScoreConfidence(in ConfidenceInput) Confidence {
	text := strings.ToLower(strings.TrimSpace(in.URL) + " " + strings.TrimSpace(in.Title))
	tokens := tokenize(text)
	host, _, _ := ParsedURL(in.URL)

	signals := ConfidenceSignals{
		NameMatch:       nameMatch(text, tokens, in.Name),
		OfficeMatch:     officeMatch(text, tokens, in.Office, in.State),
		LocationMatch:   locationMatch(text, in.State),
		DomainAuthority: domainAuthority(host),
		ContentSignals:  contentSignals(text),
	}

	sum := signals.NameMatch + signals.OfficeMatch + signals.LocationMatch + signals.DomainAuthority + signals.ContentSignals
	score := round3(clamp(sum, 0, 1))
	return Confidence{
		Score:   score,
		Level:   ConfidenceLevelFor(score),
		Signals: signals,
	}
}

func nameMatch(text string, tokens map[string]struct{}, name string) float64 {
	parts := nameParts(name)
	if len(parts) == 0 {
		return 0
	}
	first := parts[0]
	last := parts[len(parts)-1]

	if len(parts) > 1 {
		for _, sep := range []string{"", "-", " ", "_", "."} {
			if strings.Contains(text, strings.Join(parts, sep)) {
				return 0.4
			}
		}
		if first != last && strings.Contains(text, first+last) {
			return 0.4
		}
	}

	_, hasFirst := tokens[first]
	_, hasLast := tokens[last]
	switch {
	case len(parts) > 1 && hasFirst && hasLast:
		return 0.35
	case len(parts) > 1 && hasLast:
		return 0.2
	case hasFirst:
		return 0.1
	default:
		return 0
	}
}

func officeMatch(text string, tokens map[string]struct{}, office string, state string) float64 {
	score := 0.0
	office = strings.ToLower(strings.TrimSpace(office))
	if office != "" {
		if strings.Contains(text, office) {
			score += 0.2
		} else {
			for _, keyword := range strings.FieldsFunc(office, isSeparator) {
				if len(keyword) < 3 || officeStopWords[keyword] {
					continue
				}
				if strings.Contains(text, keyword) {
					score += 0.1
					break
				}
			}
		}
	}

	if code, _ := ResolveState(state); code != "" {
		if _, ok := tokens[strings.ToLower(code)]; ok {
			score += 0.1
		}
	}
	return math.Min(score, 0.3)
}

var officeStopWords = map[string]bool{
	"the": true, "for": true, "and": true, "state": true, "district": true, "seat": true,
}

func locationMatch(text string, state string) float64 {
	code, name := ResolveState(state)
	if name != "" && strings.Contains(text, name) {
		return 0.15
	}
	if name != "" && strings.Contains(strings.ReplaceAll(text, "-", " "), name) {
		return 0.15
	}
	if code != "" && strings.Contains(text, strings.ToLower(code)) {
		return 0.08
	}
	return 0
}

func domainAuthority(host string) float64 {
	if host == "" {
		return 0
	}
	for _, entry := range domainAuthorityTable {
		if hostMatches(host, entry.domain) {
			return entry.score
		}
	}
	switch {
	case strings.HasSuffix(host, ".gov"):
		return 0.09
	case strings.HasSuffix(host, ".org"):
		return 0.06
	case strings.HasSuffix(host, ".com"):
		return 0.05
	default:
		return 0.03
	}
}

func contentSignals(text string) float64 {
	found := 0
	for _, keyword := range politicalKeywords {
		if strings.Contains(text, keyword) {
			found++
		}
	}
	return math.Min(float64(found)*0.015, 0.05)
}

func nameParts(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.ReplaceAll(field, "'", "")
		if field != "" {
			out = append(out, field)
		}
	}
	return out
}

func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(text, isSeparator) {
		out[token] = struct{}{}
	}
	return out
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func clamp(value float64, low float64, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
