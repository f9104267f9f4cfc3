package audit

import (
	"fmt"
	"sort"
	"strings"

	domainaudit "candidatevet/internal/domain/audit"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

var ErrUnsupportedDraftSection = fmt.Errorf("%w: section has no audit draft", errs.ErrValidation)

const topRiskCount = 5

type sectionDrafter func(section ports.ReportSection, result report) map[string]any

var sectionDrafters = map[domainvetting.SectionType]sectionDrafter{
	domainvetting.SectionDigitalPresence:  digitalPresenceDraft,
	domainvetting.SectionOpponentResearch: opponentResearchDraft,
}

// sectionDraft builds the audit-derived draft for a section. A nil map means the
// section is supported but should be left as it is.
func sectionDraft(section ports.ReportSection, result report) (map[string]any, error) {
	drafter, ok := sectionDrafters[section.SectionType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDraftSection, section.SectionType)
	}
	return drafter(section, result), nil
}

func digitalPresenceDraft(_ ports.ReportSection, result report) map[string]any {
	platforms := make([]map[string]any, 0, len(result.platforms))
	for _, platform := range result.platforms {
		platforms = append(platforms, map[string]any{
			"platform":   platform.Classification.PlatformName,
			"category":   platform.Classification.Category,
			"url":        platform.URL,
			"grade":      platform.Score.Grade,
			"confidence": platform.Confidence.Level,
		})
	}

	return map[string]any{
		"source":         "digital_audit",
		"audit_run_id":   result.audit.RunID,
		"score":          result.overall.Score,
		"grade":          result.overall.Grade,
		"breakdown":      result.overall.Breakdown,
		"platform_count": len(result.platforms),
		"platforms":      platforms,
		"risk": map[string]any{
			"overall":    result.risk.Overall,
			"level":      result.risk.Level,
			"categories": result.risk.Categories,
			"top_risks":  topRisks(result.risk.Risks),
		},
		"summary": digitalPresenceSummary(result),
	}
}

// opponentResearchDraft only seeds an empty section; reviewed or drafted content is kept.
func opponentResearchDraft(section ports.ReportSection, result report) map[string]any {
	if strings.TrimSpace(section.ReviewedData) != "" || strings.TrimSpace(section.AIDraftData) != "" {
		return nil
	}
	if len(result.opponents) == 0 {
		return nil
	}

	comparison := make([]map[string]any, 0, len(result.opponents))
	for _, opponent := range result.opponents {
		entry := map[string]any{
			"name":         opponent.Name,
			"audit_failed": opponent.AuditFailed,
		}
		if opponent.AuditFailed {
			entry["error"] = opponent.Error
		} else {
			entry["platform_count"] = opponent.PlatformCount
			entry["average_score"] = opponent.AverageScore
			if opponent.Risk != nil {
				entry["risk_level"] = opponent.Risk.Level
			}
		}
		comparison = append(comparison, entry)
	}

	return map[string]any{
		"source":       "digital_audit",
		"audit_run_id": result.audit.RunID,
		"candidate": map[string]any{
			"name":           result.vetting.CandidateName,
			"platform_count": len(result.platforms),
			"average_score":  domainaudit.SummarizeOpponent(result.vetting.CandidateName, result.platforms).AverageScore,
		},
		"opponents":               comparison,
		"competitive_positioning": result.overall.Breakdown.CompetitivePositioning,
	}
}

func topRisks(risks []domainaudit.Risk) []domainaudit.Risk {
	sorted := append([]domainaudit.Risk(nil), risks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})
	if len(sorted) > topRiskCount {
		sorted = sorted[:topRiskCount]
	}
	return sorted
}

func digitalPresenceSummary(result report) string {
	if len(result.platforms) == 0 {
		return fmt.Sprintf("No platforms found for %s. Overall grade %s.", result.vetting.CandidateName, result.overall.Grade)
	}
	return fmt.Sprintf("%s has %d discovered platforms, overall score %d (%s), risk level %s.",
		result.vetting.CandidateName,
		len(result.platforms),
		result.overall.Score,
		result.overall.Grade,
		result.risk.Level,
	)
}
