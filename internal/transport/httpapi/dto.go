package httpapi

import (
	"encoding/json"
	"strings"

	"candidatevet/internal/ports"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

type vettingResponse struct {
	VettingID         uint64   `json:"vetting_id"`
	CandidateName     string   `json:"candidate_name"`
	Office            string   `json:"office"`
	District          string   `json:"district,omitempty"`
	State             string   `json:"state,omitempty"`
	Party             string   `json:"party,omitempty"`
	CommitteeID       *uint64  `json:"committee_id,omitempty"`
	Stage             string   `json:"stage"`
	KnownURLs         []string `json:"known_urls"`
	InterviewDate     *string  `json:"interview_date,omitempty"`
	InterviewNotes    string   `json:"interview_notes,omitempty"`
	Recommendation    *string  `json:"recommendation,omitempty"`
	EndorsementResult *string  `json:"endorsement_result,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func toVettingResponse(v ports.Vetting) vettingResponse {
	out := vettingResponse{
		VettingID:      v.VettingID,
		CandidateName:  v.CandidateName,
		Office:         v.Office,
		District:       v.District,
		State:          v.State,
		Party:          v.Party,
		CommitteeID:    v.CommitteeID,
		Stage:          string(v.Stage),
		KnownURLs:      v.KnownURLs,
		InterviewDate:  v.InterviewDate,
		InterviewNotes: v.InterviewNotes,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	if out.KnownURLs == nil {
		out.KnownURLs = []string{}
	}
	if v.Recommendation != nil {
		value := string(*v.Recommendation)
		out.Recommendation = &value
	}
	if v.EndorsementResult != nil {
		value := string(*v.EndorsementResult)
		out.EndorsementResult = &value
	}
	return out
}

type sectionResponse struct {
	SectionID         uint64          `json:"section_id"`
	VettingID         uint64          `json:"vetting_id"`
	SectionType       string          `json:"section_type"`
	Status            string          `json:"status"`
	ReviewedData      json.RawMessage `json:"reviewed_data,omitempty"`
	AIDraftData       json.RawMessage `json:"ai_draft_data,omitempty"`
	EffectiveContent  json.RawMessage `json:"effective_content,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	AssignedMemberIDs []uint64        `json:"assigned_member_ids,omitempty"`
	UpdatedAt         string          `json:"updated_at"`
}

func toSectionResponse(section ports.ReportSection) sectionResponse {
	return sectionResponse{
		SectionID:    section.SectionID,
		VettingID:    section.VettingID,
		SectionType:  string(section.SectionType),
		Status:       string(section.Status),
		ReviewedData: rawJSON(section.ReviewedData),
		AIDraftData:  rawJSON(section.AIDraftData),
		Notes:        section.Notes,
		UpdatedAt:    section.UpdatedAt,
	}
}

func toSectionViewResponse(view usecasevetting.SectionView) sectionResponse {
	out := toSectionResponse(view.ReportSection)
	out.EffectiveContent = rawJSON(view.EffectiveContent)
	out.AssignedMemberIDs = view.AssignedMemberIDs
	return out
}

// rawJSON embeds stored JSON documents as-is; anything else is sent as a JSON string.
func rawJSON(value string) json.RawMessage {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	encoded, _ := json.Marshal(value)
	return encoded
}

type auditResponse struct {
	AuditID         uint64          `json:"audit_id"`
	VettingID       uint64          `json:"vetting_id"`
	RunID           string          `json:"run_id"`
	Status          string          `json:"status"`
	Score           *int            `json:"score,omitempty"`
	Grade           string          `json:"grade,omitempty"`
	Breakdown       json.RawMessage `json:"breakdown,omitempty"`
	Risk            json.RawMessage `json:"risk,omitempty"`
	OpponentResults json.RawMessage `json:"opponent_results,omitempty"`
	DiscoveryLog    json.RawMessage `json:"discovery_log,omitempty"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	CreatedAt       string          `json:"created_at"`
	StartedAt       *string         `json:"started_at,omitempty"`
	FinishedAt      *string         `json:"finished_at,omitempty"`
}

func toAuditResponse(audit ports.DigitalAudit) auditResponse {
	return auditResponse{
		AuditID:         audit.AuditID,
		VettingID:       audit.VettingID,
		RunID:           audit.RunID,
		Status:          string(audit.Status),
		Score:           audit.Score,
		Grade:           audit.Grade,
		Breakdown:       rawJSON(audit.BreakdownJSON),
		Risk:            rawJSON(audit.RiskJSON),
		OpponentResults: rawJSON(audit.OpponentResultsJSON),
		DiscoveryLog:    rawJSON(audit.DiscoveryLogJSON),
		ErrorMessage:    audit.ErrorMessage,
		CreatedAt:       audit.CreatedAt,
		StartedAt:       audit.StartedAt,
		FinishedAt:      audit.FinishedAt,
	}
}

type platformResponse struct {
	EntityType      string  `json:"entity_type"`
	EntityName      string  `json:"entity_name"`
	URL             string  `json:"url"`
	PlatformType    string  `json:"platform_type"`
	PlatformName    string  `json:"platform_name"`
	Category        string  `json:"category"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level"`
	Presence        float64 `json:"presence"`
	Consistency     float64 `json:"consistency"`
	Quality         float64 `json:"quality"`
	Accessibility   float64 `json:"accessibility"`
	TotalScore      int     `json:"total_score"`
	Grade           string  `json:"grade"`
	HasContactInfo  bool    `json:"has_contact_info"`
	HasEmail        bool    `json:"has_email"`
	HasPhone        bool    `json:"has_phone"`
	HasWebsite      bool    `json:"has_website"`
}

func toPlatformResponse(p ports.AuditPlatform) platformResponse {
	return platformResponse{
		EntityType:      string(p.EntityType),
		EntityName:      p.EntityName,
		URL:             p.URL,
		PlatformType:    p.PlatformType,
		PlatformName:    p.PlatformName,
		Category:        string(p.Category),
		Confidence:      p.Confidence,
		ConfidenceLevel: string(p.ConfidenceLevel),
		Presence:        p.Presence,
		Consistency:     p.Consistency,
		Quality:         p.Quality,
		Accessibility:   p.Accessibility,
		TotalScore:      p.TotalScore,
		Grade:           p.Grade,
		HasContactInfo:  p.HasContactInfo,
		HasEmail:        p.HasEmail,
		HasPhone:        p.HasPhone,
		HasWebsite:      p.HasWebsite,
	}
}

type opponentPayload struct {
	Name       string `json:"name"`
	Party      string `json:"party"`
	Incumbent  bool   `json:"incumbent"`
	Background string `json:"background"`
}

func (p opponentPayload) input() usecasevetting.OpponentInput {
	return usecasevetting.OpponentInput{
		Name:       p.Name,
		Party:      p.Party,
		Incumbent:  p.Incumbent,
		Background: p.Background,
	}
}

type opponentResponse struct {
	OpponentID uint64 `json:"opponent_id"`
	Name       string `json:"name"`
	Party      string `json:"party,omitempty"`
	Incumbent  bool   `json:"incumbent"`
	Background string `json:"background,omitempty"`
}

func toOpponentResponse(o ports.Opponent) opponentResponse {
	return opponentResponse{
		OpponentID: o.OpponentID,
		Name:       o.Name,
		Party:      o.Party,
		Incumbent:  o.Incumbent,
		Background: o.Background,
	}
}

type createVettingRequest struct {
	CandidateName string            `json:"candidate_name"`
	Office        string            `json:"office"`
	District      string            `json:"district"`
	State         string            `json:"state"`
	Party         string            `json:"party"`
	CommitteeID   *uint64           `json:"committee_id"`
	KnownURLs     []string          `json:"known_urls"`
	Opponents     []opponentPayload `json:"opponents"`
}

type updateSectionRequest struct {
	Status       *string          `json:"status"`
	ReviewedData *json.RawMessage `json:"reviewed_data"`
	Notes        *string          `json:"notes"`
}
