package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"candidatevet/internal/errs"
	usecasevetting "candidatevet/internal/usecase/vetting"
)

func (h *Handler) createCommittee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	committee, err := h.vettings.CreateCommittee(r.Context(), capsFrom(r), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"committee_id": committee.CommitteeID,
		"name":         committee.Name,
		"created_at":   committee.CreatedAt,
	})
}

func (h *Handler) addCommitteeMember(w http.ResponseWriter, r *http.Request) {
	committeeID, err := pathID(r, "committeeID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Name   string `json:"name"`
		Role   string `json:"role"`
		Active *bool  `json:"active"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	member, err := h.vettings.AddCommitteeMember(r.Context(), capsFrom(r), usecasevetting.AddCommitteeMemberInput{
		CommitteeID: committeeID,
		Name:        req.Name,
		Role:        req.Role,
		Active:      active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"member_id":    member.MemberID,
		"committee_id": member.CommitteeID,
		"name":         member.Name,
		"role":         string(member.Role),
		"active":       member.Active,
	})
}

func (h *Handler) createVetting(w http.ResponseWriter, r *http.Request) {
	var req createVettingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opponents := make([]usecasevetting.OpponentInput, 0, len(req.Opponents))
	for _, opponent := range req.Opponents {
		opponents = append(opponents, opponent.input())
	}

	vetting, err := h.vettings.CreateVetting(r.Context(), capsFrom(r), usecasevetting.CreateVettingInput{
		CandidateName: req.CandidateName,
		Office:        req.Office,
		District:      req.District,
		State:         req.State,
		Party:         req.Party,
		CommitteeID:   req.CommitteeID,
		KnownURLs:     req.KnownURLs,
		Opponents:     opponents,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVettingResponse(vetting))
}

func (h *Handler) listVettings(w http.ResponseWriter, r *http.Request) {
	vettings, err := h.vettings.ListVettings(r.Context(), r.URL.Query().Get("stage"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]vettingResponse, 0, len(vettings))
	for _, vetting := range vettings {
		out = append(out, toVettingResponse(vetting))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getVetting(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	vetting, err := h.vettings.GetVetting(r.Context(), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVettingResponse(vetting))
}

func (h *Handler) transitionStage(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		To string `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vetting, err := h.vettings.TransitionStage(r.Context(), capsFrom(r), usecasevetting.TransitionStageInput{
		VettingID: vettingID,
		To:        req.To,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVettingResponse(vetting))
}

func (h *Handler) setRecommendation(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Recommendation string `json:"recommendation"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vetting, err := h.vettings.SetRecommendation(r.Context(), capsFrom(r), vettingID, req.Recommendation)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVettingResponse(vetting))
}

func (h *Handler) recordInterview(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Date  string `json:"date"`
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vetting, err := h.vettings.RecordInterview(r.Context(), capsFrom(r), usecasevetting.RecordInterviewInput{
		VettingID: vettingID,
		Date:      req.Date,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVettingResponse(vetting))
}

func (h *Handler) listOpponents(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	opponents, err := h.vettings.ListOpponents(r.Context(), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]opponentResponse, 0, len(opponents))
	for _, opponent := range opponents {
		out = append(out, toOpponentResponse(opponent))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) addOpponent(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req opponentPayload
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opponent, err := h.vettings.AddOpponent(r.Context(), capsFrom(r), vettingID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOpponentResponse(opponent))
}

func (h *Handler) listSections(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.vettings.ListSections(r.Context(), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]sectionResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toSectionViewResponse(view))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) updateSection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := pathID(r, "sectionID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateSectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := usecasevetting.UpdateSectionInput{
		SectionID: sectionID,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if req.ReviewedData != nil {
		reviewed := strings.TrimSpace(string(*req.ReviewedData))
		if reviewed == "null" {
			reviewed = ""
		}
		input.ReviewedData = &reviewed
	}

	section, err := h.vettings.UpdateSection(r.Context(), capsFrom(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSectionResponse(section))
}

func (h *Handler) assignSection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := pathID(r, "sectionID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		MemberID uint64 `json:"member_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.MemberID == 0 {
		writeError(w, r, errs.Validationf("member_id is required"))
		return
	}
	section, err := h.vettings.AssignSection(r.Context(), capsFrom(r), sectionID, req.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSectionResponse(section))
}

func (h *Handler) unassignSection(w http.ResponseWriter, r *http.Request) {
	sectionID, err := pathID(r, "sectionID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.vettings.UnassignSection(r.Context(), capsFrom(r), sectionID, memberID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generateDraft(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Force bool `json:"force"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	section, err := h.vettings.GenerateSectionDraft(r.Context(), capsFrom(r), usecasevetting.GenerateDraftInput{
		VettingID:   vettingID,
		SectionType: chi.URLParam(r, "sectionType"),
		Force:       req.Force,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSectionResponse(section))
}

func (h *Handler) recordVote(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Vote    string `json:"vote"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	vote, err := h.vettings.RecordBoardVote(r.Context(), capsFrom(r), usecasevetting.RecordBoardVoteInput{
		VettingID: vettingID,
		Vote:      req.Vote,
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"vote_id":    vote.VoteID,
		"vetting_id": vote.VettingID,
		"voter_id":   vote.VoterID,
		"vote":       string(vote.Vote),
	})
}

func (h *Handler) boardTally(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tally, err := h.vettings.GetBoardTally(r.Context(), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := map[string]any{
		"vetting_id": tally.VettingID,
		"tally":      tally.Tally,
		"result":     string(tally.Result),
		"votes":      tally.Votes,
	}
	if tally.Finalized != nil {
		body["finalized"] = string(*tally.Finalized)
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) finalizeEndorsement(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	vetting, err := h.vettings.FinalizeEndorsement(r.Context(), capsFrom(r), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVettingResponse(vetting))
}

func (h *Handler) pipelineBoard(w http.ResponseWriter, r *http.Request) {
	columns, err := h.vettings.PipelineBoard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(columns))
	for _, column := range columns {
		vettings := make([]vettingResponse, 0, len(column.Vettings))
		for _, vetting := range column.Vettings {
			vettings = append(vettings, toVettingResponse(vetting))
		}
		out = append(out, map[string]any{"stage": string(column.Stage), "vettings": vettings})
	}
	writeJSON(w, http.StatusOK, out)
}

// runAudit starts an audit and runs it to a terminal state within the request.
func (h *Handler) runAudit(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	audit, err := h.audits.StartAndRun(r.Context(), capsFrom(r), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuditResponse(audit))
}

func (h *Handler) latestAudit(w http.ResponseWriter, r *http.Request) {
	vettingID, err := pathID(r, "vettingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	audit, err := h.audits.GetLatestAudit(r.Context(), vettingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponse(audit))
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	auditID, err := pathID(r, "auditID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	audit, err := h.audits.GetAudit(r.Context(), auditID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponse(audit))
}

func (h *Handler) auditPlatforms(w http.ResponseWriter, r *http.Request) {
	auditID, err := pathID(r, "auditID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	platforms, err := h.audits.ListAuditPlatforms(r.Context(), auditID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]platformResponse, 0, len(platforms))
	for _, platform := range platforms {
		out = append(out, toPlatformResponse(platform))
	}
	writeJSON(w, http.StatusOK, out)
}
