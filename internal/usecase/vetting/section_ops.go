package vetting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"candidatevet/internal/bootstrap/logging"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

// SectionView is a report section with its assignees and the content readers should see.
type SectionView struct {
	ports.ReportSection
	AssignedMemberIDs []uint64
	EffectiveContent  string
}

func (s *Service) ListSections(ctx context.Context, vettingID uint64) ([]SectionView, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetVetting(ctx, vettingID); err != nil {
		return nil, err
	}

	sections, err := s.repo.ListSections(ctx, vettingID)
	if err != nil {
		return nil, err
	}

	views := make([]SectionView, 0, len(sections))
	for _, section := range sections {
		memberIDs, err := s.assignedMemberIDs(ctx, section.SectionID)
		if err != nil {
			return nil, err
		}
		views = append(views, SectionView{
			ReportSection:     section,
			AssignedMemberIDs: memberIDs,
			EffectiveContent:  domainvetting.EffectiveContent(section.ReviewedData, section.AIDraftData),
		})
	}
	return views, nil
}

// UpdateSection edits status, reviewed content and notes. Status moves follow the section workflow.
func (s *Service) UpdateSection(ctx context.Context, caps domainvetting.Capabilities, input UpdateSectionInput) (ports.ReportSection, error) {
	if err := s.check(ctx); err != nil {
		return ports.ReportSection{}, err
	}
	if input.Status == nil && input.ReviewedData == nil && input.Notes == nil {
		return ports.ReportSection{}, errs.Validationf("nothing to update")
	}

	var nextStatus *domainvetting.SectionStatus
	if input.Status != nil {
		status, err := domainvetting.ParseSectionStatus(*input.Status)
		if err != nil {
			return ports.ReportSection{}, err
		}
		nextStatus = &status
	}
	if input.ReviewedData != nil {
		if err := validateJSONDocument(*input.ReviewedData); err != nil {
			return ports.ReportSection{}, err
		}
	}

	now := s.nowString()
	var updated ports.ReportSection
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		section, err := s.repo.GetSection(txCtx, input.SectionID)
		if err != nil {
			return err
		}
		memberIDs, err := s.assignedMemberIDs(txCtx, section.SectionID)
		if err != nil {
			return err
		}
		if !caps.CanEditSection(memberIDs) {
			return permissionDenied("edit this section")
		}

		update := ports.SectionUpdate{
			SectionID:    section.SectionID,
			ReviewedData: input.ReviewedData,
			Notes:        input.Notes,
			UpdatedAt:    now,
		}
		if nextStatus != nil && *nextStatus != section.Status {
			if !domainvetting.IsValidSectionTransition(section.Status, *nextStatus) {
				return fmt.Errorf("%w: %s -> %s", domainvetting.ErrInvalidSectionTransition, section.Status, *nextStatus)
			}
			update.Status = nextStatus
			section.Status = *nextStatus
		}
		if err := s.repo.UpdateSection(txCtx, update); err != nil {
			return err
		}

		if input.ReviewedData != nil {
			section.ReviewedData = *input.ReviewedData
		}
		if input.Notes != nil {
			section.Notes = *input.Notes
		}
		section.UpdatedAt = now
		updated = section
		return nil
	}); err != nil {
		return ports.ReportSection{}, err
	}
	return updated, nil
}

// AssignSection links a committee member to a section. The first assignment moves not_started to assigned.
func (s *Service) AssignSection(ctx context.Context, caps domainvetting.Capabilities, sectionID uint64, memberID uint64) (ports.ReportSection, error) {
	if err := s.check(ctx); err != nil {
		return ports.ReportSection{}, err
	}
	if !caps.CanManageAssignments() {
		return ports.ReportSection{}, permissionDenied("manage assignments")
	}

	now := s.nowString()
	var updated ports.ReportSection
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		section, err := s.repo.GetSection(txCtx, sectionID)
		if err != nil {
			return err
		}
		vetting, err := s.repo.GetVetting(txCtx, section.VettingID)
		if err != nil {
			return err
		}
		member, err := s.repo.GetCommitteeMember(txCtx, memberID)
		if err != nil {
			return err
		}
		if !member.Active {
			return errs.Validationf("member %d is not active", memberID)
		}
		if vetting.CommitteeID == nil || *vetting.CommitteeID != member.CommitteeID {
			return errs.Validationf("member %d does not belong to the committee vetting %d", memberID, vetting.VettingID)
		}

		if err := s.repo.CreateAssignment(txCtx, ports.SectionAssignment{
			SectionID:  section.SectionID,
			MemberID:   member.MemberID,
			AssignedAt: now,
		}); err != nil {
			return err
		}

		if next := domainvetting.StatusAfterAssignment(section.Status); next != section.Status {
			if err := s.repo.UpdateSection(txCtx, ports.SectionUpdate{
				SectionID: section.SectionID,
				Status:    &next,
				UpdatedAt: now,
			}); err != nil {
				return err
			}
			section.Status = next
			section.UpdatedAt = now
		}
		updated = section
		return nil
	}); err != nil {
		return ports.ReportSection{}, err
	}
	return updated, nil
}

func (s *Service) UnassignSection(ctx context.Context, caps domainvetting.Capabilities, sectionID uint64, memberID uint64) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if !caps.CanManageAssignments() {
		return permissionDenied("manage assignments")
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetSection(txCtx, sectionID); err != nil {
			return err
		}
		return s.repo.DeleteAssignment(txCtx, sectionID, memberID)
	})
}

// GenerateSectionDraft asks the draft collaborator for a section draft and stores it as aiDraftData.
func (s *Service) GenerateSectionDraft(ctx context.Context, caps domainvetting.Capabilities, input GenerateDraftInput) (ports.ReportSection, error) {
	if err := s.check(ctx); err != nil {
		return ports.ReportSection{}, err
	}
	sectionType, err := domainvetting.ParseSectionType(input.SectionType)
	if err != nil {
		return ports.ReportSection{}, err
	}

	section, err := s.repo.GetSectionByType(ctx, input.VettingID, sectionType)
	if err != nil {
		return ports.ReportSection{}, err
	}
	memberIDs, err := s.assignedMemberIDs(ctx, section.SectionID)
	if err != nil {
		return ports.ReportSection{}, err
	}
	if !caps.CanEditSection(memberIDs) {
		return ports.ReportSection{}, permissionDenied("edit this section")
	}
	if strings.TrimSpace(section.AIDraftData) != "" && !input.Force {
		return ports.ReportSection{}, errs.Conflictf("section %s already has an AI draft", sectionType)
	}
	if s.drafts == nil {
		return ports.ReportSection{}, ports.ErrDraftNotConfigured
	}

	vetting, err := s.repo.GetVetting(ctx, input.VettingID)
	if err != nil {
		return ports.ReportSection{}, err
	}
	opponents, err := s.repo.ListOpponents(ctx, input.VettingID)
	if err != nil {
		return ports.ReportSection{}, err
	}
	if sectionType == domainvetting.SectionOpponentResearch && len(opponents) == 0 {
		return ports.ReportSection{}, errs.Validationf("opponent research needs at least one named opponent")
	}
	sections, err := s.repo.ListSections(ctx, input.VettingID)
	if err != nil {
		return ports.ReportSection{}, err
	}

	logCtx := logging.WithAttrs(
		logging.WithVetting(logging.WithComponent(ctx, "usecase.vetting"), vetting.VettingID),
		slog.String("section_type", string(sectionType)),
	)

	draft, err := s.drafts.GenerateDraft(ctx, ports.DraftRequest{
		SectionType: sectionType,
		Context:     draftContext(vetting, opponents, sections, sectionType),
	})
	if err != nil {
		logging.Error(logCtx, "draft generation failed", slog.Any("err", errs.Loggable(err)))
		if errors.Is(err, errs.ErrDependency) {
			return ports.ReportSection{}, err
		}
		return ports.ReportSection{}, errs.Dependency(err, "generate draft")
	}

	encoded, err := json.Marshal(draft)
	if err != nil {
		return ports.ReportSection{}, errs.Wrap(err, "encode draft")
	}
	draftData := string(encoded)
	now := s.nowString()
	stored, err := s.repo.StoreSectionDraft(ctx, section.SectionID, draftData, input.Force, now)
	if err != nil {
		return ports.ReportSection{}, err
	}
	if !stored {
		return ports.ReportSection{}, errs.Conflictf("section %s already has an AI draft", sectionType)
	}

	logging.Info(logCtx, "section draft stored", slog.Bool("forced", input.Force))
	section.AIDraftData = draftData
	section.UpdatedAt = now
	return section, nil
}

func (s *Service) assignedMemberIDs(ctx context.Context, sectionID uint64) ([]uint64, error) {
	assignments, err := s.repo.ListAssignments(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.MemberID)
	}
	return ids, nil
}

func draftContext(vetting ports.Vetting, opponents []ports.Opponent, sections []ports.ReportSection, target domainvetting.SectionType) map[string]any {
	opponentList := make([]map[string]any, 0, len(opponents))
	for _, opponent := range opponents {
		opponentList = append(opponentList, map[string]any{
			"name":       opponent.Name,
			"party":      opponent.Party,
			"incumbent":  opponent.Incumbent,
			"background": opponent.Background,
		})
	}

	related := make(map[string]any, len(sections))
	for _, section := range sections {
		if section.SectionType == target {
			continue
		}
		content := domainvetting.EffectiveContent(section.ReviewedData, section.AIDraftData)
		if strings.TrimSpace(content) == "" {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(content), &decoded); err == nil {
			related[string(section.SectionType)] = decoded
		} else {
			related[string(section.SectionType)] = content
		}
	}

	out := map[string]any{
		"candidate": map[string]any{
			"name":     vetting.CandidateName,
			"office":   vetting.Office,
			"district": vetting.District,
			"state":    vetting.State,
			"party":    vetting.Party,
		},
		"stage":     string(vetting.Stage),
		"opponents": opponentList,
		"sections":  related,
	}
	if vetting.InterviewNotes != "" {
		out["interview_notes"] = vetting.InterviewNotes
	}
	return out
}

func validateJSONDocument(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if !json.Valid([]byte(raw)) {
		return errs.Validationf("section content must be a JSON document")
	}
	return nil
}
