package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/infrastructure/persistence/sqlite/model"
	"candidatevet/internal/ports"
)

type VettingRepository struct {
	db *gorm.DB
}

var _ ports.VettingRepository = (*VettingRepository)(nil)

func NewVettingRepository(db *gorm.DB) *VettingRepository {
	return &VettingRepository{db: db}
}

func (r *VettingRepository) CreateVetting(ctx context.Context, vetting ports.Vetting, sectionTypes []domainvetting.SectionType, opponents []ports.Opponent) (ports.Vetting, error) {
	var created ports.Vetting
	err := inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		knownURLs, err := json.Marshal(nonNilStrings(vetting.KnownURLs))
		if err != nil {
			return errs.Wrap(err, "encode known urls")
		}

		row := model.Vetting{
			CandidateName:     vetting.CandidateName,
			Office:            vetting.Office,
			District:          vetting.District,
			State:             vetting.State,
			Party:             vetting.Party,
			CommitteeID:       vetting.CommitteeID,
			Stage:             string(vetting.Stage),
			KnownURLsJSON:     string(knownURLs),
			InterviewDate:     vetting.InterviewDate,
			InterviewNotes:    vetting.InterviewNotes,
			Recommendation:    outcomePtrToString(vetting.Recommendation),
			EndorsementResult: outcomePtrToString(vetting.EndorsementResult),
			CreatedAt:         vetting.CreatedAt,
			UpdatedAt:         vetting.UpdatedAt,
		}
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert vetting")
		}

		if len(sectionTypes) > 0 {
			sectionRows := make([]model.ReportSection, 0, len(sectionTypes))
			for _, sectionType := range sectionTypes {
				sectionRows = append(sectionRows, model.ReportSection{
					VettingID:   row.VettingID,
					SectionType: string(sectionType),
					Status:      string(domainvetting.SectionStatusNotStarted),
					UpdatedAt:   vetting.CreatedAt,
				})
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sectionRows).Error; err != nil {
				return errs.Wrap(err, "insert report sections")
			}
		}

		for _, opponent := range opponents {
			opponentRow := opponentToRow(opponent)
			opponentRow.VettingID = row.VettingID
			if opponentRow.CreatedAt == "" {
				opponentRow.CreatedAt = vetting.CreatedAt
			}
			if err := db.Create(&opponentRow).Error; err != nil {
				return errs.Wrap(err, "insert opponent")
			}
		}

		mapped, err := mapVetting(row)
		if err != nil {
			return err
		}
		created = mapped
		return nil
	})
	if err != nil {
		return ports.Vetting{}, err
	}
	return created, nil
}

func (r *VettingRepository) GetVetting(ctx context.Context, vettingID uint64) (ports.Vetting, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Vetting{}, err
	}

	var row model.Vetting
	if err := db.Where("vetting_id = ?", vettingID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Vetting{}, ports.ErrVettingNotFound
		}
		return ports.Vetting{}, errs.Wrap(err, "query vetting")
	}
	return mapVetting(row)
}

func (r *VettingRepository) ListVettings(ctx context.Context, filter ports.VettingFilter) ([]ports.Vetting, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Vetting{})
	if filter.Stage != "" {
		query = query.Where("stage = ?", string(filter.Stage))
	}

	var rows []model.Vetting
	if err := query.Order("vetting_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query vettings")
	}

	items := make([]ports.Vetting, 0, len(rows))
	for _, row := range rows {
		item, err := mapVetting(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *VettingRepository) CompareAndSetStage(ctx context.Context, vettingID uint64, from domainvetting.Stage, to domainvetting.Stage, updatedAt string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Vetting{}).
		Where("vetting_id = ? AND stage = ?", vettingID, string(from)).
		Updates(map[string]any{
			"stage":      string(to),
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "update vetting stage")
	}
	return result.RowsAffected > 0, nil
}

func (r *VettingRepository) SetRecommendation(ctx context.Context, vettingID uint64, recommendation domainvetting.Outcome, updatedAt string) error {
	return r.updateVetting(ctx, vettingID, "update vetting recommendation", map[string]any{
		"recommendation": string(recommendation),
		"updated_at":     updatedAt,
	})
}

func (r *VettingRepository) SetEndorsementResult(ctx context.Context, vettingID uint64, result domainvetting.Outcome, updatedAt string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	res := db.Model(&model.Vetting{}).
		Where("vetting_id = ? AND endorsement_result IS NULL", vettingID).
		Updates(map[string]any{
			"endorsement_result": string(result),
			"updated_at":         updatedAt,
		})
	if res.Error != nil {
		return false, errs.Wrap(res.Error, "update endorsement result")
	}
	return res.RowsAffected > 0, nil
}

func (r *VettingRepository) SetInterview(ctx context.Context, vettingID uint64, interviewDate string, notes string, updatedAt string) error {
	return r.updateVetting(ctx, vettingID, "update vetting interview", map[string]any{
		"interview_date":  interviewDate,
		"interview_notes": notes,
		"updated_at":      updatedAt,
	})
}

func (r *VettingRepository) updateVetting(ctx context.Context, vettingID uint64, op string, values map[string]any) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.Vetting{}).Where("vetting_id = ?", vettingID).Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, op)
	}
	if result.RowsAffected == 0 {
		return ports.ErrVettingNotFound
	}
	return nil
}

func (r *VettingRepository) ListSections(ctx context.Context, vettingID uint64) ([]ports.ReportSection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.ReportSection
	if err := db.Where("vetting_id = ?", vettingID).Order("section_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query report sections")
	}

	items := make([]ports.ReportSection, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSection(row))
	}
	return items, nil
}

func (r *VettingRepository) GetSection(ctx context.Context, sectionID uint64) (ports.ReportSection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.ReportSection{}, err
	}
	return takeSection(db.Where("section_id = ?", sectionID))
}

func (r *VettingRepository) GetSectionByType(ctx context.Context, vettingID uint64, sectionType domainvetting.SectionType) (ports.ReportSection, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.ReportSection{}, err
	}
	return takeSection(db.Where("vetting_id = ? AND section_type = ?", vettingID, string(sectionType)))
}

func (r *VettingRepository) UpdateSection(ctx context.Context, update ports.SectionUpdate) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	values := map[string]any{"updated_at": update.UpdatedAt}
	if update.Status != nil {
		values["status"] = string(*update.Status)
	}
	if update.ReviewedData != nil {
		values["reviewed_data"] = *update.ReviewedData
	}
	if update.AIDraftData != nil {
		values["ai_draft_data"] = *update.AIDraftData
	}
	if update.Notes != nil {
		values["notes"] = *update.Notes
	}

	result := db.Model(&model.ReportSection{}).Where("section_id = ?", update.SectionID).Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update report section")
	}
	if result.RowsAffected == 0 {
		return ports.ErrSectionNotFound
	}
	return nil
}

func (r *VettingRepository) StoreSectionDraft(ctx context.Context, sectionID uint64, draft string, overwrite bool, updatedAt string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	query := db.Model(&model.ReportSection{}).Where("section_id = ?", sectionID)
	if !overwrite {
		query = query.Where("ai_draft_data = ''")
	}
	result := query.Updates(map[string]any{
		"ai_draft_data": draft,
		"updated_at":    updatedAt,
	})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "store section draft")
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := db.Model(&model.ReportSection{}).Where("section_id = ?", sectionID).Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count report section")
	}
	if count == 0 {
		return false, ports.ErrSectionNotFound
	}
	return false, nil
}

func (r *VettingRepository) CreateAssignment(ctx context.Context, assignment ports.SectionAssignment) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.SectionAssignment{
		SectionID:  assignment.SectionID,
		MemberID:   assignment.MemberID,
		AssignedAt: assignment.AssignedAt,
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "insert section assignment")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDuplicateAssignment
	}
	return nil
}

func (r *VettingRepository) DeleteAssignment(ctx context.Context, sectionID uint64, memberID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Where("section_id = ? AND member_id = ?", sectionID, memberID).Delete(&model.SectionAssignment{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete section assignment")
	}
	if result.RowsAffected == 0 {
		return ports.ErrAssignmentNotFound
	}
	return nil
}

func (r *VettingRepository) ListAssignments(ctx context.Context, sectionID uint64) ([]ports.SectionAssignment, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.SectionAssignment
	if err := db.Where("section_id = ?", sectionID).Order("member_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query section assignments")
	}

	items := make([]ports.SectionAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.SectionAssignment{
			SectionID:  row.SectionID,
			MemberID:   row.MemberID,
			AssignedAt: row.AssignedAt,
		})
	}
	return items, nil
}

func (r *VettingRepository) CreateCommittee(ctx context.Context, committee ports.Committee) (ports.Committee, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Committee{}, err
	}

	row := model.Committee{Name: committee.Name, CreatedAt: committee.CreatedAt}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return ports.Committee{}, errs.Wrap(result.Error, "insert committee")
	}
	if result.RowsAffected == 0 {
		return ports.Committee{}, errs.Conflictf("committee %q already exists", committee.Name)
	}
	return ports.Committee{CommitteeID: row.CommitteeID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

func (r *VettingRepository) GetCommittee(ctx context.Context, committeeID uint64) (ports.Committee, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Committee{}, err
	}

	var row model.Committee
	if err := db.Where("committee_id = ?", committeeID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Committee{}, ports.ErrCommitteeNotFound
		}
		return ports.Committee{}, errs.Wrap(err, "query committee")
	}
	return ports.Committee{CommitteeID: row.CommitteeID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

func (r *VettingRepository) CreateCommitteeMember(ctx context.Context, member ports.CommitteeMember) (ports.CommitteeMember, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.CommitteeMember{}, err
	}

	row := model.CommitteeMember{
		CommitteeID: member.CommitteeID,
		Name:        member.Name,
		Role:        string(member.Role),
		Active:      member.Active,
		CreatedAt:   member.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.CommitteeMember{}, errs.Wrap(err, "insert committee member")
	}
	return mapMember(row), nil
}

func (r *VettingRepository) GetCommitteeMember(ctx context.Context, memberID uint64) (ports.CommitteeMember, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.CommitteeMember{}, err
	}

	var row model.CommitteeMember
	if err := db.Where("member_id = ?", memberID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CommitteeMember{}, ports.ErrMemberNotFound
		}
		return ports.CommitteeMember{}, errs.Wrap(err, "query committee member")
	}
	return mapMember(row), nil
}

func (r *VettingRepository) CreateOpponent(ctx context.Context, opponent ports.Opponent) (ports.Opponent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Opponent{}, err
	}

	row := opponentToRow(opponent)
	if err := db.Create(&row).Error; err != nil {
		return ports.Opponent{}, errs.Wrap(err, "insert opponent")
	}
	return mapOpponent(row), nil
}

func (r *VettingRepository) ListOpponents(ctx context.Context, vettingID uint64) ([]ports.Opponent, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Opponent
	if err := db.Where("vetting_id = ?", vettingID).Order("opponent_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query opponents")
	}

	items := make([]ports.Opponent, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapOpponent(row))
	}
	return items, nil
}

func (r *VettingRepository) CreateBoardVote(ctx context.Context, vote ports.BoardVote) (ports.BoardVote, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.BoardVote{}, err
	}

	row := model.BoardVote{
		VettingID: vote.VettingID,
		VoterID:   vote.VoterID,
		Vote:      string(vote.Vote),
		Comment:   vote.Comment,
		CreatedAt: vote.CreatedAt,
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return ports.BoardVote{}, errs.Wrap(result.Error, "insert board vote")
	}
	if result.RowsAffected == 0 {
		return ports.BoardVote{}, ports.ErrDuplicateVote
	}
	return mapBoardVote(row), nil
}

func (r *VettingRepository) ListBoardVotes(ctx context.Context, vettingID uint64) ([]ports.BoardVote, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.BoardVote
	if err := db.Where("vetting_id = ?", vettingID).Order("vote_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query board votes")
	}

	items := make([]ports.BoardVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapBoardVote(row))
	}
	return items, nil
}

func takeSection(query *gorm.DB) (ports.ReportSection, error) {
	var row model.ReportSection
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ReportSection{}, ports.ErrSectionNotFound
		}
		return ports.ReportSection{}, errs.Wrap(err, "query report section")
	}
	return mapSection(row), nil
}

func mapVetting(row model.Vetting) (ports.Vetting, error) {
	var knownURLs []string
	if row.KnownURLsJSON != "" {
		if err := json.Unmarshal([]byte(row.KnownURLsJSON), &knownURLs); err != nil {
			return ports.Vetting{}, errs.Wrapf(err, "decode known urls of vetting %d", row.VettingID)
		}
	}

	return ports.Vetting{
		VettingID:         row.VettingID,
		CandidateName:     row.CandidateName,
		Office:            row.Office,
		District:          row.District,
		State:             row.State,
		Party:             row.Party,
		CommitteeID:       row.CommitteeID,
		Stage:             domainvetting.Stage(row.Stage),
		KnownURLs:         knownURLs,
		InterviewDate:     row.InterviewDate,
		InterviewNotes:    row.InterviewNotes,
		Recommendation:    stringPtrToOutcome(row.Recommendation),
		EndorsementResult: stringPtrToOutcome(row.EndorsementResult),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func mapSection(row model.ReportSection) ports.ReportSection {
	return ports.ReportSection{
		SectionID:    row.SectionID,
		VettingID:    row.VettingID,
		SectionType:  domainvetting.SectionType(row.SectionType),
		Status:       domainvetting.SectionStatus(row.Status),
		ReviewedData: row.ReviewedData,
		AIDraftData:  row.AIDraftData,
		Notes:        row.Notes,
		UpdatedAt:    row.UpdatedAt,
	}
}

func mapMember(row model.CommitteeMember) ports.CommitteeMember {
	return ports.CommitteeMember{
		MemberID:    row.MemberID,
		CommitteeID: row.CommitteeID,
		Name:        row.Name,
		Role:        domainvetting.CommitteeRole(row.Role),
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
	}
}

func opponentToRow(opponent ports.Opponent) model.Opponent {
	return model.Opponent{
		VettingID:  opponent.VettingID,
		Name:       opponent.Name,
		Party:      opponent.Party,
		Incumbent:  opponent.Incumbent,
		Background: opponent.Background,
		CreatedAt:  opponent.CreatedAt,
	}
}

func mapOpponent(row model.Opponent) ports.Opponent {
	return ports.Opponent{
		OpponentID: row.OpponentID,
		VettingID:  row.VettingID,
		Name:       row.Name,
		Party:      row.Party,
		Incumbent:  row.Incumbent,
		Background: row.Background,
		CreatedAt:  row.CreatedAt,
	}
}

func mapBoardVote(row model.BoardVote) ports.BoardVote {
	return ports.BoardVote{
		VoteID:    row.VoteID,
		VettingID: row.VettingID,
		VoterID:   row.VoterID,
		Vote:      domainvetting.VoteChoice(row.Vote),
		Comment:   row.Comment,
		CreatedAt: row.CreatedAt,
	}
}

func outcomePtrToString(outcome *domainvetting.Outcome) *string {
	if outcome == nil {
		return nil
	}
	value := string(*outcome)
	return &value
}

func stringPtrToOutcome(value *string) *domainvetting.Outcome {
	if value == nil {
		return nil
	}
	outcome := domainvetting.Outcome(*value)
	return &outcome
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
