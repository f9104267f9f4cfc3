package repository

import (
	"context"
	"errors"
	"testing"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/infrastructure/persistence/sqlite/uow"
	"candidatevet/internal/ports"
)

func createTestVetting(t *testing.T, repo *VettingRepository, stage domainvetting.Stage) ports.Vetting {
	t.Helper()

	now := nowString()
	vetting, err := repo.CreateVetting(context.Background(), ports.Vetting{
		CandidateName: "Jane Doe",
		Office:        "Senate",
		State:         "TX",
		Stage:         stage,
		KnownURLs:     []string{"https://janedoe.com"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, domainvetting.SectionTypes, []ports.Opponent{{Name: "John Roe", Incumbent: true}})
	if err != nil {
		t.Fatalf("CreateVetting() error = %v", err)
	}
	return vetting
}

func TestCreateVettingCreatesSectionsAndOpponents(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()

	vetting := createTestVetting(t, repo, domainvetting.StageAutoAudit)
	if vetting.VettingID == 0 {
		t.Fatalf("CreateVetting() returned zero id")
	}

	got, err := repo.GetVetting(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("GetVetting() error = %v", err)
	}
	if len(got.KnownURLs) != 1 || got.KnownURLs[0] != "https://janedoe.com" {
		t.Fatalf("GetVetting() known urls = %v", got.KnownURLs)
	}
	if got.Recommendation != nil || got.EndorsementResult != nil {
		t.Fatalf("GetVetting() expected nil recommendation and result")
	}

	sections, err := repo.ListSections(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	if len(sections) != len(domainvetting.SectionTypes) {
		t.Fatalf("ListSections() len = %d", len(sections))
	}
	for _, section := range sections {
		if section.Status != domainvetting.SectionStatusNotStarted {
			t.Fatalf("section %s status = %s", section.SectionType, section.Status)
		}
	}

	opponents, err := repo.ListOpponents(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("ListOpponents() error = %v", err)
	}
	if len(opponents) != 1 || !opponents[0].Incumbent || opponents[0].Name != "John Roe" {
		t.Fatalf("ListOpponents() = %+v", opponents)
	}
}

func TestGetVettingNotFound(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))

	_, err := repo.GetVetting(context.Background(), 404)
	if !errors.Is(err, ports.ErrVettingNotFound) || !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("GetVetting() error = %v, want not found", err)
	}
}

func TestListVettingsFiltersByStage(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	createTestVetting(t, repo, domainvetting.StageAutoAudit)
	second := createTestVetting(t, repo, domainvetting.StageResearch)

	items, err := repo.ListVettings(context.Background(), ports.VettingFilter{Stage: domainvetting.StageResearch})
	if err != nil {
		t.Fatalf("ListVettings() error = %v", err)
	}
	if len(items) != 1 || items[0].VettingID != second.VettingID {
		t.Fatalf("ListVettings() = %+v", items)
	}
}

func TestCompareAndSetStageOnlyMovesFromExpectedStage(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageAutoAudit)

	moved, err := repo.CompareAndSetStage(ctx, vetting.VettingID, domainvetting.StageAutoAudit, domainvetting.StageAssigned, nowString())
	if err != nil {
		t.Fatalf("CompareAndSetStage() error = %v", err)
	}
	if !moved {
		t.Fatalf("CompareAndSetStage() expected moved=true")
	}

	moved, err = repo.CompareAndSetStage(ctx, vetting.VettingID, domainvetting.StageAutoAudit, domainvetting.StageAssigned, nowString())
	if err != nil {
		t.Fatalf("CompareAndSetStage(second) error = %v", err)
	}
	if moved {
		t.Fatalf("CompareAndSetStage(second) expected moved=false")
	}

	got, err := repo.GetVetting(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("GetVetting() error = %v", err)
	}
	if got.Stage != domainvetting.StageAssigned {
		t.Fatalf("stage = %s", got.Stage)
	}
}

func TestCreateAssignmentRejectsDuplicate(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageAssigned)

	section, err := repo.GetSectionByType(ctx, vetting.VettingID, domainvetting.SectionVotingRules)
	if err != nil {
		t.Fatalf("GetSectionByType() error = %v", err)
	}

	assignment := ports.SectionAssignment{SectionID: section.SectionID, MemberID: 7, AssignedAt: nowString()}
	if err := repo.CreateAssignment(ctx, assignment); err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	err = repo.CreateAssignment(ctx, assignment)
	if !errors.Is(err, ports.ErrDuplicateAssignment) || !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("CreateAssignment(duplicate) error = %v, want conflict", err)
	}

	assignments, err := repo.ListAssignments(ctx, section.SectionID)
	if err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("ListAssignments() len = %d", len(assignments))
	}

	if err := repo.DeleteAssignment(ctx, section.SectionID, 7); err != nil {
		t.Fatalf("DeleteAssignment() error = %v", err)
	}
	if err := repo.DeleteAssignment(ctx, section.SectionID, 7); !errors.Is(err, ports.ErrAssignmentNotFound) {
		t.Fatalf("DeleteAssignment(again) error = %v", err)
	}
}

func TestUpdateSectionWritesOnlyProvidedFields(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageResearch)

	section, err := repo.GetSectionByType(ctx, vetting.VettingID, domainvetting.SectionDistrictData)
	if err != nil {
		t.Fatalf("GetSectionByType() error = %v", err)
	}

	draft := `{"summary":"draft"}`
	if err := repo.UpdateSection(ctx, ports.SectionUpdate{SectionID: section.SectionID, AIDraftData: &draft, UpdatedAt: nowString()}); err != nil {
		t.Fatalf("UpdateSection(draft) error = %v", err)
	}
	status := domainvetting.SectionStatusInProgress
	notes := "checked census tables"
	if err := repo.UpdateSection(ctx, ports.SectionUpdate{SectionID: section.SectionID, Status: &status, Notes: &notes, UpdatedAt: nowString()}); err != nil {
		t.Fatalf("UpdateSection(status) error = %v", err)
	}

	got, err := repo.GetSection(ctx, section.SectionID)
	if err != nil {
		t.Fatalf("GetSection() error = %v", err)
	}
	if got.AIDraftData != draft || got.Status != status || got.Notes != notes {
		t.Fatalf("GetSection() = %+v", got)
	}

	if err := repo.UpdateSection(ctx, ports.SectionUpdate{SectionID: 9999, Notes: &notes, UpdatedAt: nowString()}); !errors.Is(err, ports.ErrSectionNotFound) {
		t.Fatalf("UpdateSection(missing) error = %v", err)
	}
}

func TestStoreSectionDraftOnlyFillsEmptyDraft(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageResearch)

	section, err := repo.GetSectionByType(ctx, vetting.VettingID, domainvetting.SectionVotingRules)
	if err != nil {
		t.Fatalf("GetSectionByType() error = %v", err)
	}

	stored, err := repo.StoreSectionDraft(ctx, section.SectionID, `{"summary":"first"}`, false, nowString())
	if err != nil || !stored {
		t.Fatalf("StoreSectionDraft(first) = %v, %v", stored, err)
	}
	stored, err = repo.StoreSectionDraft(ctx, section.SectionID, `{"summary":"second"}`, false, nowString())
	if err != nil || stored {
		t.Fatalf("StoreSectionDraft(second) = %v, %v, want not stored", stored, err)
	}
	got, err := repo.GetSection(ctx, section.SectionID)
	if err != nil {
		t.Fatalf("GetSection() error = %v", err)
	}
	if got.AIDraftData != `{"summary":"first"}` {
		t.Fatalf("draft = %q", got.AIDraftData)
	}

	stored, err = repo.StoreSectionDraft(ctx, section.SectionID, `{"summary":"forced"}`, true, nowString())
	if err != nil || !stored {
		t.Fatalf("StoreSectionDraft(overwrite) = %v, %v", stored, err)
	}
	if _, err := repo.StoreSectionDraft(ctx, 9999, "{}", true, nowString()); !errors.Is(err, ports.ErrSectionNotFound) {
		t.Fatalf("StoreSectionDraft(missing) error = %v", err)
	}
}

func TestSetEndorsementResultOnlyOnce(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageBoardVote)

	set, err := repo.SetEndorsementResult(ctx, vetting.VettingID, domainvetting.OutcomeEndorse, nowString())
	if err != nil || !set {
		t.Fatalf("SetEndorsementResult() = %v, %v", set, err)
	}
	set, err = repo.SetEndorsementResult(ctx, vetting.VettingID, domainvetting.OutcomeDoNotEndorse, nowString())
	if err != nil || set {
		t.Fatalf("SetEndorsementResult(second) = %v, %v", set, err)
	}

	got, err := repo.GetVetting(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("GetVetting() error = %v", err)
	}
	if got.EndorsementResult == nil || *got.EndorsementResult != domainvetting.OutcomeEndorse {
		t.Fatalf("endorsement result = %v", got.EndorsementResult)
	}
}

func TestCreateBoardVoteRejectsSecondVoteFromSameVoter(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageBoardVote)

	vote := ports.BoardVote{VettingID: vetting.VettingID, VoterID: 3, Vote: domainvetting.VoteEndorse, CreatedAt: nowString()}
	if _, err := repo.CreateBoardVote(ctx, vote); err != nil {
		t.Fatalf("CreateBoardVote() error = %v", err)
	}
	if _, err := repo.CreateBoardVote(ctx, vote); !errors.Is(err, ports.ErrDuplicateVote) {
		t.Fatalf("CreateBoardVote(duplicate) error = %v", err)
	}

	votes, err := repo.ListBoardVotes(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("ListBoardVotes() error = %v", err)
	}
	if len(votes) != 1 || votes[0].Vote != domainvetting.VoteEndorse {
		t.Fatalf("ListBoardVotes() = %+v", votes)
	}
}

func TestCommitteeMemberKeepsInactiveFlag(t *testing.T) {
	repo := NewVettingRepository(setupDB(t))
	ctx := context.Background()

	committee, err := repo.CreateCommittee(ctx, ports.Committee{Name: "Texas", CreatedAt: nowString()})
	if err != nil {
		t.Fatalf("CreateCommittee() error = %v", err)
	}
	if _, err := repo.CreateCommittee(ctx, ports.Committee{Name: "Texas", CreatedAt: nowString()}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("CreateCommittee(duplicate) error = %v", err)
	}

	member, err := repo.CreateCommitteeMember(ctx, ports.CommitteeMember{
		CommitteeID: committee.CommitteeID,
		Name:        "Ann",
		Role:        domainvetting.CommitteeRoleMember,
		Active:      false,
		CreatedAt:   nowString(),
	})
	if err != nil {
		t.Fatalf("CreateCommitteeMember() error = %v", err)
	}

	got, err := repo.GetCommitteeMember(ctx, member.MemberID)
	if err != nil {
		t.Fatalf("GetCommitteeMember() error = %v", err)
	}
	if got.Active {
		t.Fatalf("GetCommitteeMember() active = true, want false")
	}
}

func TestUnitOfWorkRollsBackRepositoryWrites(t *testing.T) {
	db := setupDB(t)
	repo := NewVettingRepository(db)
	unit := uow.NewUnitOfWork(db)
	ctx := context.Background()
	vetting := createTestVetting(t, repo, domainvetting.StageAutoAudit)

	wantErr := errors.New("boom")
	err := unit.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := repo.CompareAndSetStage(txCtx, vetting.VettingID, domainvetting.StageAutoAudit, domainvetting.StageAssigned, nowString()); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithTx() error = %v", err)
	}

	got, err := repo.GetVetting(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("GetVetting() error = %v", err)
	}
	if got.Stage != domainvetting.StageAutoAudit {
		t.Fatalf("stage after rollback = %s", got.Stage)
	}
}
