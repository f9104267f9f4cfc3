package vetting

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "candidatevet/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "candidatevet/internal/infrastructure/persistence/sqlite/uow"
	"candidatevet/internal/ports"
)

var (
	nationalCaps = domainvetting.Capabilities{IsNational: true, MemberID: 1}
	chairCaps    = domainvetting.Capabilities{IsChair: true, IsActiveMember: true, MemberID: 2}
)

type testCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type recordedEvent struct {
	subject string
	payload any
}

type testPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *testPublisher) Publish(_ context.Context, subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{subject: subject, payload: payload})
	return nil
}

type testDrafts struct {
	calls    int
	lastType domainvetting.SectionType
	err      error
	// during runs while the draft is being generated.
	during func()
}

func (d *testDrafts) GenerateDraft(_ context.Context, request ports.DraftRequest) (map[string]any, error) {
	d.calls++
	if d.during != nil {
		d.during()
	}
	d.lastType = request.SectionType
	if d.err != nil {
		return nil, d.err
	}
	return map[string]any{"summary": "draft " + string(request.SectionType), "call": d.calls}, nil
}

type testEnv struct {
	svc    *Service
	repo   *sqliterepo.VettingRepository
	cache  *testCache
	events *testPublisher
	drafts *testDrafts
}

func setupService(t *testing.T) testEnv {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "vetting.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	env := testEnv{
		repo:   sqliterepo.NewVettingRepository(db),
		cache:  newTestCache(),
		events: &testPublisher{},
		drafts: &testDrafts{},
	}
	env.svc = NewService(env.repo, sqliteuow.NewUnitOfWork(db), env.cache, env.events, env.drafts)
	return env
}

func (e testEnv) createCommittee(t *testing.T) ports.Committee {
	t.Helper()
	committee, err := e.svc.CreateCommittee(context.Background(), nationalCaps, "Texas Committee")
	if err != nil {
		t.Fatalf("CreateCommittee() error = %v", err)
	}
	return committee
}

func (e testEnv) addMember(t *testing.T, committeeID uint64, name string, active bool) ports.CommitteeMember {
	t.Helper()
	member, err := e.svc.AddCommitteeMember(context.Background(), nationalCaps, AddCommitteeMemberInput{
		CommitteeID: committeeID,
		Name:        name,
		Active:      active,
	})
	if err != nil {
		t.Fatalf("AddCommitteeMember() error = %v", err)
	}
	return member
}

func (e testEnv) createVetting(t *testing.T, committeeID *uint64, opponents ...OpponentInput) ports.Vetting {
	t.Helper()
	vetting, err := e.svc.CreateVetting(context.Background(), nationalCaps, CreateVettingInput{
		CandidateName: "Jane Doe",
		Office:        "Senate",
		State:         "texas",
		CommitteeID:   committeeID,
		KnownURLs:     []string{"http://Example.com/x/", "https://example.com/x", " "},
		Opponents:     opponents,
	})
	if err != nil {
		t.Fatalf("CreateVetting() error = %v", err)
	}
	return vetting
}

// forceStage moves a vetting directly so tests can start mid-pipeline.
func (e testEnv) forceStage(t *testing.T, vettingID uint64, to domainvetting.Stage) {
	t.Helper()
	vetting, err := e.repo.GetVetting(context.Background(), vettingID)
	if err != nil {
		t.Fatalf("GetVetting() error = %v", err)
	}
	if _, err := e.repo.CompareAndSetStage(context.Background(), vettingID, vetting.Stage, to, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		t.Fatalf("CompareAndSetStage() error = %v", err)
	}
}

func (e testEnv) section(t *testing.T, vettingID uint64, sectionType domainvetting.SectionType) ports.ReportSection {
	t.Helper()
	section, err := e.repo.GetSectionByType(context.Background(), vettingID, sectionType)
	if err != nil {
		t.Fatalf("GetSectionByType() error = %v", err)
	}
	return section
}

func strPtr(value string) *string {
	return &value
}

func TestCreateVettingRequiresNational(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.CreateVetting(context.Background(), chairCaps, CreateVettingInput{CandidateName: "Jane Doe", Office: "Senate"})
	if !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("CreateVetting() error = %v, want permission", err)
	}
}

func TestCreateVettingNormalizesInput(t *testing.T) {
	env := setupService(t)
	vetting := env.createVetting(t, nil, OpponentInput{Name: "John Roe"})

	if vetting.Stage != domainvetting.StageSurveySubmitted {
		t.Fatalf("stage = %s", vetting.Stage)
	}
	if vetting.State != "TX" {
		t.Fatalf("state = %q, want TX", vetting.State)
	}
	if len(vetting.KnownURLs) != 1 {
		t.Fatalf("known urls = %v, want one deduplicated entry", vetting.KnownURLs)
	}

	sections, err := env.svc.ListSections(context.Background(), vetting.VettingID)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	if len(sections) != len(domainvetting.SectionTypes) {
		t.Fatalf("ListSections() len = %d", len(sections))
	}
	if env.cache.data[cacheStageKey(vetting.VettingID)] != string(domainvetting.StageSurveySubmitted) {
		t.Fatalf("stage cache = %v", env.cache.data)
	}
}

func TestCreateVettingValidation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	cases := []CreateVettingInput{
		{Office: "Senate"},
		{CandidateName: "Jane Doe"},
		{CandidateName: "Jane Doe", Office: "Senate", State: "Atlantis"},
		{CandidateName: "Jane Doe", Office: "Senate", Opponents: []OpponentInput{{Name: " "}}},
	}
	for _, input := range cases {
		if _, err := env.svc.CreateVetting(ctx, nationalCaps, input); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("CreateVetting(%+v) error = %v, want validation", input, err)
		}
	}

	missing := uint64(404)
	if _, err := env.svc.CreateVetting(ctx, nationalCaps, CreateVettingInput{CandidateName: "Jane Doe", Office: "Senate", CommitteeID: &missing}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("CreateVetting(missing committee) error = %v, want not found", err)
	}
}

func TestTransitionStagePublishesEvent(t *testing.T) {
	env := setupService(t)
	vetting := env.createVetting(t, nil)

	updated, err := env.svc.TransitionStage(context.Background(), chairCaps, TransitionStageInput{
		VettingID: vetting.VettingID,
		To:        string(domainvetting.StageAutoAudit),
	})
	if err != nil {
		t.Fatalf("TransitionStage() error = %v", err)
	}
	if updated.Stage != domainvetting.StageAutoAudit {
		t.Fatalf("stage = %s", updated.Stage)
	}
	if len(env.events.events) != 1 || env.events.events[0].subject != ports.SubjectStageChanged {
		t.Fatalf("events = %+v", env.events.events)
	}
	event, ok := env.events.events[0].payload.(ports.StageChangedEvent)
	if !ok || event.From != domainvetting.StageSurveySubmitted || event.To != domainvetting.StageAutoAudit || event.ActorID != chairCaps.MemberID {
		t.Fatalf("event payload = %+v", env.events.events[0].payload)
	}

	stage, err := env.svc.CachedStage(context.Background(), vetting.VettingID)
	if err != nil || stage != domainvetting.StageAutoAudit {
		t.Fatalf("CachedStage() = %s, %v", stage, err)
	}
}

func TestTransitionStageRejections(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)

	if _, err := env.svc.TransitionStage(ctx, domainvetting.Capabilities{IsActiveMember: true, MemberID: 9}, TransitionStageInput{VettingID: vetting.VettingID, To: "auto_audit"}); !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("TransitionStage(member) error = %v, want permission", err)
	}
	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "assigned"}); !errors.Is(err, domainvetting.ErrInvalidStageTransition) {
		t.Fatalf("TransitionStage(skip) error = %v, want invalid transition", err)
	}
	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "shipped"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("TransitionStage(unknown) error = %v, want validation", err)
	}
	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: 999, To: "auto_audit"}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("TransitionStage(missing) error = %v, want not found", err)
	}
	if len(env.events.events) != 0 {
		t.Fatalf("rejected transitions published events: %+v", env.events.events)
	}
}

func TestResearchToInterviewRequiresCompletedSections(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)
	env.forceStage(t, vetting.VettingID, domainvetting.StageResearch)

	_, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "interview"})
	if !errors.Is(err, domainvetting.ErrStageGate) {
		t.Fatalf("TransitionStage() error = %v, want gate", err)
	}

	for _, sectionType := range domainvetting.RequiredResearchSections {
		section := env.section(t, vetting.VettingID, sectionType)
		for _, status := range []string{"in_progress", "completed"} {
			if _, err := env.svc.UpdateSection(ctx, chairCaps, UpdateSectionInput{SectionID: section.SectionID, Status: strPtr(status)}); err != nil {
				t.Fatalf("UpdateSection(%s, %s) error = %v", sectionType, status, err)
			}
		}
	}

	updated, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "interview"})
	if err != nil {
		t.Fatalf("TransitionStage() after completion error = %v", err)
	}
	if updated.Stage != domainvetting.StageInterview {
		t.Fatalf("stage = %s", updated.Stage)
	}
}

func TestRecommendationGatesBoardVote(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)

	if _, err := env.svc.SetRecommendation(ctx, chairCaps, vetting.VettingID, "endorse"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("SetRecommendation(wrong stage) error = %v, want validation", err)
	}

	env.forceStage(t, vetting.VettingID, domainvetting.StageCommitteeReview)
	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "board_vote"}); !errors.Is(err, domainvetting.ErrStageGate) {
		t.Fatalf("TransitionStage(no recommendation) error = %v, want gate", err)
	}
	if _, err := env.svc.SetRecommendation(ctx, chairCaps, vetting.VettingID, "maybe"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("SetRecommendation(invalid) error = %v, want validation", err)
	}
	if _, err := env.svc.SetRecommendation(ctx, chairCaps, vetting.VettingID, "endorse"); err != nil {
		t.Fatalf("SetRecommendation() error = %v", err)
	}
	if _, err := env.svc.SetRecommendation(ctx, chairCaps, vetting.VettingID, "do_not_endorse"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("SetRecommendation(again) error = %v, want conflict", err)
	}
	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "board_vote"}); err != nil {
		t.Fatalf("TransitionStage() error = %v", err)
	}
}

func TestRecordInterview(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)
	env.forceStage(t, vetting.VettingID, domainvetting.StageInterview)

	if _, err := env.svc.RecordInterview(ctx, chairCaps, RecordInterviewInput{VettingID: vetting.VettingID, Date: "next week"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("RecordInterview(bad date) error = %v, want validation", err)
	}

	updated, err := env.svc.RecordInterview(ctx, chairCaps, RecordInterviewInput{VettingID: vetting.VettingID, Date: "2026-05-04", Notes: "strong on housing"})
	if err != nil {
		t.Fatalf("RecordInterview() error = %v", err)
	}
	if updated.InterviewDate == nil || *updated.InterviewDate != "2026-05-04" || updated.InterviewNotes != "strong on housing" {
		t.Fatalf("RecordInterview() = %+v", updated)
	}
}

func TestAssignSection(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	committee := env.createCommittee(t)
	member := env.addMember(t, committee.CommitteeID, "Ann", true)
	vetting := env.createVetting(t, &committee.CommitteeID)
	section := env.section(t, vetting.VettingID, domainvetting.SectionDistrictData)

	if _, err := env.svc.AssignSection(ctx, domainvetting.Capabilities{IsActiveMember: true, MemberID: member.MemberID}, section.SectionID, member.MemberID); !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("AssignSection(member) error = %v, want permission", err)
	}

	updated, err := env.svc.AssignSection(ctx, chairCaps, section.SectionID, member.MemberID)
	if err != nil {
		t.Fatalf("AssignSection() error = %v", err)
	}
	if updated.Status != domainvetting.SectionStatusAssigned {
		t.Fatalf("status after first assignment = %s", updated.Status)
	}

	if _, err := env.svc.AssignSection(ctx, chairCaps, section.SectionID, member.MemberID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("AssignSection(duplicate) error = %v, want conflict", err)
	}

	second := env.addMember(t, committee.CommitteeID, "Bo", true)
	again, err := env.svc.AssignSection(ctx, chairCaps, section.SectionID, second.MemberID)
	if err != nil {
		t.Fatalf("AssignSection(second) error = %v", err)
	}
	if again.Status != domainvetting.SectionStatusAssigned {
		t.Fatalf("status after second assignment = %s", again.Status)
	}

	if err := env.svc.UnassignSection(ctx, chairCaps, section.SectionID, second.MemberID); err != nil {
		t.Fatalf("UnassignSection() error = %v", err)
	}
	if err := env.svc.UnassignSection(ctx, chairCaps, section.SectionID, second.MemberID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("UnassignSection(again) error = %v, want not found", err)
	}
}

func TestAssignSectionRejectsInactiveOrForeignMembers(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	committee := env.createCommittee(t)
	vetting := env.createVetting(t, &committee.CommitteeID)
	section := env.section(t, vetting.VettingID, domainvetting.SectionVotingRules)

	inactive := env.addMember(t, committee.CommitteeID, "Cy", false)
	if _, err := env.svc.AssignSection(ctx, chairCaps, section.SectionID, inactive.MemberID); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("AssignSection(inactive) error = %v, want validation", err)
	}

	other, err := env.svc.CreateCommittee(ctx, nationalCaps, "Ohio Committee")
	if err != nil {
		t.Fatalf("CreateCommittee() error = %v", err)
	}
	foreign := env.addMember(t, other.CommitteeID, "Di", true)
	if _, err := env.svc.AssignSection(ctx, chairCaps, section.SectionID, foreign.MemberID); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("AssignSection(foreign) error = %v, want validation", err)
	}

	if got := env.section(t, vetting.VettingID, domainvetting.SectionVotingRules); got.Status != domainvetting.SectionStatusNotStarted {
		t.Fatalf("rejected assignment changed status to %s", got.Status)
	}
}

func TestUpdateSectionPermissionsAndTransitions(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	committee := env.createCommittee(t)
	assigned := env.addMember(t, committee.CommitteeID, "Ann", true)
	other := env.addMember(t, committee.CommitteeID, "Bo", true)
	vetting := env.createVetting(t, &committee.CommitteeID)
	section := env.section(t, vetting.VettingID, domainvetting.SectionCandidateBackground)

	if _, err := env.svc.AssignSection(ctx, chairCaps, section.SectionID, assigned.MemberID); err != nil {
		t.Fatalf("AssignSection() error = %v", err)
	}

	otherCaps := domainvetting.Capabilities{IsActiveMember: true, MemberID: other.MemberID}
	if _, err := env.svc.UpdateSection(ctx, otherCaps, UpdateSectionInput{SectionID: section.SectionID, Notes: strPtr("hi")}); !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("UpdateSection(unassigned) error = %v, want permission", err)
	}

	assignedCaps := domainvetting.Capabilities{IsActiveMember: true, MemberID: assigned.MemberID}
	if _, err := env.svc.UpdateSection(ctx, assignedCaps, UpdateSectionInput{SectionID: section.SectionID, Status: strPtr("completed")}); !errors.Is(err, domainvetting.ErrInvalidSectionTransition) {
		t.Fatalf("UpdateSection(assigned->completed) error = %v, want invalid transition", err)
	}
	if _, err := env.svc.UpdateSection(ctx, assignedCaps, UpdateSectionInput{SectionID: section.SectionID, ReviewedData: strPtr("{not json")}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("UpdateSection(bad json) error = %v, want validation", err)
	}
	if _, err := env.svc.UpdateSection(ctx, assignedCaps, UpdateSectionInput{SectionID: section.SectionID}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("UpdateSection(empty) error = %v, want validation", err)
	}

	updated, err := env.svc.UpdateSection(ctx, assignedCaps, UpdateSectionInput{
		SectionID:    section.SectionID,
		Status:       strPtr("in_progress"),
		ReviewedData: strPtr(`{"summary":"Former city council member"}`),
	})
	if err != nil {
		t.Fatalf("UpdateSection() error = %v", err)
	}
	if updated.Status != domainvetting.SectionStatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}

	views, err := env.svc.ListSections(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	for _, view := range views {
		if view.SectionID != section.SectionID {
			continue
		}
		if view.EffectiveContent != `{"summary":"Former city council member"}` {
			t.Fatalf("effective content = %q", view.EffectiveContent)
		}
		if len(view.AssignedMemberIDs) != 1 || view.AssignedMemberIDs[0] != assigned.MemberID {
			t.Fatalf("assigned ids = %v", view.AssignedMemberIDs)
		}
	}
}

func TestGenerateSectionDraft(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil, OpponentInput{Name: "John Roe", Incumbent: true})

	section, err := env.svc.GenerateSectionDraft(ctx, chairCaps, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "district_data"})
	if err != nil {
		t.Fatalf("GenerateSectionDraft() error = %v", err)
	}
	if section.AIDraftData == "" || env.drafts.lastType != domainvetting.SectionDistrictData {
		t.Fatalf("draft not stored: %+v", section)
	}

	if _, err := env.svc.GenerateSectionDraft(ctx, chairCaps, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "district_data"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("GenerateSectionDraft(existing) error = %v, want conflict", err)
	}

	forced, err := env.svc.GenerateSectionDraft(ctx, chairCaps, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "district_data", Force: true})
	if err != nil {
		t.Fatalf("GenerateSectionDraft(force) error = %v", err)
	}
	if forced.AIDraftData == section.AIDraftData {
		t.Fatalf("forced draft did not replace the previous one")
	}
	if env.drafts.calls != 2 {
		t.Fatalf("draft calls = %d, want 2", env.drafts.calls)
	}
}

func TestGenerateSectionDraftKeepsConcurrentDraft(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)
	target := env.section(t, vetting.VettingID, domainvetting.SectionDistrictData)

	competing := `{"summary":"written by another request"}`
	env.drafts.during = func() {
		stored, err := env.repo.StoreSectionDraft(ctx, target.SectionID, competing, false, "2026-10-01T00:00:00Z")
		if err != nil || !stored {
			t.Errorf("competing StoreSectionDraft() = %v, %v", stored, err)
		}
	}

	if _, err := env.svc.GenerateSectionDraft(ctx, chairCaps, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "district_data"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("GenerateSectionDraft() error = %v, want conflict", err)
	}
	if got := env.section(t, vetting.VettingID, domainvetting.SectionDistrictData); got.AIDraftData != competing {
		t.Fatalf("draft = %q, want the competing draft kept", got.AIDraftData)
	}
}

func TestGenerateSectionDraftFailures(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)

	if _, err := env.svc.GenerateSectionDraft(ctx, chairCaps, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "opponent_research"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("GenerateSectionDraft(no opponents) error = %v, want validation", err)
	}
	if _, err := env.svc.GenerateSectionDraft(ctx, domainvetting.Capabilities{IsActiveMember: true, MemberID: 50}, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "district_data"}); !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("GenerateSectionDraft(unassigned) error = %v, want permission", err)
	}

	env.drafts.err = errors.New("model overloaded")
	if _, err := env.svc.GenerateSectionDraft(ctx, chairCaps, GenerateDraftInput{VettingID: vetting.VettingID, SectionType: "district_data"}); !errors.Is(err, errs.ErrDependency) {
		t.Fatalf("GenerateSectionDraft(collaborator error) error = %v, want dependency", err)
	}
	if got := env.section(t, vetting.VettingID, domainvetting.SectionDistrictData); got.AIDraftData != "" {
		t.Fatalf("failed draft stored content %q", got.AIDraftData)
	}
}

func TestBoardVoteTallyAndFinalize(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)
	env.forceStage(t, vetting.VettingID, domainvetting.StageBoardVote)

	votes := []struct {
		voter uint64
		vote  string
	}{
		{voter: 11, vote: "endorse"},
		{voter: 12, vote: "endorse"},
		{voter: 13, vote: "do_not_endorse"},
		{voter: 14, vote: "abstain"},
	}
	for _, v := range votes {
		caps := domainvetting.Capabilities{IsBoardMember: true, MemberID: v.voter}
		if _, err := env.svc.RecordBoardVote(ctx, caps, RecordBoardVoteInput{VettingID: vetting.VettingID, Vote: v.vote}); err != nil {
			t.Fatalf("RecordBoardVote(%d) error = %v", v.voter, err)
		}
	}
	if _, err := env.svc.RecordBoardVote(ctx, domainvetting.Capabilities{IsBoardMember: true, MemberID: 11}, RecordBoardVoteInput{VettingID: vetting.VettingID, Vote: "endorse"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("RecordBoardVote(duplicate voter) error = %v, want conflict", err)
	}
	if _, err := env.svc.RecordBoardVote(ctx, chairCaps, RecordBoardVoteInput{VettingID: vetting.VettingID, Vote: "endorse"}); !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("RecordBoardVote(chair) error = %v, want permission", err)
	}

	tally, err := env.svc.GetBoardTally(ctx, vetting.VettingID)
	if err != nil {
		t.Fatalf("GetBoardTally() error = %v", err)
	}
	if tally.Tally.Endorse != 2 || tally.Tally.DoNotEndorse != 1 || tally.Tally.Abstain != 1 || tally.Result != domainvetting.OutcomeEndorse {
		t.Fatalf("tally = %+v", tally)
	}

	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "press_release_created"}); !errors.Is(err, domainvetting.ErrStageGate) {
		t.Fatalf("TransitionStage(unfinalized) error = %v, want gate", err)
	}
	if _, err := env.svc.FinalizeEndorsement(ctx, chairCaps, vetting.VettingID); !errors.Is(err, errs.ErrPermission) {
		t.Fatalf("FinalizeEndorsement(chair) error = %v, want permission", err)
	}

	finalized, err := env.svc.FinalizeEndorsement(ctx, nationalCaps, vetting.VettingID)
	if err != nil {
		t.Fatalf("FinalizeEndorsement() error = %v", err)
	}
	if finalized.EndorsementResult == nil || *finalized.EndorsementResult != domainvetting.OutcomeEndorse {
		t.Fatalf("endorsement result = %v", finalized.EndorsementResult)
	}
	if _, err := env.svc.FinalizeEndorsement(ctx, nationalCaps, vetting.VettingID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("FinalizeEndorsement(again) error = %v, want conflict", err)
	}
	if _, err := env.svc.RecordBoardVote(ctx, domainvetting.Capabilities{IsBoardMember: true, MemberID: 15}, RecordBoardVoteInput{VettingID: vetting.VettingID, Vote: "endorse"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("RecordBoardVote(after finalize) error = %v, want conflict", err)
	}

	if _, err := env.svc.TransitionStage(ctx, chairCaps, TransitionStageInput{VettingID: vetting.VettingID, To: "press_release_created"}); err != nil {
		t.Fatalf("TransitionStage(finalized) error = %v", err)
	}
}

func TestBoardTieFinalizesNoPosition(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	vetting := env.createVetting(t, nil)
	env.forceStage(t, vetting.VettingID, domainvetting.StageBoardVote)

	for voter, vote := range map[uint64]string{21: "endorse", 22: "do_not_endorse"} {
		caps := domainvetting.Capabilities{IsBoardMember: true, MemberID: voter}
		if _, err := env.svc.RecordBoardVote(ctx, caps, RecordBoardVoteInput{VettingID: vetting.VettingID, Vote: vote}); err != nil {
			t.Fatalf("RecordBoardVote() error = %v", err)
		}
	}

	finalized, err := env.svc.FinalizeEndorsement(ctx, nationalCaps, vetting.VettingID)
	if err != nil {
		t.Fatalf("FinalizeEndorsement() error = %v", err)
	}
	if *finalized.EndorsementResult != domainvetting.OutcomeNoPosition {
		t.Fatalf("tie result = %s, want no_position", *finalized.EndorsementResult)
	}
}

func TestPipelineBoardGroupsByStage(t *testing.T) {
	env := setupService(t)
	first := env.createVetting(t, nil)
	second := env.createVetting(t, nil)
	env.forceStage(t, second.VettingID, domainvetting.StageResearch)

	columns, err := env.svc.PipelineBoard(context.Background())
	if err != nil {
		t.Fatalf("PipelineBoard() error = %v", err)
	}
	if len(columns) != len(domainvetting.Stages) {
		t.Fatalf("columns = %d", len(columns))
	}
	for _, column := range columns {
		switch column.Stage {
		case domainvetting.StageSurveySubmitted:
			if len(column.Vettings) != 1 || column.Vettings[0].VettingID != first.VettingID {
				t.Fatalf("survey column = %+v", column.Vettings)
			}
		case domainvetting.StageResearch:
			if len(column.Vettings) != 1 || column.Vettings[0].VettingID != second.VettingID {
				t.Fatalf("research column = %+v", column.Vettings)
			}
		default:
			if len(column.Vettings) != 0 {
				t.Fatalf("column %s = %+v", column.Stage, column.Vettings)
			}
		}
	}
}
