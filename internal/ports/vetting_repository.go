package ports

import (
	"context"
	"fmt"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
)

var (
	ErrVettingNotFound     = fmt.Errorf("%w: vetting", errs.ErrNotFound)
	ErrSectionNotFound     = fmt.Errorf("%w: report section", errs.ErrNotFound)
	ErrCommitteeNotFound   = fmt.Errorf("%w: committee", errs.ErrNotFound)
	ErrMemberNotFound      = fmt.Errorf("%w: committee member", errs.ErrNotFound)
	ErrAssignmentNotFound  = fmt.Errorf("%w: section assignment", errs.ErrNotFound)
	ErrDuplicateAssignment = fmt.Errorf("%w: section already assigned to member", errs.ErrConflict)
	ErrDuplicateVote       = fmt.Errorf("%w: voter already voted on this vetting", errs.ErrConflict)
)

type Vetting struct {
	VettingID         uint64
	CandidateName     string
	Office            string
	District          string
	State             string
	Party             string
	CommitteeID       *uint64
	Stage             domainvetting.Stage
	KnownURLs         []string
	InterviewDate     *string
	InterviewNotes    string
	Recommendation    *domainvetting.Outcome
	EndorsementResult *domainvetting.Outcome
	CreatedAt         string
	UpdatedAt         string
}

type VettingFilter struct {
	Stage domainvetting.Stage
}

type ReportSection struct {
	SectionID    uint64
	VettingID    uint64
	SectionType  domainvetting.SectionType
	Status       domainvetting.SectionStatus
	ReviewedData string
	AIDraftData  string
	Notes        string
	UpdatedAt    string
}

// SectionUpdate writes only the non-nil fields.
type SectionUpdate struct {
	SectionID    uint64
	Status       *domainvetting.SectionStatus
	ReviewedData *string
	AIDraftData  *string
	Notes        *string
	UpdatedAt    string
}

type SectionAssignment struct {
	SectionID  uint64
	MemberID   uint64
	AssignedAt string
}

type Committee struct {
	CommitteeID uint64
	Name        string
	CreatedAt   string
}

type CommitteeMember struct {
	MemberID    uint64
	CommitteeID uint64
	Name        string
	Role        domainvetting.CommitteeRole
	Active      bool
	CreatedAt   string
}

type Opponent struct {
	OpponentID uint64
	VettingID  uint64
	Name       string
	Party      string
	Incumbent  bool
	Background string
	CreatedAt  string
}

type BoardVote struct {
	VoteID    uint64
	VettingID uint64
	VoterID   uint64
	Vote      domainvetting.VoteChoice
	Comment   string
	CreatedAt string
}

type VettingReadRepository interface {
	GetVetting(ctx context.Context, vettingID uint64) (Vetting, error)
	ListVettings(ctx context.Context, filter VettingFilter) ([]Vetting, error)
	ListSections(ctx context.Context, vettingID uint64) ([]ReportSection, error)
	GetSection(ctx context.Context, sectionID uint64) (ReportSection, error)
	GetSectionByType(ctx context.Context, vettingID uint64, sectionType domainvetting.SectionType) (ReportSection, error)
	ListAssignments(ctx context.Context, sectionID uint64) ([]SectionAssignment, error)
	GetCommittee(ctx context.Context, committeeID uint64) (Committee, error)
	GetCommitteeMember(ctx context.Context, memberID uint64) (CommitteeMember, error)
	ListOpponents(ctx context.Context, vettingID uint64) ([]Opponent, error)
	ListBoardVotes(ctx context.Context, vettingID uint64) ([]BoardVote, error)
}

type VettingRepository interface {
	VettingReadRepository
	// CreateVetting inserts the vetting with one section per type and its opponents.
	CreateVetting(ctx context.Context, vetting Vetting, sectionTypes []domainvetting.SectionType, opponents []Opponent) (Vetting, error)
	// CompareAndSetStage moves the stage only when it still equals from.
	CompareAndSetStage(ctx context.Context, vettingID uint64, from domainvetting.Stage, to domainvetting.Stage, updatedAt string) (bool, error)
	SetRecommendation(ctx context.Context, vettingID uint64, recommendation domainvetting.Outcome, updatedAt string) error
	// SetEndorsementResult writes the result only when none is recorded yet.
	SetEndorsementResult(ctx context.Context, vettingID uint64, result domainvetting.Outcome, updatedAt string) (bool, error)
	SetInterview(ctx context.Context, vettingID uint64, interviewDate string, notes string, updatedAt string) error
	UpdateSection(ctx context.Context, update SectionUpdate) error
	// StoreSectionDraft writes the AI draft. Without overwrite it only writes when the
	// section has no draft yet and reports false otherwise.
	StoreSectionDraft(ctx context.Context, sectionID uint64, draft string, overwrite bool, updatedAt string) (bool, error)
	CreateAssignment(ctx context.Context, assignment SectionAssignment) error
	DeleteAssignment(ctx context.Context, sectionID uint64, memberID uint64) error
	CreateCommittee(ctx context.Context, committee Committee) (Committee, error)
	CreateCommitteeMember(ctx context.Context, member CommitteeMember) (CommitteeMember, error)
	CreateOpponent(ctx context.Context, opponent Opponent) (Opponent, error)
	CreateBoardVote(ctx context.Context, vote BoardVote) (BoardVote, error)
}
