package ports

import (
	"context"
	"fmt"

	domainaudit "candidatevet/internal/domain/audit"
	"candidatevet/internal/errs"
)

var ErrAuditNotFound = fmt.Errorf("%w: digital audit", errs.ErrNotFound)

type DigitalAudit struct {
	AuditID             uint64
	VettingID           uint64
	RunID               string
	Status              domainaudit.Status
	Score               *int
	Grade               string
	BreakdownJSON       string
	RiskJSON            string
	OpponentResultsJSON string
	DiscoveryLogJSON    string
	ErrorMessage        *string
	CreatedAt           string
	StartedAt           *string
	FinishedAt          *string
}

type AuditCompletion struct {
	AuditID             uint64
	Score               int
	Grade               string
	BreakdownJSON       string
	RiskJSON            string
	OpponentResultsJSON string
	DiscoveryLogJSON    string
	FinishedAt          string
}

type AuditPlatform struct {
	PlatformID      uint64
	AuditID         uint64
	EntityType      domainaudit.EntityType
	EntityName      string
	URL             string
	PlatformType    string
	PlatformName    string
	Category        domainaudit.Category
	Confidence      float64
	ConfidenceLevel domainaudit.ConfidenceLevel
	Presence        float64
	Consistency     float64
	Quality         float64
	Accessibility   float64
	TotalScore      int
	Grade           string
	HasContactInfo  bool
	HasEmail        bool
	HasPhone        bool
	HasWebsite      bool
	CreatedAt       string
}

type AuditRepository interface {
	CreateAudit(ctx context.Context, audit DigitalAudit) (DigitalAudit, error)
	GetAudit(ctx context.Context, auditID uint64) (DigitalAudit, error)
	GetLatestAudit(ctx context.Context, vettingID uint64) (DigitalAudit, error)
	FindActiveAudit(ctx context.Context, vettingID uint64) (DigitalAudit, bool, error)
	// MarkAuditRunning moves pending → running and reports whether it did.
	MarkAuditRunning(ctx context.Context, auditID uint64, startedAt string) (bool, error)
	CompleteAudit(ctx context.Context, completion AuditCompletion) error
	FailAudit(ctx context.Context, auditID uint64, message string, finishedAt string) error
	InsertPlatforms(ctx context.Context, platforms []AuditPlatform) error
	ListPlatforms(ctx context.Context, auditID uint64) ([]AuditPlatform, error)
}
