package ports

import (
	"context"

	domainvetting "candidatevet/internal/domain/vetting"
)

const (
	SubjectStageChanged   = "vetting.stage_changed"
	SubjectAuditCompleted = "audit.completed"
	SubjectAuditFailed    = "audit.failed"
)

// EventPublisher is best-effort; usecases log and ignore its errors.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// StageChangedEvent is published on vetting.stage_changed by both manual and audit-driven moves.
type StageChangedEvent struct {
	VettingID uint64              `json:"vetting_id"`
	From      domainvetting.Stage `json:"from"`
	To        domainvetting.Stage `json:"to"`
	ActorID   uint64              `json:"actor_id,omitempty"`
	Source    string              `json:"source"`
	ChangedAt string              `json:"changed_at"`
}
