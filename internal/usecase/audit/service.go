package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

const (
	defaultOpponentConcurrency = 4
	stageCacheTTL              = 10 * time.Minute
)

type Config struct {
	Discovery           DiscoveryConfig
	OpponentConcurrency int
}

type Service struct {
	audits    ports.AuditRepository
	vettings  ports.VettingRepository
	uow       ports.UnitOfWork
	discovery *Discovery
	cache     ports.Cache
	events    ports.EventPublisher
	cfg       Config
	now       func() time.Time
	newRunID  func() string
}

// NewService wires the audit orchestrator. cache and events are optional.
func NewService(
	audits ports.AuditRepository,
	vettings ports.VettingRepository,
	uow ports.UnitOfWork,
	search ports.SearchProvider,
	cache ports.Cache,
	events ports.EventPublisher,
	cfg Config,
) *Service {
	if cfg.OpponentConcurrency < 1 {
		cfg.OpponentConcurrency = defaultOpponentConcurrency
	}
	return &Service{
		audits:    audits,
		vettings:  vettings,
		uow:       uow,
		discovery: NewDiscovery(search, cfg.Discovery),
		cache:     cache,
		events:    events,
		cfg:       cfg,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// AuditCompletedEvent is published on audit.completed.
type AuditCompletedEvent struct {
	AuditID         uint64 `json:"audit_id"`
	VettingID       uint64 `json:"vetting_id"`
	RunID           string `json:"run_id"`
	Score           int    `json:"score"`
	Grade           string `json:"grade"`
	Platforms       int    `json:"platforms"`
	StageAdvanced   bool   `json:"stage_advanced"`
	FailedOpponents int    `json:"failed_opponents"`
}

// AuditFailedEvent is published on audit.failed.
type AuditFailedEvent struct {
	AuditID   uint64 `json:"audit_id"`
	VettingID uint64 `json:"vetting_id"`
	RunID     string `json:"run_id"`
	Error     string `json:"error"`
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.audits == nil {
		return errors.New("audit repository is required")
	}
	if s.vettings == nil {
		return errors.New("vetting repository is required")
	}
	if s.uow == nil {
		return errors.New("audit unit of work is required")
	}
	return nil
}

func (s *Service) nowString() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) GetAudit(ctx context.Context, auditID uint64) (ports.DigitalAudit, error) {
	if err := s.check(ctx); err != nil {
		return ports.DigitalAudit{}, err
	}
	return s.audits.GetAudit(ctx, auditID)
}

func (s *Service) GetLatestAudit(ctx context.Context, vettingID uint64) (ports.DigitalAudit, error) {
	if err := s.check(ctx); err != nil {
		return ports.DigitalAudit{}, err
	}
	if _, err := s.vettings.GetVetting(ctx, vettingID); err != nil {
		return ports.DigitalAudit{}, err
	}
	return s.audits.GetLatestAudit(ctx, vettingID)
}

func (s *Service) ListAuditPlatforms(ctx context.Context, auditID uint64) ([]ports.AuditPlatform, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if _, err := s.audits.GetAudit(ctx, auditID); err != nil {
		return nil, err
	}
	return s.audits.ListPlatforms(ctx, auditID)
}

func (s *Service) publishBestEffort(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "usecase.audit")),
			"publish event failed",
			slog.String("subject", subject),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func (s *Service) cacheStageBestEffort(ctx context.Context, vettingID uint64, stage string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ports.VettingStageKey(vettingID), stage, stageCacheTTL); err != nil {
		logging.Warn(
			logging.WithVetting(logging.WithComponent(ctx, "usecase.audit"), vettingID),
			"cache set failed",
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
