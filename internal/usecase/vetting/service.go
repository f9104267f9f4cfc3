package vetting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

const stageCacheTTL = 10 * time.Minute

type Service struct {
	repo   ports.VettingRepository
	uow    ports.UnitOfWork
	cache  ports.Cache
	events ports.EventPublisher
	drafts ports.DraftGenerator
	now    func() time.Time
}

// NewService wires vetting usecases. cache, events and drafts are optional.
func NewService(repo ports.VettingRepository, uow ports.UnitOfWork, cache ports.Cache, events ports.EventPublisher, drafts ports.DraftGenerator) *Service {
	return &Service{
		repo:   repo,
		uow:    uow,
		cache:  cache,
		events: events,
		drafts: drafts,
		now:    time.Now,
	}
}

type OpponentInput struct {
	Name       string
	Party      string
	Incumbent  bool
	Background string
}

type CreateVettingInput struct {
	CandidateName string
	Office        string
	District      string
	State         string
	Party         string
	CommitteeID   *uint64
	KnownURLs     []string
	Opponents     []OpponentInput
}

type TransitionStageInput struct {
	VettingID uint64
	To        string
}

type RecordInterviewInput struct {
	VettingID uint64
	Date      string
	Notes     string
}

type AddCommitteeMemberInput struct {
	CommitteeID uint64
	Name        string
	Role        string
	Active      bool
}

type UpdateSectionInput struct {
	SectionID    uint64
	Status       *string
	ReviewedData *string
	Notes        *string
}

type GenerateDraftInput struct {
	VettingID   uint64
	SectionType string
	Force       bool
}

type RecordBoardVoteInput struct {
	VettingID uint64
	Vote      string
	Comment   string
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("vetting repository is required")
	}
	if s.uow == nil {
		return errors.New("vetting unit of work is required")
	}
	return nil
}

func (s *Service) nowString() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Service) publishBestEffort(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "usecase.vetting")),
			"publish event failed",
			slog.String("subject", subject),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, stageCacheTTL); err != nil {
		logging.Warn(
			logging.WithAttrs(ctx, slog.String("component", "usecase.vetting")),
			"cache set failed",
			slog.String("key", key),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

func cacheStageKey(vettingID uint64) string {
	return ports.VettingStageKey(vettingID)
}

func permissionDenied(action string) error {
	return errs.Permissionf("not allowed to %s", action)
}
