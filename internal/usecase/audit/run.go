package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"candidatevet/internal/bootstrap/logging"
	domainaudit "candidatevet/internal/domain/audit"
	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

const failureRecordTimeout = 10 * time.Second

// OpponentResult is one opponent's mini-audit. A failed opponent keeps its error and is
// left out of the competitive comparison.
type OpponentResult struct {
	OpponentID    uint64                       `json:"opponent_id"`
	Name          string                       `json:"name"`
	AuditFailed   bool                         `json:"audit_failed"`
	Error         string                       `json:"error,omitempty"`
	PlatformCount int                          `json:"platform_count"`
	AverageScore  float64                      `json:"average_score"`
	Risk          *domainaudit.RiskProfile     `json:"risk,omitempty"`
	Platforms     []domainaudit.ScoredPlatform `json:"-"`
	Discovery     DiscoveryResult              `json:"-"`
}

// report is everything one successful run produced, before it is persisted.
type report struct {
	audit     ports.DigitalAudit
	vetting   ports.Vetting
	discovery DiscoveryResult
	platforms []domainaudit.ScoredPlatform
	opponents []OpponentResult
	overall   domainaudit.OverallScore
	risk      domainaudit.RiskProfile
}

func (r report) failedOpponents() int {
	count := 0
	for _, opponent := range r.opponents {
		if opponent.AuditFailed {
			count++
		}
	}
	return count
}

// StartAudit creates a pending audit. Only one audit per vetting may be pending or running.
func (s *Service) StartAudit(ctx context.Context, caps domainvetting.Capabilities, vettingID uint64) (ports.DigitalAudit, error) {
	if err := s.check(ctx); err != nil {
		return ports.DigitalAudit{}, err
	}
	if !caps.CanStartAudit() {
		return ports.DigitalAudit{}, errs.Permissionf("not allowed to start audits")
	}

	var created ports.DigitalAudit
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.vettings.GetVetting(txCtx, vettingID); err != nil {
			return err
		}
		active, found, err := s.audits.FindActiveAudit(txCtx, vettingID)
		if err != nil {
			return err
		}
		if found {
			return errs.Conflictf("vetting %d already has %s audit %d", vettingID, active.Status, active.AuditID)
		}

		audit, err := s.audits.CreateAudit(txCtx, ports.DigitalAudit{
			VettingID: vettingID,
			RunID:     s.newRunID(),
			Status:    domainaudit.StatusPending,
			CreatedAt: s.nowString(),
		})
		if err != nil {
			return err
		}
		created = audit
		return nil
	}); err != nil {
		return ports.DigitalAudit{}, err
	}

	logging.Info(
		logging.WithAudit(logging.WithComponent(ctx, "usecase.audit"), created.AuditID, vettingID, created.RunID),
		"audit created",
	)
	return created, nil
}

// StartAndRun creates an audit and drives it to a terminal state.
func (s *Service) StartAndRun(ctx context.Context, caps domainvetting.Capabilities, vettingID uint64) (ports.DigitalAudit, error) {
	audit, err := s.StartAudit(ctx, caps, vettingID)
	if err != nil {
		return ports.DigitalAudit{}, err
	}
	return s.RunAudit(ctx, audit.AuditID)
}

// RunAudit moves a pending audit through running to completed or failed. Failures inside
// the run are recorded on the audit, which is returned with a nil error.
func (s *Service) RunAudit(ctx context.Context, auditID uint64) (ports.DigitalAudit, error) {
	if err := s.check(ctx); err != nil {
		return ports.DigitalAudit{}, err
	}

	audit, err := s.audits.GetAudit(ctx, auditID)
	if err != nil {
		return ports.DigitalAudit{}, err
	}
	started, err := s.audits.MarkAuditRunning(ctx, auditID, s.nowString())
	if err != nil {
		return ports.DigitalAudit{}, err
	}
	if !started {
		return ports.DigitalAudit{}, errs.Conflictf("audit %d is %s, only pending audits can run", auditID, audit.Status)
	}

	logCtx := logging.WithAudit(logging.WithComponent(ctx, "usecase.audit"), audit.AuditID, audit.VettingID, audit.RunID)
	logging.Info(logCtx, "audit running")

	result, err := s.execute(logCtx, audit)
	if err == nil {
		var advanced bool
		advanced, err = s.persist(logCtx, result)
		if err == nil {
			return s.finishCompleted(logCtx, result, advanced)
		}
	}
	return s.finishFailed(logCtx, audit, err)
}

func (s *Service) execute(ctx context.Context, audit ports.DigitalAudit) (report, error) {
	vetting, err := s.vettings.GetVetting(ctx, audit.VettingID)
	if err != nil {
		return report{}, errs.Wrap(err, "load vetting")
	}
	opponents, err := s.vettings.ListOpponents(ctx, audit.VettingID)
	if err != nil {
		return report{}, errs.Wrap(err, "load opponents")
	}

	discovery, err := s.discovery.Discover(ctx, Subject{
		Name:      vetting.CandidateName,
		Office:    vetting.Office,
		District:  vetting.District,
		State:     vetting.State,
		Party:     vetting.Party,
		KnownURLs: vetting.KnownURLs,
	})
	if err != nil {
		return report{}, errs.Wrap(err, "candidate discovery")
	}

	now := s.now()
	platforms := scoreDiscovered(discovery.URLs, domainaudit.ConfidenceInput{
		Name:   vetting.CandidateName,
		Office: vetting.Office,
		State:  vetting.State,
	}, now)

	opponentResults := s.auditOpponents(ctx, vetting, opponents, now)
	summaries := make([]domainaudit.OpponentSummary, 0, len(opponentResults))
	for _, result := range opponentResults {
		if result.AuditFailed {
			continue
		}
		summaries = append(summaries, domainaudit.OpponentSummary{
			Name:          result.Name,
			PlatformCount: result.PlatformCount,
			AverageScore:  result.AverageScore,
		})
	}

	return report{
		audit:     audit,
		vetting:   vetting,
		discovery: discovery,
		platforms: platforms,
		opponents: opponentResults,
		overall:   domainaudit.ScoreOverall(platforms, summaries),
		risk:      domainaudit.AssessRisk(platforms),
	}, nil
}

// auditOpponents runs every opponent in parallel. Each goroutine records its own
// failure and returns nil so one opponent never cancels another.
func (s *Service) auditOpponents(ctx context.Context, vetting ports.Vetting, opponents []ports.Opponent, now time.Time) []OpponentResult {
	results := make([]OpponentResult, len(opponents))

	var group errgroup.Group
	group.SetLimit(s.cfg.OpponentConcurrency)
	for i, opponent := range opponents {
		group.Go(func() error {
			results[i] = s.auditOpponent(ctx, vetting, opponent, now)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (s *Service) auditOpponent(ctx context.Context, vetting ports.Vetting, opponent ports.Opponent, now time.Time) (result OpponentResult) {
	result = OpponentResult{OpponentID: opponent.OpponentID, Name: opponent.Name}
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := errs.Recovered("opponent audit", recovered)
			logging.Error(ctx, "opponent audit panicked", slog.Any("err", errs.Loggable(panicErr)))
			result = OpponentResult{
				OpponentID:  opponent.OpponentID,
				Name:        opponent.Name,
				AuditFailed: true,
				Error:       panicErr.Error(),
			}
		}
		if result.AuditFailed {
			logging.Warn(ctx, "opponent audit failed",
				slog.String("opponent", opponent.Name),
				slog.String("err", result.Error),
			)
		}
	}()

	discovery, err := s.discovery.DiscoverOpponent(ctx, Subject{
		Name:     opponent.Name,
		Office:   vetting.Office,
		District: vetting.District,
		State:    vetting.State,
		Party:    opponent.Party,
	})
	result.Discovery = discovery
	if err != nil {
		result.AuditFailed = true
		result.Error = err.Error()
		return result
	}
	if discovery.AllQueriesFailed() {
		result.AuditFailed = true
		result.Error = "every search query failed: " + discovery.Log[0].Error
		return result
	}

	platforms := scoreDiscovered(discovery.URLs, domainaudit.ConfidenceInput{
		Name:   opponent.Name,
		Office: vetting.Office,
		State:  vetting.State,
	}, now)
	summary := domainaudit.SummarizeOpponent(opponent.Name, platforms)
	risk := domainaudit.AssessRisk(platforms)

	result.Platforms = platforms
	result.PlatformCount = summary.PlatformCount
	result.AverageScore = summary.AverageScore
	result.Risk = &risk
	return result
}

func scoreDiscovered(urls []DiscoveredURL, subject domainaudit.ConfidenceInput, now time.Time) []domainaudit.ScoredPlatform {
	platforms := make([]domainaudit.ScoredPlatform, 0, len(urls))
	for _, discovered := range urls {
		scored, ok := domainaudit.ScoreObservation(discovered.Observation(), subject, now)
		if !ok {
			continue
		}
		platforms = append(platforms, scored)
	}
	return platforms
}

// persist writes platforms, section drafts, the completion and the stage advance in one
// transaction. It reports whether the vetting moved from auto_audit to assigned.
func (s *Service) persist(ctx context.Context, result report) (bool, error) {
	completion, err := buildCompletion(result, s.nowString())
	if err != nil {
		return false, err
	}
	rows := platformRows(result, completion.FinishedAt)

	advanced := false
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.audits.InsertPlatforms(txCtx, rows); err != nil {
			return errs.Wrap(err, "persist platforms")
		}
		if err := s.prepopulateSections(txCtx, result, completion.FinishedAt); err != nil {
			return errs.Wrap(err, "prepopulate sections")
		}
		if err := s.audits.CompleteAudit(txCtx, completion); err != nil {
			return err
		}
		moved, err := s.vettings.CompareAndSetStage(txCtx, result.vetting.VettingID,
			domainvetting.StageAutoAudit, domainvetting.StageAssigned, completion.FinishedAt)
		if err != nil {
			return errs.Wrap(err, "advance stage")
		}
		advanced = moved
		return nil
	})
	if err != nil {
		return false, err
	}
	return advanced, nil
}

func (s *Service) prepopulateSections(ctx context.Context, result report, now string) error {
	sections, err := s.vettings.ListSections(ctx, result.vetting.VettingID)
	if err != nil {
		return err
	}
	for _, section := range sections {
		draft, err := sectionDraft(section, result)
		if errors.Is(err, ErrUnsupportedDraftSection) {
			continue
		}
		if err != nil {
			return err
		}
		if draft == nil {
			continue
		}
		encoded, err := json.Marshal(draft)
		if err != nil {
			return errs.Wrapf(err, "encode %s draft", section.SectionType)
		}
		content := string(encoded)
		if err := s.vettings.UpdateSection(ctx, ports.SectionUpdate{
			SectionID:   section.SectionID,
			AIDraftData: &content,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) finishCompleted(ctx context.Context, result report, advanced bool) (ports.DigitalAudit, error) {
	logging.Info(ctx, "audit completed",
		slog.Int("score", result.overall.Score),
		slog.String("grade", result.overall.Grade),
		slog.Int("platforms", len(result.platforms)),
		slog.Int("failed_opponents", result.failedOpponents()),
		slog.Bool("stage_advanced", advanced),
	)

	if advanced {
		s.cacheStageBestEffort(ctx, result.vetting.VettingID, string(domainvetting.StageAssigned))
		s.publishBestEffort(ctx, ports.SubjectStageChanged, ports.StageChangedEvent{
			VettingID: result.vetting.VettingID,
			From:      domainvetting.StageAutoAudit,
			To:        domainvetting.StageAssigned,
			Source:    "audit",
			ChangedAt: s.nowString(),
		})
	}
	s.publishBestEffort(ctx, ports.SubjectAuditCompleted, AuditCompletedEvent{
		AuditID:         result.audit.AuditID,
		VettingID:       result.vetting.VettingID,
		RunID:           result.audit.RunID,
		Score:           result.overall.Score,
		Grade:           result.overall.Grade,
		Platforms:       len(result.platforms),
		StageAdvanced:   advanced,
		FailedOpponents: result.failedOpponents(),
	})
	return s.audits.GetAudit(ctx, result.audit.AuditID)
}

func (s *Service) finishFailed(ctx context.Context, audit ports.DigitalAudit, cause error) (ports.DigitalAudit, error) {
	message := cause.Error()
	logging.Error(ctx, "audit failed", slog.Any("err", errs.Loggable(cause)))

	// The run context may already be cancelled; the failure must still be stored.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureRecordTimeout)
	defer cancel()

	if err := s.audits.FailAudit(ctx, audit.AuditID, message, s.nowString()); err != nil {
		return ports.DigitalAudit{}, errs.Wrapf(err, "record audit failure: %s", message)
	}
	s.publishBestEffort(ctx, ports.SubjectAuditFailed, AuditFailedEvent{
		AuditID:   audit.AuditID,
		VettingID: audit.VettingID,
		RunID:     audit.RunID,
		Error:     message,
	})
	return s.audits.GetAudit(ctx, audit.AuditID)
}

func buildCompletion(result report, finishedAt string) (ports.AuditCompletion, error) {
	breakdown, err := json.Marshal(result.overall.Breakdown)
	if err != nil {
		return ports.AuditCompletion{}, errs.Wrap(err, "encode breakdown")
	}
	risk, err := json.Marshal(result.risk)
	if err != nil {
		return ports.AuditCompletion{}, errs.Wrap(err, "encode risk")
	}
	opponents := result.opponents
	if opponents == nil {
		opponents = []OpponentResult{}
	}
	opponentJSON, err := json.Marshal(opponents)
	if err != nil {
		return ports.AuditCompletion{}, errs.Wrap(err, "encode opponent results")
	}

	opponentLogs := make(map[uint64][]SearchAttempt, len(result.opponents))
	for _, opponent := range result.opponents {
		opponentLogs[opponent.OpponentID] = opponent.Discovery.Log
	}
	discoveryLog, err := json.Marshal(map[string]any{
		"candidate": result.discovery.Log,
		"opponents": opponentLogs,
	})
	if err != nil {
		return ports.AuditCompletion{}, errs.Wrap(err, "encode discovery log")
	}

	return ports.AuditCompletion{
		AuditID:             result.audit.AuditID,
		Score:               result.overall.Score,
		Grade:               result.overall.Grade,
		BreakdownJSON:       string(breakdown),
		RiskJSON:            string(risk),
		OpponentResultsJSON: string(opponentJSON),
		DiscoveryLogJSON:    string(discoveryLog),
		FinishedAt:          finishedAt,
	}, nil
}

func platformRows(result report, createdAt string) []ports.AuditPlatform {
	rows := make([]ports.AuditPlatform, 0, len(result.platforms))
	for _, platform := range result.platforms {
		rows = append(rows, platformRow(result.audit.AuditID, domainaudit.EntityCandidate, result.vetting.CandidateName, platform, createdAt))
	}
	for _, opponent := range result.opponents {
		for _, platform := range opponent.Platforms {
			rows = append(rows, platformRow(result.audit.AuditID, domainaudit.EntityOpponent, opponent.Name, platform, createdAt))
		}
	}
	return rows
}

func platformRow(auditID uint64, entity domainaudit.EntityType, name string, platform domainaudit.ScoredPlatform, createdAt string) ports.AuditPlatform {
	return ports.AuditPlatform{
		AuditID:         auditID,
		EntityType:      entity,
		EntityName:      name,
		URL:             platform.URL,
		PlatformType:    platform.Classification.PlatformType,
		PlatformName:    platform.Classification.PlatformName,
		Category:        platform.Classification.Category,
		Confidence:      platform.Confidence.Score,
		ConfidenceLevel: platform.Confidence.Level,
		Presence:        platform.Score.Presence,
		Consistency:     platform.Score.Consistency,
		Quality:         platform.Score.Quality,
		Accessibility:   platform.Score.Accessibility,
		TotalScore:      platform.Score.Total,
		Grade:           platform.Score.Grade,
		HasContactInfo:  platform.Signals.HasContactInfo,
		HasEmail:        platform.Signals.HasEmail,
		HasPhone:        platform.Signals.HasPhone,
		HasWebsite:      platform.Signals.HasWebsite,
		CreatedAt:       createdAt,
	}
}
