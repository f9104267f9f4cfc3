package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainaudit "candidatevet/internal/domain/audit"
	"candidatevet/internal/errs"
	"candidatevet/internal/infrastructure/persistence/sqlite/model"
	"candidatevet/internal/ports"
)

const platformInsertBatchSize = 100

type AuditRepository struct {
	db *gorm.DB
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateAudit(ctx context.Context, audit ports.DigitalAudit) (ports.DigitalAudit, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DigitalAudit{}, err
	}

	row := model.DigitalAudit{
		VettingID:           audit.VettingID,
		RunID:               audit.RunID,
		Status:              string(audit.Status),
		Score:               audit.Score,
		Grade:               audit.Grade,
		BreakdownJSON:       audit.BreakdownJSON,
		RiskJSON:            audit.RiskJSON,
		OpponentResultsJSON: audit.OpponentResultsJSON,
		DiscoveryLogJSON:    audit.DiscoveryLogJSON,
		ErrorMessage:        audit.ErrorMessage,
		CreatedAt:           audit.CreatedAt,
		StartedAt:           audit.StartedAt,
		FinishedAt:          audit.FinishedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.DigitalAudit{}, errs.Wrap(err, "insert digital audit")
	}
	return mapAudit(row), nil
}

func (r *AuditRepository) GetAudit(ctx context.Context, auditID uint64) (ports.DigitalAudit, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DigitalAudit{}, err
	}
	return takeAudit(db.Where("audit_id = ?", auditID))
}

func (r *AuditRepository) GetLatestAudit(ctx context.Context, vettingID uint64) (ports.DigitalAudit, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DigitalAudit{}, err
	}
	return takeAudit(db.Where("vetting_id = ?", vettingID).Order("audit_id desc"))
}

func (r *AuditRepository) FindActiveAudit(ctx context.Context, vettingID uint64) (ports.DigitalAudit, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.DigitalAudit{}, false, err
	}

	audit, err := takeAudit(db.
		Where("vetting_id = ? AND status IN ?", vettingID, []string{
			string(domainaudit.StatusPending),
			string(domainaudit.StatusRunning),
		}).
		Order("audit_id desc"))
	if err != nil {
		if errors.Is(err, ports.ErrAuditNotFound) {
			return ports.DigitalAudit{}, false, nil
		}
		return ports.DigitalAudit{}, false, err
	}
	return audit, true, nil
}

func (r *AuditRepository) MarkAuditRunning(ctx context.Context, auditID uint64, startedAt string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.DigitalAudit{}).
		Where("audit_id = ? AND status = ?", auditID, string(domainaudit.StatusPending)).
		Updates(map[string]any{
			"status":     string(domainaudit.StatusRunning),
			"started_at": startedAt,
		})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "mark audit running")
	}
	return result.RowsAffected > 0, nil
}

func (r *AuditRepository) CompleteAudit(ctx context.Context, completion ports.AuditCompletion) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.DigitalAudit{}).
		Where("audit_id = ? AND status = ?", completion.AuditID, string(domainaudit.StatusRunning)).
		Updates(map[string]any{
			"status":                string(domainaudit.StatusCompleted),
			"score":                 completion.Score,
			"grade":                 completion.Grade,
			"breakdown_json":        completion.BreakdownJSON,
			"risk_json":             completion.RiskJSON,
			"opponent_results_json": completion.OpponentResultsJSON,
			"discovery_log_json":    completion.DiscoveryLogJSON,
			"finished_at":           completion.FinishedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "complete audit")
	}
	if result.RowsAffected == 0 {
		return errs.Conflictf("audit %d is not running", completion.AuditID)
	}
	return nil
}

func (r *AuditRepository) FailAudit(ctx context.Context, auditID uint64, message string, finishedAt string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.DigitalAudit{}).
		Where("audit_id = ? AND status IN ?", auditID, []string{
			string(domainaudit.StatusPending),
			string(domainaudit.StatusRunning),
		}).
		Updates(map[string]any{
			"status":        string(domainaudit.StatusFailed),
			"error_message": message,
			"finished_at":   finishedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "fail audit")
	}
	if result.RowsAffected == 0 {
		return errs.Conflictf("audit %d already finished", auditID)
	}
	return nil
}

func (r *AuditRepository) InsertPlatforms(ctx context.Context, platforms []ports.AuditPlatform) error {
	if len(platforms) == 0 {
		return nil
	}

	return inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		rows := make([]model.AuditPlatform, 0, len(platforms))
		for _, platform := range platforms {
			rows = append(rows, model.AuditPlatform{
				AuditID:         platform.AuditID,
				EntityType:      string(platform.EntityType),
				EntityName:      platform.EntityName,
				URL:             platform.URL,
				PlatformType:    platform.PlatformType,
				PlatformName:    platform.PlatformName,
				Category:        string(platform.Category),
				Confidence:      platform.Confidence,
				ConfidenceLevel: string(platform.ConfidenceLevel),
				Presence:        platform.Presence,
				Consistency:     platform.Consistency,
				Quality:         platform.Quality,
				Accessibility:   platform.Accessibility,
				TotalScore:      platform.TotalScore,
				Grade:           platform.Grade,
				HasContactInfo:  platform.HasContactInfo,
				HasEmail:        platform.HasEmail,
				HasPhone:        platform.HasPhone,
				HasWebsite:      platform.HasWebsite,
				CreatedAt:       platform.CreatedAt,
			})
		}
		if err := db.CreateInBatches(&rows, platformInsertBatchSize).Error; err != nil {
			return errs.Wrap(err, "insert audit platforms")
		}
		return nil
	})
}

func (r *AuditRepository) ListPlatforms(ctx context.Context, auditID uint64) ([]ports.AuditPlatform, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.AuditPlatform
	if err := db.Where("audit_id = ?", auditID).Order("platform_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query audit platforms")
	}

	items := make([]ports.AuditPlatform, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AuditPlatform{
			PlatformID:      row.PlatformID,
			AuditID:         row.AuditID,
			EntityType:      domainaudit.EntityType(row.EntityType),
			EntityName:      row.EntityName,
			URL:             row.URL,
			PlatformType:    row.PlatformType,
			PlatformName:    row.PlatformName,
			Category:        domainaudit.Category(row.Category),
			Confidence:      row.Confidence,
			ConfidenceLevel: domainaudit.ConfidenceLevel(row.ConfidenceLevel),
			Presence:        row.Presence,
			Consistency:     row.Consistency,
			Quality:         row.Quality,
			Accessibility:   row.Accessibility,
			TotalScore:      row.TotalScore,
			Grade:           row.Grade,
			HasContactInfo:  row.HasContactInfo,
			HasEmail:        row.HasEmail,
			HasPhone:        row.HasPhone,
			HasWebsite:      row.HasWebsite,
			CreatedAt:       row.CreatedAt,
		})
	}
	return items, nil
}

func takeAudit(query *gorm.DB) (ports.DigitalAudit, error) {
	var row model.DigitalAudit
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.DigitalAudit{}, ports.ErrAuditNotFound
		}
		return ports.DigitalAudit{}, errs.Wrap(err, "query digital audit")
	}
	return mapAudit(row), nil
}

func mapAudit(row model.DigitalAudit) ports.DigitalAudit {
	return ports.DigitalAudit{
		AuditID:             row.AuditID,
		VettingID:           row.VettingID,
		RunID:               row.RunID,
		Status:              domainaudit.Status(row.Status),
		Score:               row.Score,
		Grade:               row.Grade,
		BreakdownJSON:       row.BreakdownJSON,
		RiskJSON:            row.RiskJSON,
		OpponentResultsJSON: row.OpponentResultsJSON,
		DiscoveryLogJSON:    row.DiscoveryLogJSON,
		ErrorMessage:        row.ErrorMessage,
		CreatedAt:           row.CreatedAt,
		StartedAt:           row.StartedAt,
		FinishedAt:          row.FinishedAt,
	}
}
