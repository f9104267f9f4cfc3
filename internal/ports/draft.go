package ports

import (
	"context"
	"fmt"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
)

var ErrDraftNotConfigured = fmt.Errorf("%w: draft generator is not configured", errs.ErrDependency)

type DraftRequest struct {
	SectionType domainvetting.SectionType
	Context     map[string]any
}

// DraftGenerator produces a JSON-shaped draft for one report section.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, request DraftRequest) (map[string]any, error)
}
