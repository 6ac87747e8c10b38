package ports

import (
	"context"

	"github.com/loanlens/analysis-api/internal/core/domain"
)

// AuditRepository persists analysis audit records.
type AuditRepository interface {
	InsertAnalysis(ctx context.Context, audit *domain.AnalysisAudit) error
}

// AuditSink accepts audit records without blocking the caller.
type AuditSink interface {
	Record(audit domain.AnalysisAudit)
}
