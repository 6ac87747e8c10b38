package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/core/ports"
)

const (
	analysesCollection = "analyses"
	auditRetention     = 90 * 24 * time.Hour
)

// AnalysisRepository implements ports.AuditRepository using MongoDB.
type AnalysisRepository struct {
	db *mongo.Database
}

// NewAnalysisRepository creates a new AnalysisRepository.
func NewAnalysisRepository(db *mongo.Database) ports.AuditRepository {
	return &AnalysisRepository{db: db}
}

// EnsureIndexes creates the retention (TTL) and lookup indexes on the
// analyses collection. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(analysesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(auditRetention.Seconds())),
		},
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "outcome", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure analyses indexes: %w", err)
	}
	return nil
}

// InsertAnalysis persists one audit record. Applicant attributes are never
// stored; only the outcome of the analysis.
func (r *AnalysisRepository) InsertAnalysis(ctx context.Context, a *domain.AnalysisAudit) error {
	_, err := r.db.Collection(analysesCollection).InsertOne(ctx, toAnalysisDocument(a))
	return err
}

func toAnalysisDocument(a *domain.AnalysisAudit) bson.M {
	doc := bson.M{
		"_id":             a.ID,
		"request_id":      a.RequestID,
		"outcome":         a.Outcome,
		"prob_eligible":   a.ProbEligible,
		"prob_ineligible": a.ProbIneligible,
		"duration_ms":     a.Duration.Milliseconds(),
		"created_at":      a.CreatedAt.UTC(),
	}
	if a.Decision != "" {
		doc["decision"] = string(a.Decision)
	}
	if len(a.MissingFields) > 0 {
		doc["missing_fields"] = a.MissingFields
	}
	if a.FailureReason != "" {
		doc["failure_reason"] = a.FailureReason
	}
	return doc
}
