package ports

import (
	"context"

	"github.com/samirrijal/ecobin/internal/core/domain"
)

// BinRepository is the source of collection points. Implementations return
// bins in a stable catalog order.
type BinRepository interface {
	List(ctx context.Context) ([]domain.Bin, error)
	GetByID(ctx context.Context, id string) (*domain.Bin, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Bin, error)
	UpsertBatch(ctx context.Context, bins []domain.Bin) error
}

// SubmissionRepository persists form submissions.
type SubmissionRepository interface {
	CreateBinSubmission(ctx context.Context, sub *domain.StoredBinSubmission) error
	GetBinSubmission(ctx context.Context, id string) (*domain.StoredBinSubmission, error)
	UpdateBinSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus) error
	CreateContactMessage(ctx context.Context, msg *domain.StoredContactMessage) error
}
