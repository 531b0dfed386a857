package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civiceye/internal/domain"
)

// UpdateTrailRepository reads the append-only audit log. The sole writer is
// ComplaintRepository.UpdateStatusWithTrail, which keeps the trail from
// diverging from actual status changes.
type UpdateTrailRepository interface {
	ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintUpdate, error)
}

type updateTrailRepository struct {
	pool *pgxpool.Pool
}

// NewUpdateTrailRepository builds repository.
func NewUpdateTrailRepository(pool *pgxpool.Pool) UpdateTrailRepository {
	return &updateTrailRepository{pool: pool}
}

func (r *updateTrailRepository) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintUpdate, error) {
	const query = `
        SELECT id, complaint_id, message, status, created_at
        FROM complaint_updates WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintUpdate
	for rows.Next() {
		var entry domain.ComplaintUpdate
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.Message,
			&entry.Status,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
