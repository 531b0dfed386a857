package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civiceye/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	Status *domain.ComplaintStatus
	UserID *int64
}

// ComplaintStats holds aggregate status counts.
type ComplaintStats struct {
	Total      int64
	Pending    int64
	InProgress int64
	Resolved   int64
}

// ComplaintRepository encapsulates complaint persistence. Create and
// UpdateStatusWithTrail are the only write paths; both are transactional.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Complaint, error)
	UpdateStatusWithTrail(ctx context.Context, id int64, status domain.ComplaintStatus, message string) (*domain.ComplaintUpdate, error)
	Stats(ctx context.Context) (*ComplaintStats, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

// Create inserts the complaint and its evidence rows, allocating the display
// identifier from a per-year counter row inside the same transaction. The
// counter upsert serializes concurrent submissions, so two callers can never
// observe the same sequence number.
func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	year := time.Now().Year()
	var seq int64
	const counterQuery = `
        INSERT INTO complaint_counters (year, seq) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET seq = complaint_counters.seq + 1
        RETURNING seq`
	if err := tx.QueryRow(ctx, counterQuery, year).Scan(&seq); err != nil {
		return err
	}
	complaint.DisplayID = fmt.Sprintf("CE-%d-%04d", year, seq)

	const insertQuery = `
        INSERT INTO complaints (display_id, user_id, fullname, email, location, complaint_type, description, status, priority, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		complaint.DisplayID,
		complaint.UserID,
		complaint.FullName,
		complaint.Email,
		complaint.Location,
		complaint.ComplaintType,
		complaint.Description,
		complaint.Status,
		complaint.Priority,
		complaint.DepartmentID,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt); err != nil {
		return err
	}

	const evidenceQuery = `
        INSERT INTO complaint_evidence (complaint_id, filename, position)
        VALUES ($1,$2,$3)`
	for i, filename := range complaint.Images {
		if _, err := tx.Exec(ctx, evidenceQuery, complaint.ID, filename, i); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	const query = `
        SELECT id, display_id, user_id, fullname, email, location, complaint_type,
               description, status, priority, department_id, created_at, updated_at
        FROM complaints WHERE id=$1`
	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.DisplayID,
		&complaint.UserID,
		&complaint.FullName,
		&complaint.Email,
		&complaint.Location,
		&complaint.ComplaintType,
		&complaint.Description,
		&complaint.Status,
		&complaint.Priority,
		&complaint.DepartmentID,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadEvidence(ctx, &complaint); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT id, display_id, user_id, fullname, email, location, complaint_type,
                    description, status, priority, department_id, created_at, updated_at
             FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints, err := scanComplaints(rows)
	if err != nil {
		return nil, err
	}
	for i := range complaints {
		if err := r.loadEvidence(ctx, &complaints[i]); err != nil {
			return nil, err
		}
	}
	return complaints, nil
}

func (r *complaintRepository) ListLatest(ctx context.Context, limit int) ([]domain.Complaint, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
        SELECT id, display_id, user_id, fullname, email, location, complaint_type,
               description, status, priority, department_id, created_at, updated_at
        FROM complaints ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

// UpdateStatusWithTrail mutates the status and appends the audit entry in one
// transaction; a partial application is never visible.
func (r *complaintRepository) UpdateStatusWithTrail(ctx context.Context, id int64, status domain.ComplaintStatus, message string) (*domain.ComplaintUpdate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateQuery = `UPDATE complaints SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := tx.Exec(ctx, updateQuery, status, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	entry := &domain.ComplaintUpdate{
		ComplaintID: id,
		Message:     message,
		Status:      status,
	}
	const trailQuery = `
        INSERT INTO complaint_updates (complaint_id, message, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, trailQuery, entry.ComplaintID, entry.Message, entry.Status).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *complaintRepository) Stats(ctx context.Context) (*ComplaintStats, error) {
	const query = `SELECT status, COUNT(*) FROM complaints GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &ComplaintStats{}
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case domain.ComplaintStatusPending:
			stats.Pending = count
		case domain.ComplaintStatusInProgress:
			stats.InProgress = count
		case domain.ComplaintStatusResolved:
			stats.Resolved = count
		}
	}
	return stats, rows.Err()
}

func (r *complaintRepository) loadEvidence(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        SELECT filename FROM complaint_evidence
        WHERE complaint_id=$1 ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, query, complaint.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	complaint.Images = complaint.Images[:0]
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return err
		}
		complaint.Images = append(complaint.Images, filename)
	}
	return rows.Err()
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.DisplayID,
			&complaint.UserID,
			&complaint.FullName,
			&complaint.Email,
			&complaint.Location,
			&complaint.ComplaintType,
			&complaint.Description,
			&complaint.Status,
			&complaint.Priority,
			&complaint.DepartmentID,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
