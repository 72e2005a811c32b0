package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
)

// SubmissionRepo implements ports.SubmissionRepository. Form payloads are
// stored as JSONB.
type SubmissionRepo struct {
	db *DB
}

// NewSubmissionRepo creates a new SubmissionRepo.
func NewSubmissionRepo(db *DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) CreateBinSubmission(ctx context.Context, sub *domain.StoredBinSubmission) error {
	payload, err := json.Marshal(sub.Submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO bin_submissions (id, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sub.ID, string(sub.Status), payload, sub.CreatedAt, sub.UpdatedAt)
	return err
}

func (r *SubmissionRepo) GetBinSubmission(ctx context.Context, id string) (*domain.StoredBinSubmission, error) {
	var sub domain.StoredBinSubmission
	var status string
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, status, payload, created_at, updated_at
		FROM bin_submissions WHERE id = $1
	`, id).Scan(&sub.ID, &status, &payload, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &sub.Submission); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	sub.Status = domain.SubmissionStatus(status)
	return &sub, nil
}

func (r *SubmissionRepo) UpdateBinSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE bin_submissions SET status = $2, updated_at = now() WHERE id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SubmissionRepo) CreateContactMessage(ctx context.Context, msg *domain.StoredContactMessage) error {
	payload, err := json.Marshal(msg.Message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO contact_messages (id, status, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`, msg.ID, string(msg.Status), payload, msg.CreatedAt)
	return err
}
