package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VisitRepo struct {
	pool *pgxpool.Pool
}

func NewVisitRepo(pool *pgxpool.Pool) *VisitRepo {
	return &VisitRepo{pool: pool}
}

const visitColumns = `id, lead_id, listing_id, status, scheduled_at,
	visit_confirmed, confirmed_at, visit_canceled, canceled_at, drop_reason,
	visit_completed, completed_at, rescheduled_from_visit_id,
	otp_code, otp_verified, latitude, longitude,
	rating, buyer_score, primary_pain_point, feedback, created_at, updated_at`

func scanVisit(row interface{ Scan(...any) error }) (*models.Visit, error) {
	var v models.Visit
	err := row.Scan(&v.ID, &v.LeadID, &v.ListingID, &v.Status, &v.ScheduledAt,
		&v.VisitConfirmed, &v.ConfirmedAt, &v.VisitCanceled, &v.CanceledAt, &v.DropReason,
		&v.VisitCompleted, &v.CompletedAt, &v.RescheduledFromVisitID,
		&v.OTPCode, &v.OTPVerified, &v.Latitude, &v.Longitude,
		&v.Rating, &v.BuyerScore, &v.PrimaryPainPoint, &v.Feedback, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VisitRepo) Create(ctx context.Context, v *models.Visit) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO visits (lead_id, listing_id, status, scheduled_at, rescheduled_from_visit_id, otp_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, v.LeadID, v.ListingID, v.Status, v.ScheduledAt, v.RescheduledFromVisitID, v.OTPCode,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VisitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	return scanVisit(r.pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id))
}

type VisitFilter struct {
	LeadID    *uuid.UUID
	ListingID *uuid.UUID
	Status    *string
	Limit     int
	Offset    int
}

func (r *VisitRepo) List(ctx context.Context, f VisitFilter) ([]models.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.LeadID != nil {
		where = append(where, fmt.Sprintf("lead_id = $%d", argIdx))
		args = append(args, *f.LeadID)
		argIdx++
	}
	if f.ListingID != nil {
		where = append(where, fmt.Sprintf("listing_id = $%d", argIdx))
		args = append(args, *f.ListingID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, *v)
	}
	return visits, nil
}

func (r *VisitRepo) Confirm(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE visits SET visit_confirmed = true, confirmed_at = $1, status = $2, updated_at = now()
		WHERE id = $3
	`, at, models.VisitStatusScheduled, id)
	return err
}

func (r *VisitRepo) Cancel(ctx context.Context, id uuid.UUID, at time.Time, dropReason string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE visits SET visit_canceled = true, canceled_at = $1, drop_reason = $2, status = $3, updated_at = now()
		WHERE id = $4
	`, at, dropReason, models.VisitStatusCancelled, id)
	return err
}

type VisitCompletion struct {
	Latitude         float64
	Longitude        float64
	Rating           *int
	BuyerScore       *int
	PrimaryPainPoint *string
	Feedback         *string
}

func (r *VisitRepo) Complete(ctx context.Context, id uuid.UUID, at time.Time, c VisitCompletion) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE visits SET visit_completed = true, completed_at = $1, status = $2, otp_verified = true,
			latitude = $3, longitude = $4, rating = $5, buyer_score = $6,
			primary_pain_point = $7, feedback = $8, updated_at = now()
		WHERE id = $9
	`, at, models.VisitStatusCompleted, c.Latitude, c.Longitude, c.Rating, c.BuyerScore,
		c.PrimaryPainPoint, c.Feedback, id)
	return err
}

// Reschedule inserts the replacement visit and cancels the original in one
// transaction: if the insert fails the original stays untouched.
func (r *VisitRepo) Reschedule(ctx context.Context, original *models.Visit, newScheduledAt time.Time, otpCode *string) (*models.Visit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	replacement := &models.Visit{
		LeadID:                 original.LeadID,
		ListingID:              original.ListingID,
		Status:                 models.VisitStatusPending,
		ScheduledAt:            newScheduledAt,
		RescheduledFromVisitID: &original.ID,
		OTPCode:                otpCode,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO visits (lead_id, listing_id, status, scheduled_at, rescheduled_from_visit_id, otp_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, replacement.LeadID, replacement.ListingID, replacement.Status, replacement.ScheduledAt,
		replacement.RescheduledFromVisitID, replacement.OTPCode,
	).Scan(&replacement.ID, &replacement.CreatedAt, &replacement.UpdatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE visits SET visit_canceled = true, canceled_at = now(), status = $1, updated_at = now()
		WHERE id = $2
	`, models.VisitStatusCancelled, original.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return replacement, nil
}
