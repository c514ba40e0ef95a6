package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepo struct {
	pool *pgxpool.Pool
}

func NewOfferRepo(pool *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

const offerColumns = `id, listing_id, lead_id, status, amount, terms, counter_of_offer_id, created_at, updated_at`

func scanOffer(row interface{ Scan(...any) error }) (*models.Offer, error) {
	var o models.Offer
	err := row.Scan(&o.ID, &o.ListingID, &o.LeadID, &o.Status, &o.Amount, &o.Terms,
		&o.CounterOfOfferID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepo) Create(ctx context.Context, o *models.Offer) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO offers (listing_id, lead_id, status, amount, terms, counter_of_offer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, o.ListingID, o.LeadID, o.Status, o.Amount, o.Terms, o.CounterOfOfferID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	return scanOffer(r.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
}

type OfferFilter struct {
	ListingID *uuid.UUID
	LeadID    *uuid.UUID
	Status    *string
	Limit     int
	Offset    int
}

func (r *OfferRepo) List(ctx context.Context, f OfferFilter) ([]models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ListingID != nil {
		where = append(where, fmt.Sprintf("listing_id = $%d", argIdx))
		args = append(args, *f.ListingID)
		argIdx++
	}
	if f.LeadID != nil {
		where = append(where, fmt.Sprintf("lead_id = $%d", argIdx))
		args = append(args, *f.LeadID)
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
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, nil
}

func (r *OfferRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE offers SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// Counter marks the original offer countered and inserts the counter-proposal
// as a new pending row, both inside one transaction. The original's amount is
// never mutated: the negotiation chain is append-only.
func (r *OfferRepo) Counter(ctx context.Context, original *models.Offer, amount int64, terms *string) (*models.Offer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	counter := &models.Offer{
		ListingID:        original.ListingID,
		LeadID:           original.LeadID,
		Status:           models.OfferStatusPending,
		Amount:           amount,
		Terms:            terms,
		CounterOfOfferID: &original.ID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO offers (listing_id, lead_id, status, amount, terms, counter_of_offer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, counter.ListingID, counter.LeadID, counter.Status, counter.Amount, counter.Terms, counter.CounterOfOfferID,
	).Scan(&counter.ID, &counter.CreatedAt, &counter.UpdatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE offers SET status = $1, updated_at = now() WHERE id = $2
	`, models.OfferStatusCountered, original.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return counter, nil
}

// ExpireStale moves pending offers older than the cutoff to expired,
// returning the affected rows for auditing.
func (r *OfferRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]StatusDecay, error) {
	rows, err := r.pool.Query(ctx, `
		WITH eligible AS (
			SELECT id, status FROM offers WHERE status = $1 AND created_at < $2
		)
		UPDATE offers o SET status = $3, updated_at = now()
		FROM eligible e WHERE o.id = e.id
		RETURNING o.id, e.status
	`, models.OfferStatusPending, cutoff, models.OfferStatusExpired)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecays(rows)
}
