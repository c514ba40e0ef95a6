package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `id, unit_number, building_id, status, asking_price, owner_user_id,
	published_at, created_at, updated_at, deleted_at`

func scanListing(row interface{ Scan(...any) error }) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(&l.ID, &l.UnitNumber, &l.BuildingID, &l.Status, &l.AskingPrice, &l.OwnerUserID,
		&l.PublishedAt, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) Create(ctx context.Context, l *models.Listing) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO listings (unit_number, building_id, status, asking_price, owner_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, l.UnitNumber, l.BuildingID, l.Status, l.AskingPrice, l.OwnerUserID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return scanListing(r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+` FROM listings WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

type ListingFilter struct {
	Status     *string
	BuildingID *uuid.UUID
	Limit      int
	Offset     int
}

func (r *ListingRepo) List(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	args := []any{}
	argIdx := 1
	where := []string{"deleted_at IS NULL"}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.BuildingID != nil {
		where = append(where, fmt.Sprintf("building_id = $%d", argIdx))
		args = append(args, *f.BuildingID)
		argIdx++
	}

	query += " WHERE "
	for i, w := range where {
		if i > 0 {
			query += " AND "
		}
		query += w
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

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, nil
}

func (r *ListingRepo) Update(ctx context.Context, l *models.Listing) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE listings SET unit_number = $1, asking_price = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
	`, l.UnitNumber, l.AskingPrice, l.ID)
	return err
}

func (r *ListingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE listings SET status = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL
	`, status, id)
	return err
}

func (r *ListingRepo) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE listings SET status = $1, published_at = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
	`, models.ListingStatusActive, at, id)
	return err
}

// ---- Inspections ----

func (r *ListingRepo) CreateInspection(ctx context.Context, i *models.Inspection) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO inspections (listing_id, status, inspector_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, i.ListingID, i.Status, i.InspectorID).Scan(&i.ID, &i.CreatedAt)
}

func (r *ListingRepo) GetInspectionByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	var i models.Inspection
	err := r.pool.QueryRow(ctx, `
		SELECT id, listing_id, status, inspector_id, notes, completed_at, created_at
		FROM inspections WHERE id = $1
	`, id).Scan(&i.ID, &i.ListingID, &i.Status, &i.InspectorID, &i.Notes, &i.CompletedAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ListingRepo) CompleteInspection(ctx context.Context, id uuid.UUID, notes *string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE inspections SET status = $1, notes = $2, completed_at = $3 WHERE id = $4
	`, models.InspectionStatusCompleted, notes, at, id)
	return err
}

// ---- Catalogues ----

func (r *ListingRepo) CreateCatalogue(ctx context.Context, c *models.Catalogue) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO catalogues (listing_id, status)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, c.ListingID, c.Status).Scan(&c.ID, &c.CreatedAt)
}

func (r *ListingRepo) GetCatalogueByID(ctx context.Context, id uuid.UUID) (*models.Catalogue, error) {
	var c models.Catalogue
	err := r.pool.QueryRow(ctx, `
		SELECT id, listing_id, status, reviewer_id, reject_reason, reviewed_at, created_at
		FROM catalogues WHERE id = $1
	`, id).Scan(&c.ID, &c.ListingID, &c.Status, &c.ReviewerID, &c.RejectReason, &c.ReviewedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ListingRepo) ReviewCatalogue(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, rejectReason *string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE catalogues SET status = $1, reviewer_id = $2, reject_reason = $3, reviewed_at = $4
		WHERE id = $5
	`, status, reviewerID, rejectReason, at, id)
	return err
}
