package repositories

import (
	"context"
	"fmt"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SellerLeadRepo struct {
	pool *pgxpool.Pool
}

func NewSellerLeadRepo(pool *pgxpool.Pool) *SellerLeadRepo {
	return &SellerLeadRepo{pool: pool}
}

const sellerLeadColumns = `id, name, phone, email, status, property_address, expected_price,
	assigned_agent_id, listing_id, created_at, updated_at, deleted_at`

func scanSellerLead(row interface{ Scan(...any) error }) (*models.SellerLead, error) {
	var s models.SellerLead
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.Status, &s.PropertyAddress, &s.ExpectedPrice,
		&s.AssignedAgentID, &s.ListingID, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SellerLeadRepo) Create(ctx context.Context, s *models.SellerLead) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO seller_leads (name, phone, email, status, property_address, expected_price, assigned_agent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, s.Name, s.Phone, s.Email, s.Status, s.PropertyAddress, s.ExpectedPrice, s.AssignedAgentID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SellerLeadRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SellerLead, error) {
	return scanSellerLead(r.pool.QueryRow(ctx, `
		SELECT `+sellerLeadColumns+` FROM seller_leads WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

type SellerLeadFilter struct {
	Status          *string
	AssignedAgentID *uuid.UUID
	Limit           int
	Offset          int
}

func (r *SellerLeadRepo) List(ctx context.Context, f SellerLeadFilter) ([]models.SellerLead, error) {
	query := `SELECT ` + sellerLeadColumns + ` FROM seller_leads`
	args := []any{}
	argIdx := 1
	where := []string{"deleted_at IS NULL"}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.AssignedAgentID != nil {
		where = append(where, fmt.Sprintf("assigned_agent_id = $%d", argIdx))
		args = append(args, *f.AssignedAgentID)
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

	var leads []models.SellerLead
	for rows.Next() {
		s, err := scanSellerLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *s)
	}
	return leads, nil
}

// Update writes profile fields and status together; LinkListing and
// SoftDelete cover the remaining transitions.
func (r *SellerLeadRepo) Update(ctx context.Context, s *models.SellerLead) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE seller_leads SET name = $1, phone = $2, email = $3, status = $4,
			property_address = $5, expected_price = $6, updated_at = now()
		WHERE id = $7 AND deleted_at IS NULL
	`, s.Name, s.Phone, s.Email, s.Status, s.PropertyAddress, s.ExpectedPrice, s.ID)
	return err
}

func (r *SellerLeadRepo) LinkListing(ctx context.Context, id, listingID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE seller_leads SET listing_id = $1, status = $2, updated_at = now()
		WHERE id = $3 AND deleted_at IS NULL
	`, listingID, models.SellerLeadStatusListed, id)
	return err
}

func (r *SellerLeadRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE seller_leads SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return err
}
