package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/estate-backoffice/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepo struct {
	pool *pgxpool.Pool
}

func NewLeadRepo(pool *pgxpool.Pool) *LeadRepo {
	return &LeadRepo{pool: pool}
}

const leadColumns = `id, name, phone, email, status, source, assigned_agent_id, requirement,
	last_contacted_at, created_at, updated_at, deleted_at`

func scanLead(row interface{ Scan(...any) error }) (*models.Lead, error) {
	var l models.Lead
	var reqBytes []byte
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Status, &l.Source, &l.AssignedAgentID,
		&reqBytes, &l.LastContactedAt, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt)
	if err != nil {
		return nil, err
	}
	if len(reqBytes) > 0 {
		_ = json.Unmarshal(reqBytes, &l.Requirement)
	}
	return &l, nil
}

func (r *LeadRepo) Create(ctx context.Context, l *models.Lead) error {
	reqBytes, err := json.Marshal(l.Requirement)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, phone, email, status, source, assigned_agent_id, requirement, last_contacted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, l.Name, l.Phone, l.Email, l.Status, l.Source, l.AssignedAgentID, reqBytes, l.LastContactedAt,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LeadRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, id))
}

func (r *LeadRepo) GetByPhone(ctx context.Context, phone string) (*models.Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE phone = $1 AND deleted_at IS NULL
	`, phone))
}

type LeadFilter struct {
	Status          *string
	Source          *string
	AssignedAgentID *uuid.UUID
	Limit           int
	Offset          int
}

func (r *LeadRepo) List(ctx context.Context, f LeadFilter) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	args := []any{}
	argIdx := 1
	where := []string{"deleted_at IS NULL"}

	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.Source != nil {
		where = append(where, fmt.Sprintf("source = $%d", argIdx))
		args = append(args, *f.Source)
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

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, nil
}

// Update writes profile fields and status in one statement, so a PUT that
// touches both can never half-commit. Assignment and deletion keep their own
// methods.
func (r *LeadRepo) Update(ctx context.Context, l *models.Lead) error {
	reqBytes, err := json.Marshal(l.Requirement)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE leads SET name = $1, phone = $2, email = $3, status = $4, requirement = $5,
			last_contacted_at = $6, updated_at = now()
		WHERE id = $7 AND deleted_at IS NULL
	`, l.Name, l.Phone, l.Email, l.Status, reqBytes, l.LastContactedAt, l.ID)
	return err
}

func (r *LeadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL
	`, status, id)
	return err
}

func (r *LeadRepo) Assign(ctx context.Context, id uuid.UUID, agentID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_agent_id = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL
	`, agentID, id)
	return err
}

func (r *LeadRepo) TouchLastContacted(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET last_contacted_at = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL
	`, at, id)
	return err
}

func (r *LeadRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return err
}

// StatusDecay is one lead demoted by a decay pass, with the status it held
// before so the transition can be audited.
type StatusDecay struct {
	ID        uuid.UUID
	OldStatus string
}

// DecayPreVisit demotes leads that were contacted before the cutoff and never
// booked a visit. Leads already at_risk or closed are excluded, which keeps
// the pass idempotent.
func (r *LeadRepo) DecayPreVisit(ctx context.Context, cutoff time.Time) ([]StatusDecay, error) {
	rows, err := r.pool.Query(ctx, `
		WITH eligible AS (
			SELECT l.id, l.status FROM leads l
			WHERE l.deleted_at IS NULL
			  AND l.status IN ($1, $2)
			  AND l.last_contacted_at IS NOT NULL
			  AND l.last_contacted_at < $3
			  AND NOT EXISTS (SELECT 1 FROM visits v WHERE v.lead_id = l.id)
		)
		UPDATE leads l SET status = $4, updated_at = now()
		FROM eligible e WHERE l.id = e.id
		RETURNING l.id, e.status
	`, models.LeadStatusNew, models.LeadStatusContacted, cutoff, models.LeadStatusAtRisk)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecays(rows)
}

// DecayPostVisit demotes active visitors with no visit scheduled or completed
// since the cutoff.
func (r *LeadRepo) DecayPostVisit(ctx context.Context, cutoff time.Time) ([]StatusDecay, error) {
	rows, err := r.pool.Query(ctx, `
		WITH eligible AS (
			SELECT l.id, l.status FROM leads l
			WHERE l.deleted_at IS NULL
			  AND l.status = $1
			  AND NOT EXISTS (
				SELECT 1 FROM visits v
				WHERE v.lead_id = l.id
				  AND (v.scheduled_at > $2 OR v.completed_at > $2)
			  )
		)
		UPDATE leads l SET status = $3, updated_at = now()
		FROM eligible e WHERE l.id = e.id
		RETURNING l.id, e.status
	`, models.LeadStatusActiveVisitor, cutoff, models.LeadStatusAtRisk)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDecays(rows)
}

func collectDecays(rows interface {
	Next() bool
	Scan(...any) error
}) ([]StatusDecay, error) {
	var decays []StatusDecay
	for rows.Next() {
		var d StatusDecay
		if err := rows.Scan(&d.ID, &d.OldStatus); err != nil {
			return nil, err
		}
		decays = append(decays, d)
	}
	return decays, nil
}
