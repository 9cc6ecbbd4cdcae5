package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"badgeforge-backend/internal/domains/issuer"
	"badgeforge-backend/internal/domains/issuer/model"
	"badgeforge-backend/pkg/database"
)

// postgresRepository implements issuer.Repository on pgxpool.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) issuer.Repository {
	return &postgresRepository{pool: pool}
}

const issuerColumns = `id, name, slug, description, url, email, image_url, created_by, created_at, updated_at`

func scanIssuer(row pgx.Row) (*model.Issuer, error) {
	var iss model.Issuer
	err := row.Scan(
		&iss.ID,
		&iss.Name,
		&iss.Slug,
		&iss.Description,
		&iss.URL,
		&iss.Email,
		&iss.ImageURL,
		&iss.CreatedBy,
		&iss.CreatedAt,
		&iss.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &iss, nil
}

// Create inserts the issuer and the creator's owner role atomically.
func (r *postgresRepository) Create(ctx context.Context, iss *model.Issuer, ownerID uuid.UUID) (*model.Issuer, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Issuer, error) {
		query := `
      INSERT INTO issuers (id, name, slug, description, url, email, image_url, created_by)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
      RETURNING ` + issuerColumns

		row := tx.QueryRow(ctx, query,
			iss.ID, iss.Name, iss.Slug, iss.Description, iss.URL, iss.Email, iss.ImageURL, ownerID)

		created, err := scanIssuer(row)
		if err != nil {
			if strings.Contains(err.Error(), "unique constraint") {
				return nil, model.NewIssuerSlugAlreadyExists(iss.Slug)
			}
			return nil, model.NewCreateIssuerError(err)
		}

		staffQuery := `
      INSERT INTO issuer_staff (issuer_id, user_id, role)
      VALUES ($1, $2, $3)
    `
		if _, err := tx.Exec(ctx, staffQuery, created.ID, ownerID, model.RoleOwner); err != nil {
			return nil, model.NewCreateIssuerError(err)
		}

		return created, nil
	})
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*model.Issuer, error) {
	query := `SELECT ` + issuerColumns + ` FROM issuers WHERE slug = $1`

	iss, err := scanIssuer(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get issuer by slug: %w", err)
	}
	return iss, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Issuer, error) {
	query := `SELECT ` + issuerColumns + ` FROM issuers WHERE id = $1`

	iss, err := scanIssuer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get issuer by id: %w", err)
	}
	return iss, nil
}

// GetBySlugWithRole joins the staff table so one round trip answers
// both "does it exist" and "what may the caller do".
func (r *postgresRepository) GetBySlugWithRole(ctx context.Context, slug string, userID uuid.UUID) (*model.Issuer, model.Role, error) {
	query := `
    SELECT i.id, i.name, i.slug, i.description, i.url, i.email, i.image_url,
           i.created_by, i.created_at, i.updated_at, s.role
    FROM issuers i
    JOIN issuer_staff s ON s.issuer_id = i.id
    WHERE i.slug = $1 AND s.user_id = $2
  `

	var iss model.Issuer
	var role model.Role
	err := r.pool.QueryRow(ctx, query, slug, userID).Scan(
		&iss.ID,
		&iss.Name,
		&iss.Slug,
		&iss.Description,
		&iss.URL,
		&iss.Email,
		&iss.ImageURL,
		&iss.CreatedBy,
		&iss.CreatedAt,
		&iss.UpdatedAt,
		&role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to get issuer with role: %w", err)
	}

	return &iss, role, nil
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Issuer, error) {
	query := `
    SELECT i.id, i.name, i.slug, i.description, i.url, i.email, i.image_url,
           i.created_by, i.created_at, i.updated_at
    FROM issuers i
    JOIN issuer_staff s ON s.issuer_id = i.id
    WHERE s.user_id = $1
    ORDER BY i.created_at DESC
  `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issuers: %w", err)
	}
	defer rows.Close()

	var issuers []*model.Issuer
	for rows.Next() {
		iss, err := scanIssuer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issuer row: %w", err)
		}
		issuers = append(issuers, iss)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issuer rows: %w", err)
	}

	return issuers, nil
}

func (r *postgresRepository) ListStaff(ctx context.Context, issuerID uuid.UUID) ([]*model.StaffMember, error) {
	query := `
    SELECT s.issuer_id, s.user_id, u.email, s.role, s.created_at
    FROM issuer_staff s
    JOIN users u ON u.id = s.user_id
    WHERE s.issuer_id = $1
    ORDER BY s.created_at ASC
  `

	rows, err := r.pool.Query(ctx, query, issuerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var members []*model.StaffMember
	for rows.Next() {
		var m model.StaffMember
		if err := rows.Scan(&m.IssuerID, &m.UserID, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff row: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff rows: %w", err)
	}

	return members, nil
}

func (r *postgresRepository) AddStaff(ctx context.Context, issuerID uuid.UUID, userID uuid.UUID, role model.Role) error {
	query := `
    INSERT INTO issuer_staff (issuer_id, user_id, role)
    VALUES ($1, $2, $3)
    ON CONFLICT (issuer_id, user_id) DO UPDATE SET role = EXCLUDED.role
  `
	if _, err := r.pool.Exec(ctx, query, issuerID, userID, role); err != nil {
		return fmt.Errorf("failed to add staff member: %w", err)
	}
	return nil
}

func (r *postgresRepository) RemoveStaff(ctx context.Context, issuerID uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM issuer_staff WHERE issuer_id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, issuerID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove staff member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.NewStaffMemberNotFound()
	}
	return nil
}

func (r *postgresRepository) CountOwners(ctx context.Context, issuerID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM issuer_staff WHERE issuer_id = $1 AND role = $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, issuerID, model.RoleOwner).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return count, nil
}
