package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"badgeforge-backend/internal/domains/assertion"
	"badgeforge-backend/internal/domains/assertion/model"
	"badgeforge-backend/pkg/database"
)

const assertionColumns = `id, slug, badge_class_id, issuer_id, recipient_email,
	narrative, evidence_url, image_url, revoked, revocation_reason,
	created_by, created_at, updated_at`

const insertAssertionQuery = `
	INSERT INTO badge_instances (id, slug, badge_class_id, issuer_id,
		recipient_email, narrative, evidence_url, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + assertionColumns

type assertionRepository struct {
	db *pgxpool.Pool
}

func NewAssertionRepository(db *pgxpool.Pool) assertion.Repository {
	return &assertionRepository{db: db}
}

func scanAssertion(row pgx.Row) (*model.BadgeInstance, error) {
	var bi model.BadgeInstance
	err := row.Scan(
		&bi.ID, &bi.Slug, &bi.BadgeClassID, &bi.IssuerID, &bi.RecipientEmail,
		&bi.Narrative, &bi.EvidenceURL, &bi.ImageURL, &bi.Revoked, &bi.RevocationReason,
		&bi.CreatedBy, &bi.CreatedAt, &bi.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bi, nil
}

func (r *assertionRepository) Create(ctx context.Context, bi *model.BadgeInstance) (*model.BadgeInstance, error) {
	row := r.db.QueryRow(ctx, insertAssertionQuery,
		bi.ID, bi.Slug, bi.BadgeClassID, bi.IssuerID,
		bi.RecipientEmail, bi.Narrative, bi.EvidenceURL, bi.CreatedBy,
	)
	created, err := scanAssertion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create badge instance: %w", err)
	}
	return created, nil
}

func (r *assertionRepository) CreateBatch(ctx context.Context, instances []*model.BadgeInstance) ([]*model.BadgeInstance, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) ([]*model.BadgeInstance, error) {
		created := make([]*model.BadgeInstance, 0, len(instances))
		for _, bi := range instances {
			row := tx.QueryRow(ctx, insertAssertionQuery,
				bi.ID, bi.Slug, bi.BadgeClassID, bi.IssuerID,
				bi.RecipientEmail, bi.Narrative, bi.EvidenceURL, bi.CreatedBy,
			)
			inserted, err := scanAssertion(row)
			if err != nil {
				return nil, fmt.Errorf("failed to create badge instance for %s: %w", bi.RecipientEmail, err)
			}
			created = append(created, inserted)
		}
		return created, nil
	})
}

func (r *assertionRepository) GetBySlug(ctx context.Context, slug string) (*model.BadgeInstance, error) {
	query := fmt.Sprintf(`SELECT %s FROM badge_instances WHERE slug = $1`, assertionColumns)

	bi, err := scanAssertion(r.db.QueryRow(ctx, query, slug))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge instance: %w", err)
	}
	return bi, nil
}

func (r *assertionRepository) ListForBadgeClass(ctx context.Context, badgeClassID uuid.UUID) ([]*model.BadgeInstance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM badge_instances
		WHERE badge_class_id = $1 AND revoked = FALSE
		ORDER BY created_at DESC`, assertionColumns)

	return r.list(ctx, query, badgeClassID)
}

func (r *assertionRepository) ListForIssuer(ctx context.Context, issuerID uuid.UUID, recipient string) ([]*model.BadgeInstance, error) {
	if recipient != "" {
		query := fmt.Sprintf(`
			SELECT %s FROM badge_instances
			WHERE issuer_id = $1 AND recipient_email = $2 AND revoked = FALSE
			ORDER BY created_at DESC`, assertionColumns)
		return r.list(ctx, query, issuerID, recipient)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM badge_instances
		WHERE issuer_id = $1 AND revoked = FALSE
		ORDER BY created_at DESC`, assertionColumns)
	return r.list(ctx, query, issuerID)
}

func (r *assertionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.BadgeInstance, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge instances: %w", err)
	}
	defer rows.Close()

	instances := make([]*model.BadgeInstance, 0)
	for rows.Next() {
		bi, err := scanAssertion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge instance: %w", err)
		}
		instances = append(instances, bi)
	}
	return instances, rows.Err()
}

// Revoke locks the row before checking the revoked flag, so concurrent
// revocations of the same assertion serialize and the loser sees the
// flag already set.
func (r *assertionRepository) Revoke(ctx context.Context, slug, reason string) (*model.BadgeInstance, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.BadgeInstance, error) {
		lockQuery := fmt.Sprintf(`
			SELECT %s FROM badge_instances
			WHERE slug = $1
			FOR UPDATE`, assertionColumns)

		bi, err := scanAssertion(tx.QueryRow(ctx, lockQuery, slug))
		if err == pgx.ErrNoRows {
			return nil, model.NewAssertionNotFound()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock badge instance: %w", err)
		}

		if bi.Revoked {
			return nil, model.NewAlreadyRevoked()
		}

		updateQuery := fmt.Sprintf(`
			UPDATE badge_instances
			SET revoked = TRUE, revocation_reason = $1, image_url = '', updated_at = NOW()
			WHERE id = $2
			RETURNING %s`, assertionColumns)

		updated, err := scanAssertion(tx.QueryRow(ctx, updateQuery, reason, bi.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to revoke badge instance: %w", err)
		}
		return updated, nil
	})
}

func (r *assertionRepository) SetImageURL(ctx context.Context, slug, imageURL string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE badge_instances
		SET image_url = $1, updated_at = NOW()
		WHERE slug = $2 AND revoked = FALSE`, imageURL, slug)
	if err != nil {
		return fmt.Errorf("failed to set badge instance image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("badge instance %s not found or revoked", slug)
	}
	return nil
}
