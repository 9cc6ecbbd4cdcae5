package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"badgeforge-backend/internal/domains/badgeclass"
	"badgeforge-backend/internal/domains/badgeclass/model"
	"badgeforge-backend/pkg/cache"
)

const badgeClassColumns = `id, issuer_id, name, slug, description, image_url,
	criteria_url, criteria_text, tags, created_by, created_at, updated_at`

const completionElementsTTL = 5 * time.Minute

type badgeClassRepository struct {
	db    *pgxpool.Pool
	cache cache.Cache
}

func NewBadgeClassRepository(db *pgxpool.Pool, c cache.Cache) badgeclass.Repository {
	return &badgeClassRepository{db: db, cache: c}
}

func scanBadgeClass(row pgx.Row) (*model.BadgeClass, error) {
	var bc model.BadgeClass
	var tags pq.StringArray
	err := row.Scan(
		&bc.ID, &bc.IssuerID, &bc.Name, &bc.Slug, &bc.Description, &bc.ImageURL,
		&bc.CriteriaURL, &bc.CriteriaText, &tags, &bc.CreatedBy, &bc.CreatedAt, &bc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	bc.Tags = []string(tags)
	return &bc, nil
}

func (r *badgeClassRepository) Create(ctx context.Context, bc *model.BadgeClass) (*model.BadgeClass, error) {
	query := fmt.Sprintf(`
		INSERT INTO badge_classes (id, issuer_id, name, slug, description, image_url,
			criteria_url, criteria_text, tags, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`, badgeClassColumns)

	row := r.db.QueryRow(ctx, query,
		bc.ID, bc.IssuerID, bc.Name, bc.Slug, bc.Description, bc.ImageURL,
		bc.CriteriaURL, bc.CriteriaText, pq.StringArray(bc.Tags), bc.CreatedBy,
	)
	created, err := scanBadgeClass(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create badge class: %w", err)
	}
	return created, nil
}

func (r *badgeClassRepository) GetBySlug(ctx context.Context, issuerID uuid.UUID, slug string) (*model.BadgeClass, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM badge_classes
		WHERE issuer_id = $1 AND slug = $2`, badgeClassColumns)

	bc, err := scanBadgeClass(r.db.QueryRow(ctx, query, issuerID, slug))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge class: %w", err)
	}
	return bc, nil
}

func (r *badgeClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BadgeClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM badge_classes WHERE id = $1`, badgeClassColumns)

	bc, err := scanBadgeClass(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge class: %w", err)
	}
	return bc, nil
}

func (r *badgeClassRepository) ListForIssuer(ctx context.Context, issuerID uuid.UUID) ([]*model.BadgeClass, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM badge_classes
		WHERE issuer_id = $1
		ORDER BY created_at DESC`, badgeClassColumns)

	rows, err := r.db.Query(ctx, query, issuerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge classes: %w", err)
	}
	defer rows.Close()

	var classes []*model.BadgeClass
	for rows.Next() {
		bc, err := scanBadgeClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge class: %w", err)
		}
		classes = append(classes, bc)
	}
	return classes, rows.Err()
}

func (r *badgeClassRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.BadgeClass, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM badge_classes
		WHERE issuer_id IN (
			SELECT issuer_id FROM issuer_staff WHERE user_id = $1
		)
		ORDER BY created_at DESC`, badgeClassColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge classes for user: %w", err)
	}
	defer rows.Close()

	var classes []*model.BadgeClass
	for rows.Next() {
		bc, err := scanBadgeClass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge class: %w", err)
		}
		classes = append(classes, bc)
	}
	return classes, rows.Err()
}

func (r *badgeClassRepository) Update(ctx context.Context, bc *model.BadgeClass) (*model.BadgeClass, error) {
	query := fmt.Sprintf(`
		UPDATE badge_classes
		SET name = $1, description = $2, image_url = $3, criteria_url = $4,
			criteria_text = $5, tags = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING %s`, badgeClassColumns)

	row := r.db.QueryRow(ctx, query,
		bc.Name, bc.Description, bc.ImageURL, bc.CriteriaURL,
		bc.CriteriaText, pq.StringArray(bc.Tags), bc.ID,
	)
	updated, err := scanBadgeClass(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update badge class: %w", err)
	}
	return updated, nil
}

func (r *badgeClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM badge_classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete badge class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("badge class not found")
	}
	return nil
}

func (r *badgeClassRepository) RecipientCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM badge_instances
		WHERE badge_class_id = $1 AND revoked = FALSE`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipients: %w", err)
	}
	return count, nil
}

func (r *badgeClassRepository) RecipientCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT badge_class_id, COUNT(*) FROM badge_instances
		WHERE badge_class_id = ANY($1) AND revoked = FALSE
		GROUP BY badge_class_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recipient count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (r *badgeClassRepository) PathwayElementCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM pathway_elements
		WHERE required_badge_class_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pathway elements: %w", err)
	}
	return count, nil
}

// CompletionElements is cached. Pathway completion lookups run on
// every badge class delete and the underlying join is comparatively
// expensive.
func (r *badgeClassRepository) CompletionElements(ctx context.Context, id uuid.UUID) ([]*model.CompletionElement, error) {
	cacheKey := fmt.Sprintf("badgeclass:completion_elements:%s", id)

	var cached []*model.CompletionElement
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT pe.id, pe.name
		FROM pathway_completion_badges pcb
		JOIN pathway_elements pe ON pe.id = pcb.element_id
		WHERE pcb.badge_class_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion elements: %w", err)
	}
	defer rows.Close()

	elements := make([]*model.CompletionElement, 0)
	for rows.Next() {
		var el model.CompletionElement
		if err := rows.Scan(&el.ElementID, &el.Name); err != nil {
			return nil, fmt.Errorf("failed to scan completion element: %w", err)
		}
		elements = append(elements, &el)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, cacheKey, elements, completionElementsTTL)
	return elements, nil
}
