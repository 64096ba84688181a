package category

import (
	"context"

	"go.uber.org/zap"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

type postgresRepo struct {
	exec   *db.Executor
	logger *zap.Logger
}

func NewPostgres(exec *db.Executor, log *zap.Logger) Repository {
	return &postgresRepo{exec: exec, logger: logger.OrNop(log)}
}

const selectColumns = `
SELECT c.id::text AS id, c.name, c.slug, c.description, c.image_url,
       (SELECT count(*) FROM products p WHERE p.category_id = c.id) AS product_count,
       c.created_at, c.updated_at
FROM categories c
`

const returningColumns = `
RETURNING id::text AS id, name, slug, description, image_url, 0::bigint AS product_count, created_at, updated_at
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	out, err := db.FindMany[domain.Category](ctx, r.exec, selectColumns+`ORDER BY c.name ASC`)
	if err != nil {
		r.logger.Error("category repo: list", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return db.FindUnique[domain.Category](ctx, r.exec, selectColumns+`WHERE c.id = $1`, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return db.FindUnique[domain.Category](ctx, r.exec, selectColumns+`WHERE c.slug = $1`, slug)
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, slug, description, image_url)
VALUES ($1, $2, $3, $4)
` + returningColumns
	out, err := db.Create[domain.Category](ctx, r.exec, q, c.Name, c.Slug, c.Description, c.ImageURL)
	if err != nil {
		r.logger.Warn("category repo: create", zap.String("slug", c.Slug), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $2, slug = $3, description = $4, image_url = $5, updated_at = now()
WHERE id = $1
` + returningColumns
	return db.Create[domain.Category](ctx, r.exec, q, c.ID, c.Name, c.Slug, c.Description, c.ImageURL)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	return db.Do(ctx, r.exec, func(ctx context.Context, q db.Querier) error {
		cmd, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
