package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
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

const productColumns = `
p.id::text AS id, p.category_id::text AS category_id, p.name, p.slug, p.description, p.price,
p.images, p.is_active, p.created_at, p.updated_at
`

const variantColumns = `
id::text AS id, product_id::text AS product_id, name, sku, price, stock, created_at
`

// conflict gives duplicate-key and unknown-category failures a readable message.
func conflict(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		switch db.ConstraintName(err) {
		case "product_variants_sku_key":
			return domain.Conflict("a variant with this sku already exists")
		default:
			return domain.Conflict("a product with this slug already exists")
		}
	case db.IsForeignKeyViolation(err) && db.ConstraintName(err) == "products_category_id_fkey":
		return domain.NotFound("category")
	}
	return err
}

// where renders the filter as a WHERE clause and its positional args.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.CategoryID != "" {
		add("p.category_id = $%d", f.CategoryID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(p.name ILIKE '%%' || $%[1]d || '%%' OR p.description ILIKE '%%' || $%[1]d || '%%')", s)
	}
	if f.Active != nil {
		add("p.is_active = $%d", *f.Active)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	where, args := f.where()
	limit := domain.ListLimit(f.Limit)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM products p %s ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))

	out, err := db.FindMany[domain.Product](ctx, r.exec, q, args...)
	if err != nil {
		r.logger.Error("product repo: list", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := f.where()
	return db.Count(ctx, r.exec, `SELECT count(*) FROM products p `+where, args...)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getWithVariants(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getWithVariants(ctx, `SELECT `+productColumns+` FROM products p WHERE p.slug = $1`, slug)
}

func (r *postgresRepo) getWithVariants(ctx context.Context, q string, arg string) (*domain.Product, error) {
	return db.Run(ctx, r.exec, func(ctx context.Context, dbq db.Querier) (*domain.Product, error) {
		p, err := db.One[domain.Product](ctx, dbq, q, arg)
		if err != nil {
			return nil, err
		}
		variants, err := db.Many[domain.ProductVariant](ctx, dbq,
			`SELECT `+variantColumns+` FROM product_variants WHERE product_id = $1 ORDER BY created_at, id`, p.ID)
		if err != nil {
			return nil, err
		}
		p.Variants = variants
		return p, nil
	})
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const insertProduct = `
INSERT INTO products (category_id, name, slug, description, price, images, is_active)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
RETURNING id::text AS id, category_id::text AS category_id, name, slug, description, price,
          images, is_active, created_at, updated_at
`
	const insertVariant = `
INSERT INTO product_variants (product_id, name, sku, price, stock)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + variantColumns

	images := p.Images
	if images == nil {
		images = []string{}
	}

	out, err := db.Run(ctx, r.exec, func(ctx context.Context, q db.Querier) (*domain.Product, error) {
		var created *domain.Product
		err := pgx.BeginFunc(ctx, q, func(tx pgx.Tx) error {
			var err error
			created, err = db.One[domain.Product](ctx, tx, insertProduct,
				p.CategoryID, p.Name, p.Slug, p.Description, p.Price, images, p.IsActive)
			if err != nil {
				return err
			}
			created.Variants = make([]domain.ProductVariant, 0, len(p.Variants))
			for _, v := range p.Variants {
				row, err := db.One[domain.ProductVariant](ctx, tx, insertVariant,
					created.ID, v.Name, v.SKU, v.Price, v.Stock)
				if err != nil {
					return err
				}
				created.Variants = append(created.Variants, *row)
			}
			return nil
		})
		return created, err
	})
	if err != nil {
		r.logger.Warn("product repo: create", zap.String("slug", p.Slug), zap.Error(err))
		return nil, conflict(err)
	}
	r.logger.Debug("product repo: created", zap.String("id", out.ID), zap.Int("variants", len(out.Variants)))
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products p
SET category_id = $2::uuid, name = $3, slug = $4, description = $5, price = $6, images = $7,
    is_active = $8, updated_at = now()
WHERE p.id = $1
RETURNING ` + productColumns
	images := p.Images
	if images == nil {
		images = []string{}
	}
	if _, err := db.Create[domain.Product](ctx, r.exec, q,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.Price, images, p.IsActive); err != nil {
		return nil, conflict(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	return db.Do(ctx, r.exec, func(ctx context.Context, q db.Querier) error {
		cmd, err := q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if db.IsForeignKeyViolation(err) {
			return domain.Conflict("product is referenced by existing orders")
		}
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
