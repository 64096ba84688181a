package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	productrepo "storefront-api/internal/repository/product"
)

// DefaultVariantName is used when a product is created without variants.
const DefaultVariantName = "Default"

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

type VariantInput struct {
	Name  string           `json:"name"`
	SKU   string           `json:"sku"`
	Price *decimal.Decimal `json:"price"`
	Stock int              `json:"stock"`
}

type Input struct {
	CategoryID  string           `json:"categoryId"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Images      []string         `json:"images"`
	IsActive    *bool            `json:"isActive"`
	Variants    []VariantInput   `json:"variants"`
}

// Page is one slice of a filtered listing plus the unpaginated total.
type Page struct {
	Items []domain.Product `json:"items"`
	Total int64            `json:"total"`
}

func (s *Service) List(ctx context.Context, f productrepo.Filter) (*Page, error) {
	if f.CategoryID != "" && !domain.ValidID(f.CategoryID) {
		return nil, domain.Invalid("invalid category id", "categoryId")
	}
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("product")
	}
	return p, err
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := in.header()
	if err != nil {
		return nil, err
	}

	var bad []string
	for i, v := range in.Variants {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			bad = append(bad, fmt.Sprintf("variants[%d].name", i))
		}
		price := p.Price
		if v.Price != nil {
			if v.Price.IsNegative() {
				bad = append(bad, fmt.Sprintf("variants[%d].price", i))
			}
			price = *v.Price
		}
		if v.Stock < 0 {
			bad = append(bad, fmt.Sprintf("variants[%d].stock", i))
		}
		var sku *string
		if trimmed := strings.TrimSpace(v.SKU); trimmed != "" {
			sku = &trimmed
		}
		p.Variants = append(p.Variants, domain.ProductVariant{Name: name, SKU: sku, Price: price, Stock: v.Stock})
	}
	if len(bad) > 0 {
		return nil, domain.Invalid("invalid variants", bad...)
	}
	if len(p.Variants) == 0 {
		p.Variants = []domain.ProductVariant{{Name: DefaultVariantName, Price: p.Price}}
	}
	return s.repo.Create(ctx, p)
}

// Update replaces the header fields; variants are left untouched.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	p, err := in.header()
	if err != nil {
		return nil, err
	}
	p.ID = id
	updated, err := s.repo.Update(ctx, p)
	if errors.Is(err, domain.ErrNotFound) && !isNamed(err) {
		return nil, domain.NotFound("product")
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("product")
	}
	return err
}

func (in Input) header() (domain.Product, error) {
	var bad []string
	name := strings.TrimSpace(in.Name)
	if name == "" {
		bad = append(bad, "name")
	}
	if in.Price == nil || in.Price.IsNegative() {
		bad = append(bad, "price")
	}
	if id := strings.TrimSpace(in.CategoryID); id != "" && !domain.ValidID(id) {
		bad = append(bad, "categoryId")
	}
	if len(bad) > 0 {
		return domain.Product{}, domain.Invalid("missing or invalid fields", bad...)
	}

	slug := domain.Slugify(in.Slug)
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if slug == "" {
		return domain.Product{}, domain.Invalid("slug must contain letters or digits", "slug")
	}

	p := domain.Product{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Images:      in.Images,
		IsActive:    true,
	}
	if id := strings.TrimSpace(in.CategoryID); id != "" {
		p.CategoryID = &id
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p, nil
}

// isNamed reports a not-found error that already names its entity.
func isNamed(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}
