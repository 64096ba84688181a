package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

type stubProductRepo struct {
	existing map[string]bool
	items    []domain.Product
}

func (s *stubProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	if s.existing[slug] {
		return &domain.Product{Slug: slug}, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

type stubCategoryRepo struct {
	bySlug  map[string]domain.Category
	creates int
}

func (s *stubCategoryRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	if c, ok := s.bySlug[slug]; ok {
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCategoryRepo) Create(_ context.Context, c domain.Category) (*domain.Category, error) {
	s.creates++
	c.ID = "cat-" + c.Slug
	s.bySlug[c.Slug] = c
	return &c, nil
}

const catalogCSV = `slug,name,description,category_slug,price,image_url,variant_name,variant_sku,variant_price,variant_stock
linen-shirt,Linen Shirt,Breathable,shirts,49.90,https://img/1.jpg,S,LS-S,,4
,,,,,https://img/2.jpg,M,LS-M,52.00,2
mug,Mug,,kitchen,12,,,,,
old-tote,Old Tote,,shirts,20,,,,,
`

func TestCSVImporter_Run(t *testing.T) {
	products := &stubProductRepo{existing: map[string]bool{"old-tote": true}}
	categories := &stubCategoryRepo{bySlug: map[string]domain.Category{"kitchen": {ID: "cat-k", Slug: "kitchen"}}}

	res, err := NewCSVImporter(strings.NewReader(catalogCSV), products, categories, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(products.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(products.items))
	}

	shirt := products.items[0]
	if len(shirt.Images) != 2 || len(shirt.Variants) != 2 {
		t.Fatalf("expected images and variants merged, got %+v", shirt)
	}
	if !shirt.Variants[0].Price.Equal(decimal.RequireFromString("49.90")) || shirt.Variants[0].Stock != 4 {
		t.Fatalf("first variant should inherit price: %+v", shirt.Variants[0])
	}
	if !shirt.Variants[1].Price.Equal(decimal.RequireFromString("52")) || *shirt.Variants[1].SKU != "LS-M" {
		t.Fatalf("unexpected second variant %+v", shirt.Variants[1])
	}
	if shirt.CategoryID == nil || *shirt.CategoryID != "cat-shirts" {
		t.Fatalf("expected created shirts category, got %v", shirt.CategoryID)
	}

	mug := products.items[1]
	if len(mug.Variants) != 1 || mug.Variants[0].Name != "Default" {
		t.Fatalf("expected default variant, got %+v", mug.Variants)
	}
	if *mug.CategoryID != "cat-k" {
		t.Fatalf("expected existing kitchen category, got %s", *mug.CategoryID)
	}
	if categories.creates != 1 {
		t.Fatalf("expected one category created, got %d", categories.creates)
	}
}

func TestCSVImporter_InvalidPrice(t *testing.T) {
	csvData := "slug,name,price\nbad,Bad,abc\n"
	_, err := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{}, &stubCategoryRepo{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 price error, got %v", err)
	}
}

func TestCSVImporter_MissingSlugColumn(t *testing.T) {
	_, err := NewCSVImporter(strings.NewReader("name,price\nA,1\n"), &stubProductRepo{}, &stubCategoryRepo{}, nil).Run(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing slug column")
	}
}
