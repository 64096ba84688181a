package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	productsvc "storefront-api/internal/service/product"
)

type ProductStore interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CategoryStore interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// Result counts what a run did.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads catalog CSV files. A row with a slug starts a product;
// rows without one add variants and images to the product above them.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductStore
	categories CategoryStore
	logger     *zap.Logger

	categoryIDs map[string]string
}

func NewCSVImporter(r io.Reader, products ProductStore, categories CategoryStore, log *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		products:    products,
		categories:  categories,
		logger:      logger.OrNop(log),
		categoryIDs: make(map[string]string),
	}
}

type pending struct {
	line         int
	product      domain.Product
	categorySlug string
}

// Run imports every product group. Products whose slug already exists are
// skipped.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["slug"]; !ok {
		return res, errors.New("missing slug column")
	}

	var current *pending
	flush := func() error {
		if current == nil {
			return nil
		}
		imported, err := i.save(ctx, current)
		if err != nil {
			return err
		}
		if imported {
			res.Imported++
		} else {
			res.Skipped++
		}
		current = nil
		return nil
	}

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}
		r := row{record: record, index: index}

		if slug := r.get("slug"); slug != "" {
			if err := flush(); err != nil {
				return res, err
			}
			current, err = parseProduct(line, r)
			if err != nil {
				return res, err
			}
			continue
		}
		if current == nil {
			continue
		}
		if err := current.addDetails(line, r); err != nil {
			return res, err
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, p *pending) (bool, error) {
	_, err := i.products.GetBySlug(ctx, p.product.Slug)
	switch {
	case err == nil:
		i.logger.Info("importer: product exists, skipping", zap.String("slug", p.product.Slug))
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("look up product %q: %w", p.product.Slug, err)
	}

	if p.categorySlug != "" {
		id, err := i.categoryID(ctx, p.categorySlug)
		if err != nil {
			return false, err
		}
		p.product.CategoryID = &id
	}
	if len(p.product.Variants) == 0 {
		p.product.Variants = []domain.ProductVariant{{Name: productsvc.DefaultVariantName, Price: p.product.Price}}
	}

	created, err := i.products.Create(ctx, p.product)
	if err != nil {
		return false, fmt.Errorf("create product %q (line %d): %w", p.product.Slug, p.line, err)
	}
	i.logger.Info("importer: product created",
		zap.String("slug", created.Slug),
		zap.Int("variants", len(created.Variants)),
		zap.Int("images", len(created.Images)),
	)
	return true, nil
}

// categoryID resolves a category slug, creating the category when needed.
func (i *CSVImporter) categoryID(ctx context.Context, slug string) (string, error) {
	if id, ok := i.categoryIDs[slug]; ok {
		return id, nil
	}
	cat, err := i.categories.GetBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		cat, err = i.categories.Create(ctx, domain.Category{Name: strings.ReplaceAll(slug, "-", " "), Slug: slug})
		if err == nil {
			i.logger.Info("importer: category created", zap.String("slug", slug))
		}
	}
	if err != nil {
		return "", fmt.Errorf("resolve category %q: %w", slug, err)
	}
	i.categoryIDs[slug] = cat.ID
	return cat.ID, nil
}

func parseProduct(line int, r row) (*pending, error) {
	name := r.get("name")
	if name == "" {
		return nil, fmt.Errorf("line %d: name is required", line)
	}
	price, err := decimal.NewFromString(r.get("price"))
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("line %d: invalid price %q", line, r.get("price"))
	}
	slug := domain.Slugify(r.get("slug"))
	if slug == "" {
		return nil, fmt.Errorf("line %d: invalid slug %q", line, r.get("slug"))
	}

	p := &pending{
		line: line,
		product: domain.Product{
			Name:        name,
			Slug:        slug,
			Description: r.get("description"),
			Price:       price,
			Images:      []string{},
			IsActive:    true,
		},
		categorySlug: domain.Slugify(r.get("category_slug")),
	}
	if err := p.addDetails(line, r); err != nil {
		return nil, err
	}
	return p, nil
}

// addDetails appends the image and variant present on a row, if any.
func (p *pending) addDetails(line int, r row) error {
	if url := r.get("image_url"); url != "" {
		p.product.Images = append(p.product.Images, url)
	}
	name := r.get("variant_name")
	if name == "" {
		return nil
	}

	v := domain.ProductVariant{Name: name, Price: p.product.Price}
	if sku := r.get("variant_sku"); sku != "" {
		v.SKU = &sku
	}
	if raw := r.get("variant_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			return fmt.Errorf("line %d: invalid variant_price %q", line, raw)
		}
		v.Price = price
	}
	if raw := r.get("variant_stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return fmt.Errorf("line %d: invalid variant_stock %q", line, raw)
		}
		v.Stock = stock
	}
	p.product.Variants = append(p.product.Variants, v)
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

type row struct {
	record []string
	index  map[string]int
}

func (r row) get(key string) string {
	pos, ok := r.index[key]
	if !ok || pos >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[pos])
}
