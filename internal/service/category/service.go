package category

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository/category"
)

const errDuplicateSlug = "a category with this slug already exists"

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

// Input is the writable part of a category.
type Input struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func (in Input) toDomain() (domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Category{}, domain.Invalid("name is required", "name")
	}
	slug := domain.Slugify(in.Slug)
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if slug == "" {
		return domain.Category{}, domain.Invalid("slug must contain letters or digits", "slug")
	}
	return domain.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("category")
	}
	return c, err
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	c, err := in.toDomain()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, c)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.Conflict(errDuplicateSlug)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	c, err := in.toDomain()
	if err != nil {
		return nil, err
	}
	c.ID = id
	updated, err := s.repo.Update(ctx, c)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return nil, domain.Conflict(errDuplicateSlug)
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.NotFound("category")
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("category")
		}
		return err
	}
	return nil
}
