package customer

import (
	"context"
	"errors"
	"strings"

	"storefront-api/internal/domain"
	custrepo "storefront-api/internal/repository/customer"
)

const errDuplicateEmail = "a customer with this email already exists"

// Service manages customer records for the back-office.
type Service struct {
	repo custrepo.Repository
}

func New(repo custrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Input captures the fields accepted by the create endpoint.
type Input struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Page is one slice of a customer listing plus the unpaginated total.
type Page struct {
	Items []domain.Customer `json:"items"`
	Total int64             `json:"total"`
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)

	var bad []string
	if name == "" {
		bad = append(bad, "name")
	}
	if email == "" {
		bad = append(bad, "email")
	}
	if len(bad) > 0 {
		return nil, domain.Invalid("missing required fields", bad...)
	}
	if !domain.ValidEmail(email) {
		return nil, domain.Invalid("email is not valid", "email")
	}

	created, err := s.repo.Create(ctx, domain.Customer{Name: name, Email: email, Phone: strings.TrimSpace(in.Phone)})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.Conflict(errDuplicateEmail)
	}
	return created, err
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) (*Page, error) {
	items, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("customer")
	}
	return c, err
}
