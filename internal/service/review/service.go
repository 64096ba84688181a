package review

import (
	"context"
	"strings"

	"storefront-api/internal/domain"
	reviewrepo "storefront-api/internal/repository/review"
)

type Service struct {
	repo reviewrepo.Repository
}

func New(repo reviewrepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Review, error) {
	var bad []string
	productID := strings.TrimSpace(in.ProductID)
	customerID := strings.TrimSpace(in.CustomerID)
	if !domain.ValidID(productID) {
		bad = append(bad, "productId")
	}
	if !domain.ValidID(customerID) {
		bad = append(bad, "customerId")
	}
	if in.Rating < 1 || in.Rating > 5 {
		bad = append(bad, "rating")
	}
	if len(bad) > 0 {
		return nil, domain.Invalid("missing or invalid fields", bad...)
	}
	return s.repo.Create(ctx, domain.Review{
		ProductID:  productID,
		CustomerID: customerID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	})
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}
