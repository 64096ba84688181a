// Package order implements order placement: validation, customer
// resolution and the transactional write of header and items.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	orderrepo "storefront-api/internal/repository/order"
)

const (
	orderNumberPrefix   = "ORD"
	orderNumberAttempts = 5

	defaultPublishTimeout = 5 * time.Second
)

// ErrOrderNumberExhausted is returned when every candidate order number
// for the current millisecond window is already taken.
var ErrOrderNumberExhausted = errors.New("order number collision")

// Publisher is notified after an order has been committed.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *domain.Order) error
}

type Service struct {
	repo           orderrepo.Repository
	publisher      Publisher
	publishTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// New builds a Service. publisher may be nil.
func New(repo orderrepo.Repository, publisher Publisher, log *zap.Logger) *Service {
	return &Service{
		repo:           repo,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		logger:         logger.OrNop(log),
		now:            time.Now,
	}
}

type CustomerInput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ItemInput struct {
	ProductID string           `json:"productId"`
	VariantID string           `json:"variantId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

type CreateInput struct {
	Customer    *CustomerInput   `json:"customer"`
	Items       []ItemInput      `json:"items"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
}

// Page is one slice of an order listing plus the unpaginated total.
type Page struct {
	Items []domain.Order `json:"items"`
	Total int64          `json:"total"`
}

// OrderNumber renders ORD + YYYYMMDD + a four digit suffix.
func OrderNumber(t time.Time, suffix int) string {
	return fmt.Sprintf("%s%s%04d", orderNumberPrefix, t.Format("20060102"), suffix%10000)
}

// Validate checks the request shape without touching the database.
func (in CreateInput) Validate() error {
	var bad []string
	if in.Customer == nil {
		bad = append(bad, "customer")
	} else if id := strings.TrimSpace(in.Customer.ID); id != "" {
		if !domain.ValidID(id) {
			bad = append(bad, "customer.id")
		}
	} else {
		if strings.TrimSpace(in.Customer.Name) == "" {
			bad = append(bad, "customer.name")
		}
		email := domain.NormalizeEmail(in.Customer.Email)
		if email == "" || !domain.ValidEmail(email) {
			bad = append(bad, "customer.email")
		}
	}
	if len(in.Items) == 0 {
		bad = append(bad, "items")
	}
	for i, it := range in.Items {
		if !domain.ValidID(strings.TrimSpace(it.ProductID)) {
			bad = append(bad, fmt.Sprintf("items[%d].productId", i))
		}
		if !domain.ValidID(strings.TrimSpace(it.VariantID)) {
			bad = append(bad, fmt.Sprintf("items[%d].variantId", i))
		}
		if it.Quantity <= 0 {
			bad = append(bad, fmt.Sprintf("items[%d].quantity", i))
		}
		if it.Price == nil || it.Price.IsNegative() {
			bad = append(bad, fmt.Sprintf("items[%d].price", i))
		}
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		bad = append(bad, "totalAmount")
	}
	if len(bad) > 0 {
		return domain.Invalid("missing or invalid order fields", bad...)
	}
	return nil
}

// total is the requested amount, or the sum of the line totals when absent.
func (in CreateInput) total() decimal.Decimal {
	if in.TotalAmount != nil {
		return *in.TotalAmount
	}
	sum := decimal.Zero
	for _, it := range in.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Create validates in and writes customer, order and items atomically.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Order
	err := s.repo.InTx(ctx, func(ctx context.Context, st orderrepo.Store) error {
		customerID, err := resolveCustomer(ctx, st, *in.Customer)
		if err != nil {
			return err
		}

		snapshots := make([]orderrepo.Snapshot, len(in.Items))
		for i, it := range in.Items {
			snap, err := st.LookupVariant(ctx, strings.TrimSpace(it.ProductID), strings.TrimSpace(it.VariantID))
			if err != nil {
				return err
			}
			snapshots[i] = snap
		}

		header := domain.Order{
			CustomerID:    customerID,
			CustomerName:  strings.TrimSpace(in.Customer.Name),
			CustomerEmail: domain.NormalizeEmail(in.Customer.Email),
			CustomerPhone: strings.TrimSpace(in.Customer.Phone),
			TotalAmount:   in.total(),
			Status:        domain.OrderStatusPending,
		}
		o, err := s.insertHeader(ctx, st, header)
		if err != nil {
			return err
		}

		o.Items = make([]domain.OrderItem, 0, len(in.Items))
		for i, it := range in.Items {
			item, err := st.InsertItem(ctx, domain.OrderItem{
				OrderID:     o.ID,
				ProductID:   strings.TrimSpace(it.ProductID),
				VariantID:   strings.TrimSpace(it.VariantID),
				ProductName: snapshots[i].ProductName,
				VariantName: snapshots[i].VariantName,
				Price:       *it.Price,
				Quantity:    it.Quantity,
			})
			if err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
			o.Items = append(o.Items, *item)
		}
		created = o
		return nil
	})
	if err != nil {
		s.logger.Warn("order: create failed", zap.Int("items", len(in.Items)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order: created",
		zap.String("id", created.ID),
		zap.String("orderNumber", created.OrderNumber),
		zap.String("customerId", created.CustomerID),
		zap.String("total", created.TotalAmount.String()),
	)
	s.publish(ctx, created)
	return created, nil
}

// publish runs after commit under its own deadline, detached from request
// cancellation. Failures are logged only.
func (s *Service) publish(ctx context.Context, o *domain.Order) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
		s.logger.Warn("order: publish created event", zap.String("id", o.ID), zap.Error(err))
	}
}

// resolveCustomer prefers an explicit id, then an existing email, then a
// new customer row.
func resolveCustomer(ctx context.Context, st orderrepo.Store, c CustomerInput) (string, error) {
	if id := strings.TrimSpace(c.ID); id != "" {
		return id, nil
	}
	email := domain.NormalizeEmail(c.Email)
	id, ok, err := st.FindCustomerIDByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find customer: %w", err)
	}
	if ok {
		return id, nil
	}
	id, err = st.CreateCustomer(ctx, strings.TrimSpace(c.Name), email, strings.TrimSpace(c.Phone))
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return id, nil
}

// insertHeader walks forward from the timestamp suffix until an unused
// order number is found.
func (s *Service) insertHeader(ctx context.Context, st orderrepo.Store, header domain.Order) (*domain.Order, error) {
	now := s.now()
	suffix := int(now.UnixMilli() % 10000)
	for i := 0; i < orderNumberAttempts; i++ {
		header.OrderNumber = OrderNumber(now, suffix+i)
		o, ok, err := st.InsertOrder(ctx, header)
		if err != nil {
			return nil, err
		}
		if ok {
			return o, nil
		}
		s.logger.Debug("order: number taken", zap.String("orderNumber", header.OrderNumber))
	}
	return nil, ErrOrderNumberExhausted
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("order")
	}
	return o, err
}

func (s *Service) List(ctx context.Context, f orderrepo.Filter) (*Page, error) {
	if f.Status != "" && !domain.ValidOrderStatus(f.Status) {
		return nil, domain.Invalid("unknown order status", "status")
	}
	if f.CustomerID != "" && !domain.ValidID(f.CustomerID) {
		return nil, domain.Invalid("invalid customer id", "customerId")
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

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.ValidOrderStatus(status) {
		return nil, domain.Invalid("unknown order status", "status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
