package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-api/internal/domain"
	"storefront-api/internal/media"
	orderrepo "storefront-api/internal/repository/order"
	productrepo "storefront-api/internal/repository/product"
	categorysvc "storefront-api/internal/service/category"
	customersvc "storefront-api/internal/service/customer"
	ordersvc "storefront-api/internal/service/order"
	productsvc "storefront-api/internal/service/product"
	reviewsvc "storefront-api/internal/service/review"
)

type stubCategoryService struct {
	created *domain.Category
	err     error
}

func (s *stubCategoryService) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{}, s.err
}

func (s *stubCategoryService) Get(context.Context, string) (*domain.Category, error) {
	return s.created, s.err
}

func (s *stubCategoryService) Create(_ context.Context, in categorysvc.Input) (*domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Category{ID: "c1", Name: in.Name, Slug: domain.Slugify(in.Name)}, nil
}

func (s *stubCategoryService) Update(context.Context, string, categorysvc.Input) (*domain.Category, error) {
	return s.created, s.err
}

func (s *stubCategoryService) Delete(context.Context, string) error { return s.err }

type stubProductService struct {
	lastFilter productrepo.Filter
	getErr     error
}

func (s *stubProductService) List(_ context.Context, f productrepo.Filter) (*productsvc.Page, error) {
	s.lastFilter = f
	return &productsvc.Page{Items: []domain.Product{}}, nil
}

func (s *stubProductService) Get(context.Context, string) (*domain.Product, error) {
	return nil, s.getErr
}

func (s *stubProductService) Create(context.Context, productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: "p1"}, nil
}

func (s *stubProductService) Update(context.Context, string, productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: "p1"}, nil
}

func (s *stubProductService) Delete(context.Context, string) error { return nil }

type stubCustomerService struct{}

func (stubCustomerService) Create(_ context.Context, in customersvc.Input) (*domain.Customer, error) {
	return &domain.Customer{ID: "cust", Email: in.Email}, nil
}

func (stubCustomerService) List(context.Context, string, int, int) (*customersvc.Page, error) {
	return &customersvc.Page{Items: []domain.Customer{}}, nil
}

func (stubCustomerService) Get(context.Context, string) (*domain.Customer, error) {
	return nil, domain.NotFound("customer")
}

type stubReviewService struct{}

func (stubReviewService) Create(context.Context, reviewsvc.Input) (*domain.Review, error) {
	return nil, domain.Conflict("customer has already reviewed this product")
}

func (stubReviewService) ListByProduct(context.Context, string) ([]domain.Review, error) {
	return []domain.Review{}, nil
}

type stubStats struct{ err error }

func (s stubStats) Get(context.Context) (*domain.Stats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Stats{Products: 3, PendingOrders: 1}, nil
}

type stubUploader struct{ folder string }

func (s *stubUploader) Upload(_ context.Context, folder string, data []byte) (*media.Uploaded, error) {
	s.folder = folder
	return &media.Uploaded{URL: "http://x/uploads/products/a.jpg", Path: "products/a.jpg", Size: len(data)}, nil
}

// countingOrderRepo fails the test if a transaction is opened.
type countingOrderRepo struct {
	txCalls int
}

func (r *countingOrderRepo) InTx(context.Context, func(context.Context, orderrepo.Store) error) error {
	r.txCalls++
	return errors.New("unexpected write")
}

func (r *countingOrderRepo) GetByID(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (r *countingOrderRepo) List(context.Context, orderrepo.Filter) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (r *countingOrderRepo) Count(context.Context, orderrepo.Filter) (int64, error) { return 0, nil }

func (r *countingOrderRepo) UpdateStatus(context.Context, string, string) (*domain.Order, error) {
	return nil, domain.NotFound("order")
}

const (
	customerUUID = "0b9f7c5e-0c5d-4c8e-9d7e-4bbf0f3b1a01"
	productUUID  = "0b9f7c5e-0c5d-4c8e-9d7e-4bbf0f3b1a02"
	variantUUID  = "0b9f7c5e-0c5d-4c8e-9d7e-4bbf0f3b1a03"
)

// orderBody renders a one-item order for an existing customer.
func orderBody(customerID, productID, variantID, price string) string {
	item := `{"productId":"` + productID + `","variantId":"` + variantID + `","quantity":1`
	if price != "" {
		item += `,"price":"` + price + `"`
	}
	return `{"customer":{"id":"` + customerID + `"},"items":[` + item + `}]}`
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details map[string]any  `json:"details"`
}

type fixture struct {
	router   *gin.Engine
	orders   *countingOrderRepo
	products *stubProductService
	stats    *stubStats
	uploader *stubUploader
	category *stubCategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		orders:   &countingOrderRepo{},
		products: &stubProductService{},
		stats:    &stubStats{},
		uploader: &stubUploader{},
		category: &stubCategoryService{},
	}
	router, err := buildRouter(zap.NewNop(), stubPinger{}, Deps{
		CategorySvc: f.category,
		ProductSvc:  f.products,
		CustomerSvc: stubCustomerService{},
		OrderSvc:    ordersvc.New(f.orders, nil, nil),
		ReviewSvc:   stubReviewService{},
		Stats:       f.stats,
		Uploader:    f.uploader,
	}, Options{MaxUploadBytes: 1 << 10})
	require.NoError(t, err)
	f.router = router
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body=%s", rec.Body.String())
	return rec, env
}

func TestCreateOrder_EmptyItemsIsRejectedWithoutWrites(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/orders",
		`{"customer":{"name":"Ada","email":"ada@example.com"},"items":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, []any{"items"}, env.Details["fields"])
	assert.Zero(t, f.orders.txCalls)
}

func TestCreateOrder_MissingPriceIsRejectedWithoutWrites(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/orders", orderBody(customerUUID, productUUID, variantUUID, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"items[0].price"}, env.Details["fields"])
	assert.Zero(t, f.orders.txCalls)
}

func TestCreateOrder_MalformedIDsAreRejectedWithoutWrites(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/orders", orderBody("not-a-uuid", "abc", "xyz", "5"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"customer.id", "items[0].productId", "items[0].variantId"}, env.Details["fields"])
	assert.Zero(t, f.orders.txCalls)
}

func TestListOrders_MalformedCustomerFilter(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/orders?customerId=42", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"customerId"}, env.Details["fields"])
}

func TestCreateOrder_MalformedJSON(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/orders", `{"items":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON body", env.Error)
}

func TestCreateOrder_InternalErrorHidesCause(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(
		orderBody(customerUUID, productUUID, variantUUID, "2.50")))
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
	assert.NotContains(t, rec.Body.String(), "unexpected write")
	assert.Contains(t, rec.Body.String(), `"requestId":"req-123"`)
	assert.Equal(t, 1, f.orders.txCalls)
}

func TestCreateCategory_Created(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/categories", `{"name":"Summer Dresses"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"slug":"summer-dresses"`)
}

func TestCreateCategory_ConflictIs400(t *testing.T) {
	f := newFixture(t)
	f.category.err = domain.Conflict("a category with this slug already exists")

	rec, env := f.do(t, http.MethodPost, "/api/categories", `{"name":"Dup"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "a category with this slug already exists", env.Error)
}

func TestGetProduct_InvalidIDIs404(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/products/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", env.Error)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)
	f.products.getErr = domain.NotFound("product")

	rec, _ := f.do(t, http.MethodGet, "/api/products/0b9f7c5e-0c5d-4c8e-9d7e-4bbf0f3b1a11", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts_ParsesFilters(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/products?search=tote&active=false&limit=5&offset=-3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tote", f.products.lastFilter.Search)
	require.NotNil(t, f.products.lastFilter.Active)
	assert.False(t, *f.products.lastFilter.Active)
	assert.Equal(t, 5, f.products.lastFilter.Limit)
	assert.Zero(t, f.products.lastFilter.Offset)
}

func TestListProducts_ZeroLimitUsesDefault(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/products?limit=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, f.products.lastFilter.Limit)
}

func TestCreateReview_Duplicate(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/reviews", `{"productId":"p","customerId":"c","rating":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "customer has already reviewed this product", env.Error)
}

func TestUpdateOrderStatus_Invalid(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPatch, "/api/orders/0b9f7c5e-0c5d-4c8e-9d7e-4bbf0f3b1a11/status", `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"status"}, env.Details["fields"])
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/admin/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":3,"categories":0,"customers":0,"orders":0,"pendingOrders":1}`, string(env.Data))
}

func TestUpload(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "a.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("folder", "categories"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "categories", f.uploader.folder)
	assert.Contains(t, rec.Body.String(), `"size":9`)
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/upload", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"file"}, env.Details["fields"])
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(stubPinger{err: errors.New("down")}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	_, err := buildRouter(zap.NewNop(), nil, Deps{}, Options{})
	assert.Error(t, err)
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestID(), recovery(zap.NewNop()))
	router.GET("/panic", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), internalErrorMessage)
	assert.NotContains(t, rec.Body.String(), "boom")
}
