package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in categorysvc.Input) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	List(ctx context.Context, f productrepo.Filter) (*productsvc.Page, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CustomerService interface {
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
	List(ctx context.Context, search string, limit, offset int) (*customersvc.Page, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
}

type OrderService interface {
	Create(ctx context.Context, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.Filter) (*ordersvc.Page, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

type ReviewService interface {
	Create(ctx context.Context, in reviewsvc.Input) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

type StatsReader interface {
	Get(ctx context.Context) (*domain.Stats, error)
}

type Uploader interface {
	Upload(ctx context.Context, folder string, data []byte) (*media.Uploaded, error)
}

// Deps lists the services the handlers call.
type Deps struct {
	CategorySvc CategoryService
	ProductSvc  ProductService
	CustomerSvc CustomerService
	OrderSvc    OrderService
	ReviewSvc   ReviewService
	Stats       StatsReader
	Uploader    Uploader
}

func (d Deps) validate() error {
	switch {
	case d.CategorySvc == nil:
		return errors.New("category service is required")
	case d.ProductSvc == nil:
		return errors.New("product service is required")
	case d.CustomerSvc == nil:
		return errors.New("customer service is required")
	case d.OrderSvc == nil:
		return errors.New("order service is required")
	case d.ReviewSvc == nil:
		return errors.New("review service is required")
	case d.Stats == nil:
		return errors.New("stats reader is required")
	case d.Uploader == nil:
		return errors.New("uploader is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		requestID(),
		gin.LoggerWithWriter(zap.NewStdLog(logger).Writer()),
		recovery(logger),
		cors.New(corsConfig(opts.CORSOrigins)),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	h := &handlers{deps: deps, logger: logger, maxUploadBytes: opts.MaxUploadBytes}
	api := router.Group("/api")

	api.GET("/categories", h.listCategories)
	api.POST("/categories", h.createCategory)
	api.GET("/categories/:id", h.getCategory)
	api.PUT("/categories/:id", h.updateCategory)
	api.DELETE("/categories/:id", h.deleteCategory)

	api.GET("/products", h.listProducts)
	api.POST("/products", h.createProduct)
	api.GET("/products/:id", h.getProduct)
	api.PUT("/products/:id", h.updateProduct)
	api.DELETE("/products/:id", h.deleteProduct)
	api.GET("/products/:id/reviews", h.listProductReviews)

	api.GET("/customers", h.listCustomers)
	api.POST("/customers", h.createCustomer)
	api.GET("/customers/:id", h.getCustomer)

	api.GET("/orders", h.listOrders)
	api.POST("/orders", h.createOrder)
	api.GET("/orders/:id", h.getOrder)
	api.PATCH("/orders/:id/status", h.updateOrderStatus)

	api.POST("/reviews", h.createReview)
	api.POST("/upload", h.upload)
	api.GET("/admin/stats", h.stats)

	router.NoRoute(func(c *gin.Context) {
		fail(c, 404, "route not found", nil)
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps           Deps
	logger         *zap.Logger
	maxUploadBytes int64
}
