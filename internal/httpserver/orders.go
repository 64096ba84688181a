package httpserver

import (
	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
	customersvc "storefront-api/internal/service/customer"
	ordersvc "storefront-api/internal/service/order"
	reviewsvc "storefront-api/internal/service/review"
)

func (h *handlers) createOrder(c *gin.Context) {
	var in ordersvc.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	o, err := h.deps.OrderSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, o)
}

func (h *handlers) listOrders(c *gin.Context) {
	page, err := h.deps.OrderSvc.List(c.Request.Context(), orderrepo.Filter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customerId"),
		Limit:      intQuery(c, "limit", domain.DefaultListLimit),
		Offset:     intQuery(c, "offset", 0),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, page)
}

func (h *handlers) getOrder(c *gin.Context) {
	id, valid := h.idParam(c, "order")
	if !valid {
		return
	}
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	id, valid := h.idParam(c, "order")
	if !valid {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, o)
}

func (h *handlers) listCustomers(c *gin.Context) {
	page, err := h.deps.CustomerSvc.List(c.Request.Context(), c.Query("search"),
		intQuery(c, "limit", domain.DefaultListLimit), intQuery(c, "offset", 0))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, page)
}

func (h *handlers) getCustomer(c *gin.Context) {
	id, valid := h.idParam(c, "customer")
	if !valid {
		return
	}
	cust, err := h.deps.CustomerSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, cust)
}

func (h *handlers) createCustomer(c *gin.Context) {
	var in customersvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cust, err := h.deps.CustomerSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, cust)
}

func (h *handlers) createReview(c *gin.Context) {
	var in reviewsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	rv, err := h.deps.ReviewSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, rv)
}

func (h *handlers) stats(c *gin.Context) {
	s, err := h.deps.Stats.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, s)
}
