package httpserver

import (
	"github.com/gin-gonic/gin"

	"storefront-api/internal/domain"
	productrepo "storefront-api/internal/repository/product"
	categorysvc "storefront-api/internal/service/category"
	productsvc "storefront-api/internal/service/product"
)

func (h *handlers) listCategories(c *gin.Context) {
	list, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, list)
}

func (h *handlers) getCategory(c *gin.Context) {
	id, valid := h.idParam(c, "category")
	if !valid {
		return
	}
	cat, err := h.deps.CategorySvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, cat)
}

func (h *handlers) createCategory(c *gin.Context) {
	var in categorysvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.deps.CategorySvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, cat)
}

func (h *handlers) updateCategory(c *gin.Context) {
	id, valid := h.idParam(c, "category")
	if !valid {
		return
	}
	var in categorysvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.deps.CategorySvc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	id, valid := h.idParam(c, "category")
	if !valid {
		return
	}
	if err := h.deps.CategorySvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, gin.H{"id": id})
}

func (h *handlers) listProducts(c *gin.Context) {
	f := productrepo.Filter{
		CategoryID: c.Query("categoryId"),
		Search:     c.Query("search"),
		Active:     boolQuery(c, "active"),
		Limit:      intQuery(c, "limit", domain.DefaultListLimit),
		Offset:     intQuery(c, "offset", 0),
	}
	page, err := h.deps.ProductSvc.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, page)
}

func (h *handlers) getProduct(c *gin.Context) {
	id, valid := h.idParam(c, "product")
	if !valid {
		return
	}
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, p)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	id, valid := h.idParam(c, "product")
	if !valid {
		return
	}
	var in productsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	id, valid := h.idParam(c, "product")
	if !valid {
		return
	}
	if err := h.deps.ProductSvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, gin.H{"id": id})
}

func (h *handlers) listProductReviews(c *gin.Context) {
	id, valid := h.idParam(c, "product")
	if !valid {
		return
	}
	list, err := h.deps.ReviewSvc.ListByProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, list)
}
