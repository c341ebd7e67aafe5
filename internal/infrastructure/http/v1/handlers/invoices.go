package handlers

import (
	"github.com/gin-gonic/gin"

	"mercato/internal/domain/reconciliation"
	"mercato/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoice price reconciliation.
type InvoiceHandler struct {
	*BaseHandler
	service *reconciliation.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *reconciliation.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Upsert handles PUT /invoices/:id/prices - record one or both prices.
func (h *InvoiceHandler) Upsert(c *gin.Context) {
	var req dto.UpsertInvoicePricesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.service.Upsert(c.Request.Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoicePrices(rec))
}

// Get handles GET /invoices/:id/prices.
func (h *InvoiceHandler) Get(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoicePrices(rec))
}

// Delete handles DELETE /invoices/:id/prices.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Mismatches handles GET /invoices/mismatches.
func (h *InvoiceHandler) Mismatches(c *gin.Context) {
	report, err := h.service.ListMismatches(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMismatchReport(report))
}

// RegisterRoutes registers invoice reconciliation routes.
func (h *InvoiceHandler) RegisterRoutes(group *gin.RouterGroup, write gin.HandlerFunc) {
	g := group.Group("/invoices")
	{
		g.GET("/mismatches", h.Mismatches)
		g.GET("/:id/prices", h.Get)

		mutating := g.Group("", write)
		{
			mutating.PUT("/:id/prices", h.Upsert)
			mutating.DELETE("/:id/prices", h.Delete)
		}
	}
}
