package handlers

import (
	"github.com/gin-gonic/gin"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/domain"
	"mercato/internal/domain/purchasing"
	"mercato/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchasing.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchasing.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Create(ctx, po); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromPurchaseOrder(po))
}

// Get handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	po, err := h.service.GetByID(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(po))
}

// List handles GET /purchase-orders.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter := purchasing.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Status = c.Query("status")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "created_at DESC")

	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err == nil {
			filter.SupplierID = &parsed
		}
	}

	if rescheduled := c.Query("rescheduled"); rescheduled != "" {
		val := rescheduled == "true"
		filter.Rescheduled = &val
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PurchaseOrderResponse, 0, len(result.Items))
	for _, po := range result.Items {
		items = append(items, dto.FromPurchaseOrder(po))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// UpdateStatus handles POST /purchase-orders/:id/status.
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePOStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, err := h.service.UpdateStatus(c.Request.Context(), poID, purchasing.Status(req.Status), req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(po))
}

// Cancel handles POST /purchase-orders/:id/cancel.
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	po, err := h.service.Cancel(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(po))
}

// EditItems handles PUT /purchase-orders/:id/items.
func (h *PurchaseOrderHandler) EditItems(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.EditPOItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	po, err := h.service.EditItems(c.Request.Context(), poID, lines)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(po))
}

// EditSupplier handles PUT /purchase-orders/:id/supplier.
func (h *PurchaseOrderHandler) EditSupplier(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.EditPOSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplierID, err := id.Parse(req.SupplierID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	po, err := h.service.EditSupplier(c.Request.Context(), poID, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(po))
}

// EditDeliveryDate handles PUT /purchase-orders/:id/delivery-date.
func (h *PurchaseOrderHandler) EditDeliveryDate(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.EditPODeliveryDateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, err := h.service.EditDeliveryDate(c.Request.Context(), poID, req.DeliveryDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchaseOrder(po))
}

// History handles GET /purchase-orders/:id/history.
func (h *PurchaseOrderHandler) History(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	events, err := h.service.History(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStatusEvents(events))
}

// RegisterRoutes registers purchase order routes.
func (h *PurchaseOrderHandler) RegisterRoutes(group *gin.RouterGroup, write gin.HandlerFunc) {
	g := group.Group("/purchase-orders")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.GET("/:id/history", h.History)

		mutating := g.Group("", write)
		{
			mutating.POST("", h.Create)
			mutating.POST("/:id/status", h.UpdateStatus)
			mutating.POST("/:id/cancel", h.Cancel)
			mutating.PUT("/:id/items", h.EditItems)
			mutating.PUT("/:id/supplier", h.EditSupplier)
			mutating.PUT("/:id/delivery-date", h.EditDeliveryDate)
		}
	}
}
