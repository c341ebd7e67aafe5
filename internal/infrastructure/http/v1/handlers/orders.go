package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/domain"
	"mercato/internal/domain/orders"
	"mercato/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders - place a new order.
func (h *OrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Create(ctx, order); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrder(order))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// List handles GET /orders - list with filtering.
func (h *OrderHandler) List(c *gin.Context) {
	filter := orders.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Status = c.Query("status")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "placed_at DESC")

	if customerID := c.Query("customerId"); customerID != "" {
		parsed, err := id.Parse(customerID)
		if err == nil {
			filter.CustomerID = &parsed
		}
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, 0, len(result.Items))
	for _, order := range result.Items {
		items = append(items, dto.FromOrder(order))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Transition handles POST /orders/:id/transition - explicit target status.
func (h *OrderHandler) Transition(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TransitionOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.Transition(c.Request.Context(), orderID, orders.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(order))
}

// stageOp adapts one named fulfillment operation into a handler.
func (h *OrderHandler) stageOp(op func(c *gin.Context, orderID id.ID) (*orders.Order, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := id.Parse(c.Param("id"))
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format"))
			return
		}

		order, err := op(c, orderID)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.OK(c, dto.FromOrder(order))
	}
}

// RegisterRoutes registers order routes.
func (h *OrderHandler) RegisterRoutes(group *gin.RouterGroup, fulfill gin.HandlerFunc) {
	g := group.Group("/orders")
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)

		ops := g.Group("/:id", fulfill)
		{
			ops.POST("/transition", h.Transition)
			ops.POST("/pick/start", h.stageOp(func(c *gin.Context, orderID id.ID) (*orders.Order, error) {
				return h.service.StartPicking(c.Request.Context(), orderID)
			}))
			ops.POST("/pick/complete", h.stageOp(func(c *gin.Context, orderID id.ID) (*orders.Order, error) {
				return h.service.CompletePicking(c.Request.Context(), orderID)
			}))
			ops.POST("/pack/start", h.stageOp(func(c *gin.Context, orderID id.ID) (*orders.Order, error) {
				return h.service.StartPacking(c.Request.Context(), orderID)
			}))
			ops.POST("/pack/complete", h.stageOp(func(c *gin.Context, orderID id.ID) (*orders.Order, error) {
				return h.service.CompletePacking(c.Request.Context(), orderID)
			}))
			ops.POST("/dispatch", h.stageOp(func(c *gin.Context, orderID id.ID) (*orders.Order, error) {
				return h.service.ScheduleDelivery(c.Request.Context(), orderID)
			}))
			ops.POST("/cancel", h.stageOp(func(c *gin.Context, orderID id.ID) (*orders.Order, error) {
				return h.service.Cancel(c.Request.Context(), orderID)
			}))
		}
	}
}
