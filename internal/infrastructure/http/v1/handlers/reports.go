package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"mercato/internal/core/id"
	"mercato/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// DeliveryTimeline handles GET /reports/delivery-timeline.
func (h *ReportsHandler) DeliveryTimeline(c *gin.Context) {
	filter := reports.DeliveryTimelineFilter{
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
		OnlyDelayed: c.Query("onlyDelayed") == "true",
	}

	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err == nil {
			filter.SupplierIDs = append(filter.SupplierIDs, parsed)
		}
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.FromDate = &parsed
		}
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.ToDate = &parsed
		}
	}

	report, err := h.service.GetDeliveryTimeline(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(group *gin.RouterGroup) {
	g := group.Group("/reports")
	{
		g.GET("/delivery-timeline", h.DeliveryTimeline)
	}
}
