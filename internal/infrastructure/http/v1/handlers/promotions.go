package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/domain"
	"mercato/internal/domain/promotions"
	"mercato/internal/infrastructure/http/v1/dto"
)

// PromotionHandler handles HTTP requests for promotions and pricing.
type PromotionHandler struct {
	*BaseHandler
	service  *promotions.Service
	resolver *promotions.Resolver
}

// NewPromotionHandler creates a new promotion handler.
func NewPromotionHandler(base *BaseHandler, service *promotions.Service, resolver *promotions.Resolver) *PromotionHandler {
	return &PromotionHandler{BaseHandler: base, service: service, resolver: resolver}
}

// Create handles POST /promotions.
func (h *PromotionHandler) Create(c *gin.Context) {
	var req dto.CreatePromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	promotion, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Create(c.Request.Context(), promotion); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromPromotion(promotion))
}

// Get handles GET /promotions/:id.
func (h *PromotionHandler) Get(c *gin.Context) {
	promotionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	promotion, err := h.service.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPromotion(promotion))
}

// List handles GET /promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	filter := promotions.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "created_at DESC")

	if scope := c.Query("scope"); scope != "" {
		s := promotions.Scope(scope)
		filter.Scope = &s
	}
	if active := c.Query("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PromotionResponse, 0, len(result.Items))
	for _, promotion := range result.Items {
		items = append(items, dto.FromPromotion(promotion))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update handles PUT /promotions/:id.
func (h *PromotionHandler) Update(c *gin.Context) {
	promotionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	promotion, err := h.service.GetByID(c.Request.Context(), promotionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(promotion)

	if err := h.service.Update(c.Request.Context(), promotion); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPromotion(promotion))
}

// Delete handles DELETE /promotions/:id.
func (h *PromotionHandler) Delete(c *gin.Context) {
	promotionID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), promotionID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Resolve handles POST /pricing/resolve - effective price for a product.
func (h *PromotionHandler) Resolve(c *gin.Context) {
	var req dto.ResolvePriceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var categoryID id.ID
	if req.CategoryID != "" {
		categoryID, err = id.Parse(req.CategoryID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format"))
			return
		}
	}

	input := promotions.ResolveInput{
		ProductID:  productID,
		CategoryID: categoryID,
		BasePrice:  req.BasePrice,
	}
	if req.At != nil {
		input.At = *req.At
	} else {
		input.At = time.Now()
	}

	resolution, err := h.resolver.Resolve(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromResolution(req.BasePrice, resolution))
}

// RegisterRoutes registers promotion and pricing routes.
func (h *PromotionHandler) RegisterRoutes(group *gin.RouterGroup, admin gin.HandlerFunc) {
	g := group.Group("/promotions")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)

		mutating := g.Group("", admin)
		{
			mutating.POST("", h.Create)
			mutating.PUT("/:id", h.Update)
			mutating.DELETE("/:id", h.Delete)
		}
	}

	group.POST("/pricing/resolve", h.Resolve)
}
