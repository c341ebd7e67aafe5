package dto

import (
	"time"

	"mercato/internal/core/id"
	"mercato/internal/core/types"
	"mercato/internal/domain/promotions"
)

// --- Requests ---

// CreatePromotionRequest creates a new promotion.
type CreatePromotionRequest struct {
	Name            string      `json:"name" binding:"required"`
	Scope           string      `json:"scope" binding:"required"`
	ScopeTarget     *string     `json:"scopeTarget,omitempty"`
	DiscountPercent types.Money `json:"discountPercent"`
	StartDate       *time.Time  `json:"startDate,omitempty"`
	EndDate         *time.Time  `json:"endDate,omitempty"`
	Active          *bool       `json:"active,omitempty"`
}

// ToEntity converts the request into a domain promotion.
func (r CreatePromotionRequest) ToEntity() (*promotions.Promotion, error) {
	var target *id.ID
	if r.ScopeTarget != nil {
		parsed, err := id.Parse(*r.ScopeTarget)
		if err != nil {
			return nil, err
		}
		target = &parsed
	}

	p := promotions.NewPromotion(r.Name, promotions.Scope(r.Scope), target, r.DiscountPercent)
	p.StartDate = r.StartDate
	p.EndDate = r.EndDate
	if r.Active != nil {
		p.Active = *r.Active
	}
	return p, nil
}

// UpdatePromotionRequest updates promotion fields. Nil fields are preserved.
type UpdatePromotionRequest struct {
	Name            *string      `json:"name,omitempty"`
	DiscountPercent *types.Money `json:"discountPercent,omitempty"`
	StartDate       *time.Time   `json:"startDate,omitempty"`
	EndDate         *time.Time   `json:"endDate,omitempty"`
	Active          *bool        `json:"active,omitempty"`
}

// ApplyTo merges the request into an existing promotion.
func (r UpdatePromotionRequest) ApplyTo(p *promotions.Promotion) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.DiscountPercent != nil {
		p.DiscountPercent = *r.DiscountPercent
	}
	if r.StartDate != nil {
		p.StartDate = r.StartDate
	}
	if r.EndDate != nil {
		p.EndDate = r.EndDate
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
}

// ResolvePriceRequest asks for the effective price of a product.
type ResolvePriceRequest struct {
	ProductID  string      `json:"productId" binding:"required"`
	CategoryID string      `json:"categoryId,omitempty"`
	BasePrice  types.Money `json:"basePrice"`
	At         *time.Time  `json:"at,omitempty"`
}

// --- Responses ---

// PromotionResponse is the API representation of a promotion.
type PromotionResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Scope           string      `json:"scope"`
	ScopeTarget     *string     `json:"scopeTarget,omitempty"`
	DiscountPercent types.Money `json:"discountPercent"`
	StartDate       *time.Time  `json:"startDate,omitempty"`
	EndDate         *time.Time  `json:"endDate,omitempty"`
	Active          bool        `json:"active"`
	Version         int         `json:"version"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// FromPromotion creates PromotionResponse from the domain entity.
func FromPromotion(p *promotions.Promotion) PromotionResponse {
	var target *string
	if p.ScopeTarget != nil {
		s := p.ScopeTarget.String()
		target = &s
	}

	return PromotionResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Scope:           string(p.Scope),
		ScopeTarget:     target,
		DiscountPercent: p.DiscountPercent,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Active:          p.Active,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ResolvePriceResponse is the pricing resolution result.
type ResolvePriceResponse struct {
	Applied         bool               `json:"applied"`
	Promotion       *PromotionResponse `json:"promotion,omitempty"`
	DiscountPercent types.Money        `json:"discountPercent"`
	BasePrice       types.Money        `json:"basePrice"`
	EffectivePrice  types.Money        `json:"effectivePrice"`
}

// FromResolution creates ResolvePriceResponse from the resolver result.
func FromResolution(basePrice types.Money, res promotions.Resolution) ResolvePriceResponse {
	out := ResolvePriceResponse{
		Applied:         res.Applied,
		DiscountPercent: res.DiscountPercent,
		BasePrice:       basePrice,
		EffectivePrice:  res.EffectivePrice,
	}
	if res.Promotion != nil {
		p := FromPromotion(res.Promotion)
		out.Promotion = &p
	}
	return out
}
