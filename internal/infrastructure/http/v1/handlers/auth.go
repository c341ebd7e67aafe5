package handlers

import (
	"github.com/gin-gonic/gin"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
	"mercato/internal/domain/auth"
	"mercato/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt,
		TokenType:   tokens.TokenType,
		User:        dto.FromUser(user),
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := id.Parse(h.GetUserID(c))
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// RegisterPublicRoutes registers routes that do not require authentication.
func (h *AuthHandler) RegisterPublicRoutes(group *gin.RouterGroup) {
	g := group.Group("/auth")
	{
		g.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
// Registration is restricted to administrators.
func (h *AuthHandler) RegisterProtectedRoutes(group *gin.RouterGroup, admin gin.HandlerFunc) {
	g := group.Group("/auth")
	{
		g.GET("/me", h.Me)
		g.POST("/register", admin, h.Register)
	}
}
