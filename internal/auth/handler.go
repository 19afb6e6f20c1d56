package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/middleware"
	"github.com/richxcame/pokedex/pkg/ratelimit"
)

// Handler handles HTTP requests for accounts
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new auth handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Signup creates an account
// POST /api/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err, "signup failed")
		return
	}

	common.CreatedResponse(c, resp)
}

// Login exchanges credentials for an access token
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err, "login failed")
		return
	}

	common.SuccessResponse(c, resp)
}

// Me returns the caller's account
// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}

// RegisterRoutes registers account routes under r. Credential endpoints are rate limited.
func (h *Handler) RegisterRoutes(r gin.IRouter, jwtProvider jwtkeys.KeyProvider, limiter *ratelimit.Limiter) {
	group := r.Group("/auth")
	{
		group.POST("/signup", middleware.RateLimit(limiter, "signup"), h.Signup)
		group.POST("/login", middleware.RateLimit(limiter, "login"), h.Login)
		group.GET("/me", middleware.AuthMiddlewareWithProvider(jwtProvider), h.Me)
	}
}
