package favorites

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/middleware"
)

// Handler handles HTTP requests for favorites
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new favorites handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// AddFavorite favorites a pokemon for the authenticated user
// POST /api/favorites/:itemId
func (h *Handler) AddFavorite(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	pokemonID, ok := parseItemID(c)
	if !ok {
		return
	}

	fav, err := h.service.AddFavorite(c.Request.Context(), userID, pokemonID)
	if err != nil {
		common.HandleError(c, err, "failed to add favorite")
		return
	}

	common.CreatedResponse(c, fav)
}

// RemoveFavorite removes a pokemon from the authenticated user's favorites
// DELETE /api/favorites/:itemId
func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	pokemonID, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), userID, pokemonID); err != nil {
		common.HandleError(c, err, "failed to remove favorite")
		return
	}

	common.NoContentResponse(c)
}

// GetMyFavorites returns the authenticated user's favorites
// GET /api/favorites/users/me
func (h *Handler) GetMyFavorites(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.respondFavorites(c, userID, userID)
}

// GetUserFavorites returns another user's favorites; admins only
// GET /api/favorites/users/:userId
func (h *Handler) GetUserFavorites(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}

	h.respondFavorites(c, userID, targetID)
}

func (h *Handler) respondFavorites(c *gin.Context, callerID, targetID int64) {
	resp, err := h.service.GetFavorites(c.Request.Context(), callerID, targetID, middleware.IsAdmin(c))
	if err != nil {
		common.HandleError(c, err, "failed to get favorites")
		return
	}

	common.SuccessResponse(c, resp)
}

func parseItemID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("itemId"))
	if err != nil || id < 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid pokemon id")
		return 0, false
	}
	return id, true
}

// RegisterRoutes registers favorites routes under r
func (h *Handler) RegisterRoutes(r gin.IRouter, jwtProvider jwtkeys.KeyProvider) {
	group := r.Group("/favorites")
	group.Use(middleware.AuthMiddlewareWithProvider(jwtProvider))
	{
		group.POST("/:itemId", h.AddFavorite)
		group.DELETE("/:itemId", h.RemoveFavorite)
		group.GET("/users/me", h.GetMyFavorites)
		group.GET("/users/:userId", h.GetUserFavorites)
	}
}
