package pokemons

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/middleware"
	"github.com/richxcame/pokedex/pkg/pagination"
)

// maxUploadSize bounds catalog CSV uploads
const maxUploadSize = 10 << 20

// Handler handles HTTP requests for the catalog
type Handler struct {
	service      *Service
	maxImageSize int64
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, maxImageSize: 5 << 20}
}

// SetMaxImageSize bounds image uploads, in megabytes
func (h *Handler) SetMaxImageSize(mb int) {
	if mb > 0 {
		h.maxImageSize = int64(mb) << 20
	}
}

// List returns a filtered page of the catalog
// GET /api/pokemons?page=1&limit=20&name=char&type=fire&legendary=false&minSpeed=50&maxSpeed=120
func (h *Handler) List(c *gin.Context) {
	params, err := pagination.ParseParams(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	filters, err := parseFilters(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.List(c.Request.Context(), filters, params)
	if err != nil {
		common.HandleError(c, err, "failed to list pokemons")
		return
	}

	common.SuccessResponse(c, page)
}

// Get returns a single catalog item
// GET /api/pokemons/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid pokemon id")
		return
	}

	pokemon, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "failed to get pokemon")
		return
	}

	common.SuccessResponse(c, pokemon)
}

// Import upserts the catalog from an uploaded CSV
// POST /api/pokemons/import (multipart, field "file")
func (h *Handler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		common.ErrorResponse(c, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	file, err := header.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer file.Close()

	result, err := h.service.Import(c.Request.Context(), file)
	if err != nil {
		common.HandleError(c, err, "failed to import pokemons")
		return
	}

	common.SuccessResponse(c, result)
}

// UploadImage replaces a pokemon's image
// POST /api/pokemons/:id/image (multipart, field "image")
func (h *Handler) UploadImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid pokemon id")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageSize+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "No image uploaded")
		return
	}
	if header.Size > h.maxImageSize {
		common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer file.Close()

	view, err := h.service.SetImage(c.Request.Context(), id, header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		common.HandleError(c, err, "failed to upload image")
		return
	}

	common.SuccessResponse(c, view)
}

func parseFilters(c *gin.Context) (*Filters, error) {
	filters := &Filters{
		Name: strings.TrimSpace(c.Query("name")),
		Type: strings.TrimSpace(c.Query("type")),
	}

	if raw, ok := c.GetQuery("legendary"); ok && raw != "" {
		legendary := raw == "true"
		filters.Legendary = &legendary
	}

	for _, f := range []struct {
		name string
		dest **int
	}{
		{"minSpeed", &filters.MinSpeed},
		{"maxSpeed", &filters.MaxSpeed},
	} {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, &filterError{field: f.name}
		}
		*f.dest = &v
	}

	return filters, nil
}

type filterError struct{ field string }

func (e *filterError) Error() string {
	return e.field + " must be a non-negative integer"
}

// RegisterRoutes registers catalog routes under r
func (h *Handler) RegisterRoutes(r gin.IRouter, jwtProvider jwtkeys.KeyProvider) {
	group := r.Group("/pokemons")
	group.Use(middleware.AuthMiddlewareWithProvider(jwtProvider))
	{
		group.GET("", h.List)
		group.POST("/import", middleware.RequireAdmin(), h.Import)
		group.GET("/:id", h.Get)
		group.POST("/:id/image", middleware.RequireAdmin(), h.UploadImage)
	}
}
