package pokemons

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/middleware"
	"github.com/richxcame/pokedex/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "catalog-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(repo *MockRepository) *gin.Engine {
	r := gin.New()
	NewHandler(NewService(repo, nil, 0)).RegisterRoutes(r.Group("/api"), jwtkeys.NewStaticProvider(testSecret))
	return r
}

func bearer(t *testing.T, isAdmin bool) string {
	t.Helper()
	claims := middleware.Claims{
		UserID:   1,
		Username: "ash",
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func doRequest(r *gin.Engine, req *http.Request, auth string) *httptest.ResponseRecorder {
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_List(t *testing.T) {
	repo := new(MockRepository)
	legendary := false
	minSpeed := 50
	repo.On("List", mock.Anything, &Filters{Type: "fire", Legendary: &legendary, MinSpeed: &minSpeed}, 10, 10).
		Return([]*Pokemon{{ID: 4, Name: "Charmander", Type1: "Fire"}}, int64(11), nil)

	w := doRequest(setupRouter(repo),
		httptest.NewRequest(http.MethodGet, "/api/pokemons?page=2&limit=10&type=fire&legendary=false&minSpeed=50", nil),
		bearer(t, false))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items      []PokemonView `json:"items"`
		Total      int64         `json:"total"`
		Page       int           `json:"page"`
		Limit      int           `json:"limit"`
		TotalPages int           `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(11), body.Total)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 10, body.Limit)
	assert.Equal(t, 2, body.TotalPages)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Charmander", body.Items[0].Name)
}

func TestHandler_List_BadQuery(t *testing.T) {
	router := setupRouter(new(MockRepository))

	for _, q := range []string{"limit=101", "page=0", "minSpeed=-1", "maxSpeed=fast"} {
		t.Run(q, func(t *testing.T) {
			w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/pokemons?"+q, nil), bearer(t, false))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_RequiresAuth(t *testing.T) {
	w := doRequest(setupRouter(new(MockRepository)), httptest.NewRequest(http.MethodGet, "/api/pokemons", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Get(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 25).Return(&Pokemon{ID: 25, Name: "Pikachu"}, nil)
	repo.On("GetByID", mock.Anything, 9999).Return(nil, ErrPokemonNotFound)
	router := setupRouter(repo)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/pokemons/25", nil), bearer(t, false))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Pikachu"`)

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/pokemons/9999", nil), bearer(t, false))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"code":404,"message":"Pokemon not found"}}`, w.Body.String())

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/pokemons/pika", nil), bearer(t, false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pokemons/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler_Import(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	router := setupRouter(repo)

	t.Run("admin imports", func(t *testing.T) {
		w := doRequest(router, multipartRequest(t, "pokemon.csv", sampleCSV), bearer(t, true))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"imported":3`)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		w := doRequest(router, multipartRequest(t, "pokemon.csv", sampleCSV), bearer(t, false))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		w := doRequest(router, multipartRequest(t, "", ""), bearer(t, true))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No file uploaded")
	})

	t.Run("wrong extension", func(t *testing.T) {
		w := doRequest(router, multipartRequest(t, "pokemon.xlsx", sampleCSV), bearer(t, true))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Only CSV files are allowed")
	})
}


func imageRequest(t *testing.T, id, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pokemons/"+id+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler_UploadImage(t *testing.T) {
	url := "https://cdn.test/pokemon/25.gif"
	repo := new(MockRepository)
	images := new(MockImageStore)
	repo.On("GetByID", mock.Anything, 25).Return(&Pokemon{ID: 25, Name: "Pikachu", Type1: "Electric"}, nil)
	repo.On("UpdateImage", mock.Anything, 25, url).Return(nil)
	images.On("Upload", mock.Anything, "pokemon/25.gif", int64(6), "image/gif").
		Return(&storage.UploadResult{URL: url}, nil)

	router := gin.New()
	NewHandler(NewService(repo, nil, 0).WithImageStore(images)).
		RegisterRoutes(router.Group("/api"), jwtkeys.NewStaticProvider(testSecret))

	t.Run("admin uploads", func(t *testing.T) {
		w := doRequest(router, imageRequest(t, "25", "pika.gif"), bearer(t, true))
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, url, body["image"])
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		w := doRequest(router, imageRequest(t, "25", "pika.gif"), bearer(t, false))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doRequest(router, imageRequest(t, "abc", "pika.gif"), bearer(t, true))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid pokemon id")
	})

	t.Run("storage disabled", func(t *testing.T) {
		w := doRequest(setupRouter(new(MockRepository)), imageRequest(t, "25", "pika.gif"), bearer(t, true))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
