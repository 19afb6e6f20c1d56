package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/pokedex/internal/auth"
	"github.com/richxcame/pokedex/internal/favorites"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/common"
	"github.com/richxcame/pokedex/pkg/jwtkeys"
	"github.com/richxcame/pokedex/pkg/middleware"
	"github.com/richxcame/pokedex/pkg/ratelimit"
)

// routerDeps carries everything setupRouter mounts
type routerDeps struct {
	serviceName    string
	version        string
	production     bool
	allowedOrigins []string
	requestTimeout time.Duration
	extra          []gin.HandlerFunc

	jwtProvider jwtkeys.KeyProvider
	limiter     *ratelimit.Limiter
	readiness   map[string]func() error

	auth      *auth.Handler
	pokemons  *pokemons.Handler
	favorites *favorites.Handler
}

func setupRouter(d routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(d.extra...)
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders(d.production))
	router.Use(middleware.Tracing(d.serviceName))
	router.Use(middleware.Metrics(d.serviceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheck(d.serviceName, d.version))
	router.GET("/health/live", common.HealthCheck(d.serviceName, d.version))
	router.GET("/health/ready", common.HealthCheckWithDeps(d.serviceName, d.version, d.readiness))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		common.ErrorResponse(c, http.StatusNotFound, "route not found")
	})

	api := router.Group("/api")
	if d.requestTimeout > 0 {
		api.Use(timeout.New(
			timeout.WithTimeout(d.requestTimeout),
			timeout.WithResponse(func(c *gin.Context) {
				common.ErrorResponse(c, http.StatusServiceUnavailable, "request timed out")
			}),
		))
	}

	d.auth.RegisterRoutes(api, d.jwtProvider, d.limiter)
	d.pokemons.RegisterRoutes(api, d.jwtProvider)
	d.favorites.RegisterRoutes(api, d.jwtProvider)

	return router
}
