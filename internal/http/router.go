// Package httpapi mounts the issue digest API on a gin engine: global
// middleware, the public trigger and stream routes, and the admin cache
// routes.
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-issue-digest/internal/config"
	"github.com/tbourn/go-issue-digest/internal/http/handlers"
	"github.com/tbourn/go-issue-digest/internal/http/middleware"
)

// Deps are the services behind the routes.
type Deps struct {
	Artifacts handlers.ArtifactService
	Cache     handlers.CacheAdmin
	Events    handlers.Subscriber
}

const maxBodyBytes = 1 << 20

var corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID", "If-None-Match"}

// RegisterRoutes installs middleware and routes on r, with the API under
// cfg.APIBasePath. Global middleware runs in this order:
// tracing, request id, redacting access log, recovery, body limit, metrics,
// gzip, CORS, security headers. /metrics is registered before gzip and CORS
// apply.
//
// API routes additionally run AdminBypass and then the rate limiter; admin
// routes require an admin token.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key", "X-DeepL-Auth-Key"},
		}),
		middleware.Recovery(),
		limitBody(maxBodyBytes),
		middleware.Metrics(),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// SSE must reach the client unbuffered.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/events$`})))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		EnablePolicy:    true,
		PrivatePrefixes: []string{strings.TrimSuffix(cfg.APIBasePath, "/") + "/admin"},
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Artifacts, deps.Cache, deps.Events, handlers.Languages{
		Source: cfg.Generation.SourceLang,
		Target: cfg.Generation.TargetLang,
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.AdminBypass(cfg.AdminJWTSecret), rl.Handler())
	api.POST("/issues/:id/artifacts", h.GenerateArtifact)
	api.POST("/artifacts/batch", h.GenerateBatch)
	api.GET("/issues/:id/events", h.StreamEvents)

	admin := api.Group("/admin", middleware.RequireAdmin(cfg.AdminJWTSecret))
	{
		admin.GET("/cache/issues/:id", h.CacheStats)
		admin.DELETE("/cache/issues/:id", h.InvalidateIssue)
		admin.DELETE("/cache/issues/:id/kinds/:kind", h.InvalidateIssueKind)
		admin.DELETE("/cache", h.InvalidateAll)
	}
}

// corsMiddleware echoes allowed origins before gin-contrib/cors runs, so
// simple requests without a preflight still carry the header. With no
// configured origins every origin is allowed and credentials stay off.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  corsHeaders,
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	var echo gin.HandlerFunc
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
		echo = func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
		}
	} else {
		conf.AllowOrigins = origins
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[o] = true
		}
		echo = func(c *gin.Context) {
			if o := c.GetHeader("Origin"); allowed[o] {
				c.Header("Access-Control-Allow-Origin", o)
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
	}
	return []gin.HandlerFunc{echo, cors.New(conf)}
}

// limitBody caps request bodies at maxBytes; reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
