// Package httpapi exposes cached content and cache diagnostics over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/internal/auth"
	"github.com/IvanBrykalov/contentcache/internal/content"
	"github.com/IvanBrykalov/contentcache/internal/site"
	"github.com/IvanBrykalov/contentcache/registry"
)

// Server holds the handlers' collaborators.
type Server struct {
	loader   *site.Loader
	registry *registry.Registry
	issuer   *auth.Issuer
	gatherer prometheus.Gatherer
	log      *zap.Logger
}

// Options configures NewServer. Issuer nil disables the admin routes;
// Gatherer nil disables /metrics.
type Options struct {
	Issuer   *auth.Issuer
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewServer returns a Server reading through loader.
func NewServer(loader *site.Loader, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Server{
		loader:   loader,
		registry: loader.Caches().Registry,
		issuer:   opt.Issuer,
		gatherer: opt.Gatherer,
		log:      opt.Logger,
	}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.accessLog(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/posts", s.listPosts)
		api.GET("/posts/:slug", s.getPost)
		api.GET("/posts/:slug/outline", s.getOutline)
		api.GET("/projects", s.listProjects)
		api.GET("/projects/:slug", s.getProject)
		api.GET("/modules/:slug", s.getModule)
	}
	r.GET("/static/*path", s.getAsset)

	if s.issuer != nil {
		admin := r.Group("/admin")
		admin.Use(s.requireAdmin())
		{
			admin.GET("/cache", s.cacheStats)
			admin.POST("/cache/clear", s.clearCaches)
			admin.POST("/cache/cleanup", s.cleanupCaches)
			admin.DELETE("/cache/:name/*key", s.deleteKey)
			admin.PUT("/posts/:slug", s.savePost)
		}
	}
	return r
}

// requireAdmin checks the Bearer token on every admin request.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is required"})
			return
		}
		claims, err := s.issuer.Validate(token)
		if err != nil {
			s.log.Debug("admin token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("subject", claims.Subject)
		c.Next()
	}
}

// accessLog logs one line per request.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// fail maps content errors to status codes and logs anything unexpected.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *content.ValidationError
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid content", "problems": verr.Problems})
	case c.Request.Context().Err() != nil:
		// client went away
		c.Status(499)
	default:
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
