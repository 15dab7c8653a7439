package httpapi

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/internal/content"
)

// GET /api/posts?locale=&tag=
func (s *Server) listPosts(c *gin.Context) {
	b, err := s.loader.Posts(c.Request.Context(), c.Query("locale"), c.QueryArray("tag")...)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

// GET /api/posts/:slug?locale=
func (s *Server) getPost(c *gin.Context) {
	p, err := s.loader.Post(c.Request.Context(), c.Param("slug"), c.Query("locale"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/posts/:slug/outline?locale=
func (s *Server) getOutline(c *gin.Context) {
	o, err := s.loader.Outline(c.Request.Context(), c.Param("slug"), c.Query("locale"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GET /api/projects?locale=
func (s *Server) listProjects(c *gin.Context) {
	b, err := s.loader.Projects(c.Request.Context(), c.Query("locale"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

// GET /api/projects/:slug?locale=
func (s *Server) getProject(c *gin.Context) {
	p, err := s.loader.Project(c.Request.Context(), c.Param("slug"), c.Query("locale"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/modules/:slug?locale=
func (s *Server) getModule(c *gin.Context) {
	m, err := s.loader.Module(c.Request.Context(), c.Param("slug"), c.Query("locale"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GET /static/*path
func (s *Server) getAsset(c *gin.Context) {
	name := c.Param("path")
	b, err := s.loader.Asset(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(b)
	}
	c.Data(http.StatusOK, ctype, b)
}

// GET /admin/cache
func (s *Server) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"caches": s.registry.Stats()})
}

// POST /admin/cache/clear
func (s *Server) clearCaches(c *gin.Context) {
	s.registry.ClearAll()
	s.log.Info("caches cleared", zap.String("by", c.GetString("subject")))
	c.Status(http.StatusNoContent)
}

// POST /admin/cache/cleanup
func (s *Server) cleanupCaches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": s.registry.CleanupAll()})
}

type keyDeleter interface {
	Delete(key string) bool
}

// DELETE /admin/cache/:name/*key
func (s *Server) deleteKey(c *gin.Context) {
	m, ok := s.registry.Lookup(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown cache"})
		return
	}
	d, ok := m.(keyDeleter)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cache does not support key deletion"})
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	c.JSON(http.StatusOK, gin.H{"deleted": d.Delete(key)})
}

type savePostRequest struct {
	Locale  string   `json:"locale"`
	Title   string   `json:"title" binding:"required"`
	Summary string   `json:"summary"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
	Draft   bool     `json:"draft"`
}

// PUT /admin/posts/:slug
func (s *Server) savePost(c *gin.Context) {
	var req savePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &content.Post{
		Slug:    c.Param("slug"),
		Locale:  req.Locale,
		Title:   req.Title,
		Summary: req.Summary,
		Body:    req.Body,
		Tags:    req.Tags,
		Draft:   req.Draft,
	}
	if err := s.loader.SavePost(c.Request.Context(), p); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
