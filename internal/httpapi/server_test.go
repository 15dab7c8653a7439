package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/contentcache/cache"
	"github.com/IvanBrykalov/contentcache/internal/auth"
	"github.com/IvanBrykalov/contentcache/internal/content"
	"github.com/IvanBrykalov/contentcache/internal/site"
	"github.com/IvanBrykalov/contentcache/internal/testutil"
	"github.com/IvanBrykalov/contentcache/keys"
)

type fixture struct {
	router *gin.Engine
	loader *site.Loader
	issuer *auth.Issuer
	token  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := testutil.NewStore(t)
	require.NoError(t, store.SavePost(ctx, &content.Post{Slug: "hello", Title: "Hello", Body: "# Intro\ntext", Tags: []string{"go"}}))
	require.NoError(t, store.SaveProject(ctx, &content.Project{Slug: "cache", Name: "Cache"}))
	require.NoError(t, store.SaveModule(ctx, &content.Module{Slug: "go", Title: "Go",
		Lessons: []content.Lesson{{Slug: "a", Title: "A"}}}))
	require.NoError(t, store.SaveModule(ctx, &content.Module{Slug: "bad",
		Lessons: []content.Lesson{{Slug: "a"}}}))

	reg := prometheus.NewRegistry()
	caches, err := site.NewCaches(site.DefaultConfig(), site.Deps{Registerer: reg})
	require.NoError(t, err)
	assets := fstest.MapFS{"app.css": {Data: []byte("body{}")}}
	loader := site.NewLoader(store, caches, assets, nil)

	iss := &auth.Issuer{Secret: []byte("s3cret"), Issuer: "contentd", Audience: "admin"}
	token, err := iss.Generate("tester")
	require.NoError(t, err)

	srv := NewServer(loader, Options{Issuer: iss, Gatherer: reg})
	return fixture{router: srv.Router(), loader: loader, issuer: iss, token: token}
}

func (f fixture) do(method, target, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetPost(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/posts/hello?locale=de", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p content.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, "Hello", p.Title)

	w = f.do(http.MethodGet, "/api/posts/hello?locale=de", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, uint64(1), f.loader.Caches().Blog.Stats().Hits)

	w = f.do(http.MethodGet, "/api/posts/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListsAndOutline(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []content.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)

	w = f.do(http.MethodGet, "/api/posts?tag=Go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"slug":"hello"`)

	w = f.do(http.MethodGet, "/api/posts?tag=go&tag=rust", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = f.do(http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"name":"Cache"`)

	w = f.do(http.MethodGet, "/api/projects/cache", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/posts/hello/outline", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var o content.Outline
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	require.Len(t, o.Headings, 1)
	require.Equal(t, "intro", o.Headings[0].Anchor)
}

func TestGetModule(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/modules/go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/modules/bad", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "title is required")
}

func TestStaticAsset(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/static/app.css", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/css")

	w = f.do(http.MethodGet, "/static/missing.js", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/api/posts/hello", "", nil)

	w := f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `contentcache_misses_total{cache="blog"} 1`)
}

func TestAdmin_RequiresToken(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/admin/cache", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/admin/cache", "garbage", nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/admin/cache", f.token, nil).Code)

	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    f.issuer.Issuer,
			Audience:  jwt.ClaimStrings{f.issuer.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(f.issuer.Secret)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/admin/cache", viewer, nil).Code)
}

func TestAdmin_StatsClearCleanup(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/api/posts/hello", "", nil)

	w := f.do(http.MethodGet, "/admin/cache", f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Caches []cache.Stats `json:"caches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Caches, 6)
	require.Equal(t, "blog", body.Caches[0].Name)
	require.Equal(t, 1, body.Caches[0].Size)

	w = f.do(http.MethodPost, "/admin/cache/cleanup", f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"blog":0`)

	w = f.do(http.MethodPost, "/admin/cache/clear", f.token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, 0, f.loader.Caches().Blog.Len())
	require.Equal(t, uint64(1), f.loader.Caches().Blog.Stats().Misses)
}

func TestAdmin_DeleteKey(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/static/app.css", "", nil)

	key := keys.Static.Key("asset", "app.css")
	w := f.do(http.MethodDelete, "/admin/cache/static/"+key, f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"deleted":true}`, w.Body.String())

	w = f.do(http.MethodDelete, "/admin/cache/static/"+key, f.token, nil)
	require.JSONEq(t, `{"deleted":false}`, w.Body.String())

	w = f.do(http.MethodDelete, "/admin/cache/nope/x", f.token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_SavePostInvalidates(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/posts/hello", "", nil)
	require.Contains(t, w.Body.String(), `"title":"Hello"`)

	w = f.do(http.MethodPut, "/admin/posts/hello", f.token, []byte(`{"title":"Hello again","body":"## New"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/posts/hello", "", nil)
	require.Contains(t, w.Body.String(), `"title":"Hello again"`)

	w = f.do(http.MethodPut, "/admin/posts/hello", f.token, []byte(`{}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
