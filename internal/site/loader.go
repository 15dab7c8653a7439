package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/internal/content"
	"github.com/IvanBrykalov/contentcache/keys"
)

// Source is the uncached content backend. *content.Store implements it.
type Source interface {
	Post(ctx context.Context, slug, locale string) (content.Post, error)
	Posts(ctx context.Context, locale string) ([]content.Post, error)
	SavePost(ctx context.Context, p *content.Post) error
	Project(ctx context.Context, slug, locale string) (content.Project, error)
	Projects(ctx context.Context, locale string) ([]content.Project, error)
	Module(ctx context.Context, slug, locale string) (content.Module, error)
}

var _ Source = (*content.Store)(nil)

// Loader reads content through the caches. Every read is a GetOrSet on
// the cache owning that kind of content.
type Loader struct {
	src    Source
	caches *Caches
	assets fs.FS
	log    *zap.Logger
}

// NewLoader returns a loader over src. assets may be nil, in which case
// every Asset lookup is not found.
func NewLoader(src Source, caches *Caches, assets fs.FS, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{src: src, caches: caches, assets: assets, log: log}
}

// Caches returns the caches the loader reads through.
func (l *Loader) Caches() *Caches { return l.caches }

// Post returns one post, cached in the blog cache.
func (l *Loader) Post(ctx context.Context, slug, locale string) (content.Post, error) {
	locale = normalize(locale)
	return l.caches.Blog.GetOrSet(ctx, postKey(slug, locale), func(ctx context.Context) (content.Post, error) {
		return l.src.Post(ctx, slug, locale)
	})
}

// Posts returns the post list for locale as rendered JSON, cached in the
// api cache. With tags, only posts carrying all of them are listed; each
// distinct tag set is cached under its own digest key.
func (l *Loader) Posts(ctx context.Context, locale string, tags ...string) ([]byte, error) {
	locale = normalize(locale)
	tags = normalizeTags(tags)
	return l.caches.API.GetOrSet(ctx, postsKey(locale, tags), func(ctx context.Context) ([]byte, error) {
		posts, err := l.src.Posts(ctx, locale)
		if err != nil {
			return nil, err
		}
		if len(tags) > 0 {
			matched := make([]content.Post, 0, len(posts))
			for _, p := range posts {
				if p.HasTags(tags...) {
					matched = append(matched, p)
				}
			}
			posts = matched
		}
		return json.Marshal(posts)
	})
}

// Project returns one project, cached in the projects cache.
func (l *Loader) Project(ctx context.Context, slug, locale string) (content.Project, error) {
	locale = normalize(locale)
	key := keys.Projects.Localized("project", locale, slug)
	return l.caches.Projects.GetOrSet(ctx, key, func(ctx context.Context) (content.Project, error) {
		return l.src.Project(ctx, slug, locale)
	})
}

// Projects returns the project list for locale as rendered JSON, cached in
// the api cache.
func (l *Loader) Projects(ctx context.Context, locale string) ([]byte, error) {
	locale = normalize(locale)
	key := keys.API.Localized("projects", locale)
	return l.caches.API.GetOrSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		projects, err := l.src.Projects(ctx, locale)
		if err != nil {
			return nil, err
		}
		return json.Marshal(projects)
	})
}

// Module returns a merged and validated module, cached in the modules
// cache. Invalid modules are not cached.
func (l *Loader) Module(ctx context.Context, slug, locale string) (content.Module, error) {
	locale = normalize(locale)
	key := keys.Modules.Localized("module", locale, slug)
	return l.caches.Modules.GetOrSet(ctx, key, func(ctx context.Context) (content.Module, error) {
		return l.src.Module(ctx, slug, locale)
	})
}

// Outline returns the heading outline of a post, cached in the markup
// cache. The post itself is read through Post.
func (l *Loader) Outline(ctx context.Context, slug, locale string) (content.Outline, error) {
	locale = normalize(locale)
	return l.caches.Markup.GetOrSet(ctx, outlineKey(slug, locale), func(ctx context.Context) (content.Outline, error) {
		p, err := l.Post(ctx, slug, locale)
		if err != nil {
			return content.Outline{}, err
		}
		return content.OutlineOf(p.Body), nil
	})
}

// Asset returns the bytes of a static file, cached in the static cache.
func (l *Loader) Asset(ctx context.Context, name string) ([]byte, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if l.assets == nil || !fs.ValidPath(name) || name == "" {
		return nil, fmt.Errorf("asset %q: %w", name, content.ErrNotFound)
	}
	return l.caches.Static.GetOrSet(ctx, keys.Static.Key("asset", name), func(context.Context) ([]byte, error) {
		b, err := fs.ReadFile(l.assets, name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("asset %q: %w", name, content.ErrNotFound)
		}
		return b, err
	})
}

// SavePost writes p through to the store and drops every cached entry that
// may now be stale. Rendered lists in the api cache are always flushed,
// since any tag filter may include the post. Saving a default-locale post
// also flushes the blog and markup caches, since any locale may be serving
// it as a fallback; otherwise only that locale's keys are deleted.
func (l *Loader) SavePost(ctx context.Context, p *content.Post) error {
	p.Locale = normalize(p.Locale)
	if err := l.src.SavePost(ctx, p); err != nil {
		return err
	}

	l.caches.API.Clear()
	if p.Locale == content.DefaultLocale {
		l.caches.Blog.Clear()
		l.caches.Markup.Clear()
		l.log.Info("default-locale post saved, flushed dependent caches", zap.String("slug", p.Slug))
		return nil
	}
	l.caches.Blog.Delete(postKey(p.Slug, p.Locale))
	l.caches.Markup.Delete(outlineKey(p.Slug, p.Locale))
	l.log.Debug("post saved, invalidated keys", zap.String("slug", p.Slug), zap.String("locale", p.Locale))
	return nil
}

func normalize(locale string) string {
	if locale = keys.NormalizeLocale(locale); locale == "" {
		return content.DefaultLocale
	}
	return locale
}

func postKey(slug, locale string) string    { return keys.Blog.Localized("post", locale, slug) }
func outlineKey(slug, locale string) string { return keys.Markup.Localized("outline", locale, slug) }

// postsKey keys a post list; a tag filter adds one digest segment.
func postsKey(locale string, tags []string) string {
	if len(tags) == 0 {
		return keys.API.Localized("posts", locale)
	}
	return keys.API.Localized("posts", locale, keys.Digest(tags...))
}

// normalizeTags lower-cases, de-duplicates and sorts tags so equal filters
// share one key.
func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}
