// Package content is the source of truth the caches sit in front of:
// posts, projects and learning modules stored per locale, with fallback
// to DefaultLocale.
package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when neither the requested nor the default
// locale has the item.
var ErrNotFound = errors.New("content: not found")

// Store reads and writes content through gorm.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) a SQLite database at dsn and migrates it.
// glebarez/sqlite is pure Go, so no CGO is required.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", dsn, err)
	}
	return NewStore(db)
}

// NewStore wraps an existing connection and runs migrations.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Post{}, &Project{}, &Module{}, &Lesson{}); err != nil {
		return nil, fmt.Errorf("content: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Post returns the published post in locale, falling back to DefaultLocale.
func (s *Store) Post(ctx context.Context, slug, locale string) (Post, error) {
	var p Post
	err := s.withFallback(locale, func(loc string) error {
		return s.db.WithContext(ctx).
			Where("slug = ? AND locale = ? AND draft = ?", slug, loc, false).
			Take(&p).Error
	})
	return p, err
}

// Posts lists published posts for locale, newest first. A post missing in
// locale is represented by its default-locale version.
func (s *Store) Posts(ctx context.Context, locale string) ([]Post, error) {
	var rows []Post
	err := s.db.WithContext(ctx).
		Where("locale IN ? AND draft = ?", locales(locale), false).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("content: list posts: %w", err)
	}
	out := preferLocale(rows, locale, func(p Post) (string, string) { return p.Slug, p.Locale })
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// SavePost inserts or updates the post identified by (slug, locale).
// A post keeps the PublishedAt it was first stored with; a non-draft post
// without one is dated now.
func (s *Store) SavePost(ctx context.Context, p *Post) error {
	if p.Locale == "" {
		p.Locale = DefaultLocale
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Post
		err := tx.Select("published_at").
			Where("slug = ? AND locale = ?", p.Slug, p.Locale).
			Take(&existing).Error
		switch {
		case err == nil && !existing.PublishedAt.IsZero():
			p.PublishedAt = existing.PublishedAt
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if p.PublishedAt.IsZero() && !p.Draft {
			p.PublishedAt = time.Now().UTC().Truncate(time.Second)
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}, {Name: "locale"}},
			UpdateAll: true,
		}).Create(p).Error
	})
	if err != nil {
		return fmt.Errorf("content: save post %q/%s: %w", p.Slug, p.Locale, err)
	}
	return nil
}

// Project returns one project in locale, falling back to DefaultLocale.
func (s *Store) Project(ctx context.Context, slug, locale string) (Project, error) {
	var p Project
	err := s.withFallback(locale, func(loc string) error {
		return s.db.WithContext(ctx).
			Where("slug = ? AND locale = ?", slug, loc).
			Take(&p).Error
	})
	return p, err
}

// Projects lists projects for locale by display order.
func (s *Store) Projects(ctx context.Context, locale string) ([]Project, error) {
	var rows []Project
	err := s.db.WithContext(ctx).
		Where("locale IN ?", locales(locale)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("content: list projects: %w", err)
	}
	out := preferLocale(rows, locale, func(p Project) (string, string) { return p.Slug, p.Locale })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// SaveProject inserts or updates the project identified by (slug, locale).
func (s *Store) SaveProject(ctx context.Context, p *Project) error {
	if p.Locale == "" {
		p.Locale = DefaultLocale
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}, {Name: "locale"}},
		UpdateAll: true,
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("content: save project %q/%s: %w", p.Slug, p.Locale, err)
	}
	return nil
}

// Module loads the default-locale module, overlays the localized row if
// there is one, and validates the result.
func (s *Store) Module(ctx context.Context, slug, locale string) (Module, error) {
	base, baseErr := s.moduleRow(ctx, slug, DefaultLocale)
	if baseErr != nil && !errors.Is(baseErr, ErrNotFound) {
		return Module{}, baseErr
	}

	m := base
	if locale != "" && locale != DefaultLocale {
		overlay, err := s.moduleRow(ctx, slug, locale)
		switch {
		case err == nil && baseErr == nil:
			m = MergeModule(base, overlay)
		case err == nil:
			m = overlay
		case !errors.Is(err, ErrNotFound):
			return Module{}, err
		}
	}
	if m.Slug == "" {
		return Module{}, fmt.Errorf("module %q: %w", slug, ErrNotFound)
	}
	if err := ValidateModule(m); err != nil {
		return Module{}, err
	}
	return m, nil
}

// SaveModule replaces the module row (and its lessons) for (slug, locale).
func (s *Store) SaveModule(ctx context.Context, m *Module) error {
	if m.Locale == "" {
		m.Locale = DefaultLocale
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Module
		err := tx.Where("slug = ? AND locale = ?", m.Slug, m.Locale).Take(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("module_id = ?", existing.ID).Delete(&Lesson{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		m.ID = 0
		for i := range m.Lessons {
			m.Lessons[i].ID = 0
			m.Lessons[i].ModuleID = 0
		}
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("content: save module %q/%s: %w", m.Slug, m.Locale, err)
		}
		return nil
	})
}

func (s *Store) moduleRow(ctx context.Context, slug, locale string) (Module, error) {
	var m Module
	err := s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Where("slug = ? AND locale = ?", slug, locale).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Module{}, fmt.Errorf("module %q/%s: %w", slug, locale, ErrNotFound)
	}
	return m, err
}

// withFallback runs find for locale and, if nothing is found, for DefaultLocale.
func (s *Store) withFallback(locale string, find func(loc string) error) error {
	var err error
	for _, loc := range locales(locale) {
		err = find(loc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return ErrNotFound
}

// locales returns the lookup chain for locale: itself, then DefaultLocale.
func locales(locale string) []string {
	if locale == "" || locale == DefaultLocale {
		return []string{DefaultLocale}
	}
	return []string{locale, DefaultLocale}
}

// preferLocale keeps one row per slug, preferring locale over DefaultLocale.
func preferLocale[T any](rows []T, locale string, id func(T) (slug, loc string)) []T {
	idx := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		slug, loc := id(r)
		i, seen := idx[slug]
		if !seen {
			idx[slug] = len(out)
			out = append(out, r)
			continue
		}
		if loc == locale {
			out[i] = r
		}
	}
	return out
}
