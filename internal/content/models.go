package content

import (
	"strings"
	"time"
)

// DefaultLocale is the locale every lookup falls back to.
const DefaultLocale = "en"

// Post is a blog post in one locale.
type Post struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"not null;uniqueIndex:idx_posts_slug_locale"`
	Locale      string    `json:"locale" gorm:"not null;uniqueIndex:idx_posts_slug_locale"`
	Title       string    `json:"title" gorm:"not null"`
	Summary     string    `json:"summary"`
	Body        string    `json:"body"`
	Tags        []string  `json:"tags" gorm:"serializer:json"`
	Draft       bool      `json:"draft" gorm:"index"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Post.
func (Post) TableName() string { return "posts" }

// HasTags reports whether p carries every tag in tags, ignoring case.
func (p Post) HasTags(tags ...string) bool {
	for _, want := range tags {
		found := false
		for _, t := range p.Tags {
			if strings.EqualFold(t, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Project is a showcase entry in one locale.
type Project struct {
	ID          uint     `json:"-" gorm:"primaryKey"`
	Slug        string   `json:"slug" gorm:"not null;uniqueIndex:idx_projects_slug_locale"`
	Locale      string   `json:"locale" gorm:"not null;uniqueIndex:idx_projects_slug_locale"`
	Name        string   `json:"name" gorm:"not null"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags" gorm:"serializer:json"`
	Featured    bool     `json:"featured"`
	Order       int      `json:"order" gorm:"column:sort_order"`
}

func (Project) TableName() string { return "projects" }

// Module is a learning-path module. A localized row only needs the fields
// it translates; the rest comes from the default-locale row (see MergeModule).
type Module struct {
	ID          uint     `json:"-" gorm:"primaryKey"`
	Slug        string   `json:"slug" gorm:"not null;uniqueIndex:idx_modules_slug_locale"`
	Locale      string   `json:"locale" gorm:"not null;uniqueIndex:idx_modules_slug_locale"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Level       string   `json:"level"`
	Order       int      `json:"order" gorm:"column:sort_order"`
	Lessons     []Lesson `json:"lessons" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
}

func (Module) TableName() string { return "modules" }

// Lesson belongs to one Module row.
type Lesson struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	ModuleID uint   `json:"-" gorm:"index"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Order    int    `json:"order" gorm:"column:sort_order"`
	Minutes  int    `json:"minutes"`
}

func (Lesson) TableName() string { return "lessons" }
