package content

import (
	"fmt"
	"sort"
	"strings"
)

// MergeModule overlays a localized module row on the default-locale base.
// Non-empty localized text fields win; structural fields (order, level when
// the overlay leaves it empty, lesson durations) come from base. Lessons are
// matched by slug: base order is kept, and lessons that only exist in the
// overlay are appended by their own order.
func MergeModule(base, overlay Module) Module {
	out := base
	out.ID = overlay.ID
	out.Locale = overlay.Locale
	out.Title = pick(overlay.Title, base.Title)
	out.Description = pick(overlay.Description, base.Description)
	out.Level = pick(overlay.Level, base.Level)

	byslug := make(map[string]Lesson, len(overlay.Lessons))
	for _, l := range overlay.Lessons {
		byslug[l.Slug] = l
	}

	baseLessons := sortedLessons(base.Lessons)
	out.Lessons = make([]Lesson, 0, len(baseLessons)+len(overlay.Lessons))
	used := make(map[string]bool, len(byslug))
	for _, l := range baseLessons {
		if o, ok := byslug[l.Slug]; ok {
			l.Title = pick(o.Title, l.Title)
			l.Summary = pick(o.Summary, l.Summary)
			used[l.Slug] = true
		}
		out.Lessons = append(out.Lessons, l)
	}
	for _, l := range sortedLessons(overlay.Lessons) {
		if !used[l.Slug] {
			out.Lessons = append(out.Lessons, l)
		}
	}
	return out
}

func pick(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	return fallback
}

func sortedLessons(ls []Lesson) []Lesson {
	out := append([]Lesson(nil), ls...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ValidationError reports every problem found in a module.
type ValidationError struct {
	Slug     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("content: module %q invalid: %s", e.Slug, strings.Join(e.Problems, "; "))
}

// ValidateModule checks a (merged) module and returns a *ValidationError
// listing all problems, or nil.
func ValidateModule(m Module) error {
	var problems []string
	if strings.TrimSpace(m.Slug) == "" {
		problems = append(problems, "slug is required")
	}
	if strings.TrimSpace(m.Title) == "" {
		problems = append(problems, "title is required")
	}
	seen := make(map[string]bool, len(m.Lessons))
	for i, l := range m.Lessons {
		switch {
		case strings.TrimSpace(l.Slug) == "":
			problems = append(problems, fmt.Sprintf("lesson %d: slug is required", i))
		case seen[l.Slug]:
			problems = append(problems, fmt.Sprintf("lesson %q: duplicate slug", l.Slug))
		}
		seen[l.Slug] = true
		if l.Order < 0 {
			problems = append(problems, fmt.Sprintf("lesson %q: negative order", l.Slug))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Slug: m.Slug, Problems: problems}
	}
	return nil
}
