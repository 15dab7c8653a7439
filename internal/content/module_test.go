package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeModule_OverlayOnly(t *testing.T) {
	base := Module{Slug: "m", Locale: "en", Title: "Title", Description: "Desc", Order: 3}
	got := MergeModule(base, Module{Slug: "m", Locale: "it", Description: "   "})

	require.Equal(t, "it", got.Locale)
	require.Equal(t, "Title", got.Title)
	require.Equal(t, "Desc", got.Description) // blank overlay does not win
	require.Equal(t, 3, got.Order)
}

func TestMergeModule_DoesNotAliasBase(t *testing.T) {
	base := Module{Slug: "m", Title: "T", Lessons: []Lesson{{Slug: "a", Title: "A"}}}
	_ = MergeModule(base, Module{Locale: "pl", Lessons: []Lesson{{Slug: "a", Title: "Ą"}}})
	require.Equal(t, "A", base.Lessons[0].Title)
}

func TestValidateModule(t *testing.T) {
	require.NoError(t, ValidateModule(Module{Slug: "ok", Title: "OK", Lessons: []Lesson{{Slug: "a"}}}))

	err := ValidateModule(Module{Lessons: []Lesson{{Slug: ""}, {Slug: "b", Order: -1}}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{
		"slug is required",
		"title is required",
		"lesson 0: slug is required",
		`lesson "b": negative order`,
	}, verr.Problems)
	require.Contains(t, err.Error(), "invalid")
}
