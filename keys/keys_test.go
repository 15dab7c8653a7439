package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamespace_Key(t *testing.T) {
	require.Equal(t, "blog:post:hello-world", Blog.Key("post", "hello-world"))
	require.Equal(t, "api:posts", API.Key("posts"))
	require.Equal(t, "modules:module:go-basics:en", Modules.Localized("module", "en", "go-basics"))
}

// The same request always yields the same key; other domains never collide.
func TestNamespace_Deterministic(t *testing.T) {
	require.Equal(t, Blog.Localized("post", "en", "a"), Blog.Localized("post", "en", "a"))
	require.NotEqual(t, Blog.Key("post", "a"), Projects.Key("post", "a"))
}

// Separators inside parts are escaped, so part boundaries survive.
func TestNamespace_NoCollisions(t *testing.T) {
	require.NotEqual(t, Blog.Key("post", "a:b"), Blog.Key("post", "a", "b"))
	require.NotEqual(t, Blog.Key("post", "a%3Ab"), Blog.Key("post", "a:b"))
	require.Equal(t, "blog:post:a%3Ab", Blog.Key("post", "a:b"))
}

func TestNamespace_LocalizedNormalizes(t *testing.T) {
	require.Equal(t, Blog.Localized("post", "en-us", "x"), Blog.Localized("post", " EN_us ", "x"))
	require.NotEqual(t, Blog.Localized("post", "en", "x"), Blog.Localized("post", "fr", "x"))
}

// Localized must not write into the caller's backing array.
func TestNamespace_LocalizedDoesNotAlias(t *testing.T) {
	parts := make([]string, 1, 4)
	parts[0] = "x"
	_ = Blog.Localized("post", "en", parts...)
	full := parts[:2]
	require.Equal(t, "", full[1])
}

func TestDigest(t *testing.T) {
	d := Digest("tag=go", "page=2")
	require.Len(t, d, 32)
	require.Equal(t, d, Digest("tag=go", "page=2"))
	require.NotEqual(t, Digest("ab", "c"), Digest("a", "bc"))
	require.NotEqual(t, Digest(), Digest(""))
}
