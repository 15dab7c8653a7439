// Package keys builds canonical cache keys for content lookups.
//
// A key is "namespace:kind:part:...", optionally ending in a locale
// segment. Segments are escaped so that different part lists can never
// produce the same key, and equal requests always produce equal keys.
package keys

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Namespace is the top-level key prefix of one content domain.
type Namespace string

const (
	Blog     Namespace = "blog"
	Projects Namespace = "projects"
	Modules  Namespace = "modules"
	API      Namespace = "api"
	Static   Namespace = "static"
	Markup   Namespace = "markup"
)

const sep = ":"

var escaper = strings.NewReplacer("%", "%25", sep, "%3A")

// Key returns ns:kind:parts...
func (ns Namespace) Key(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(escaper.Replace(string(ns)))
	b.WriteString(sep)
	b.WriteString(escaper.Replace(kind))
	for _, p := range parts {
		b.WriteString(sep)
		b.WriteString(escaper.Replace(p))
	}
	return b.String()
}

// Localized returns ns:kind:parts...:locale. The locale is normalized so
// "en_US" and "en-us" share a key.
func (ns Namespace) Localized(kind, locale string, parts ...string) string {
	return ns.Key(kind, append(parts[:len(parts):len(parts)], NormalizeLocale(locale))...)
}

// NormalizeLocale lower-cases a locale tag and uses '-' as its separator.
func NormalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

// Digest condenses an arbitrary parameter list (filters, query strings)
// into a fixed-width segment. Parts are length-prefixed before hashing, so
// ("ab", "c") and ("a", "bc") differ.
func Digest(parts ...string) string {
	h := murmur3.New128()
	var lenBuf [binary.MaxVarintLen64]byte
	for _, p := range parts {
		n := binary.PutUvarint(lenBuf[:], uint64(len(p)))
		_, _ = h.Write(lenBuf[:n])
		_, _ = h.Write([]byte(p))
	}
	h1, h2 := h.Sum128()
	return fmt.Sprintf("%016x%016x", h1, h2)
}
