// Package transform holds the pure normalization helpers used by the BCE/KBO import:
// NACE code lookup, Belgian date parsing, slugs, address lines and display names.
package transform

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugNameFallback   = "boucherie"
	slugPostalFallback = "na"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// StripAccents removes combining marks after canonical decomposition ("Étoile" → "Etoile").
func StripAccents(s string) string {
	t := xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := xtransform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify lower-cases, strips accents and collapses every non-alphanumeric run to a
// single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	s = strings.ToLower(StripAccents(s))
	s = nonSlugRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Digits keeps only ASCII digits.
func Digits(s string) string {
	return NormalizeNaceCode(s)
}

// BuildCommerceSlug derives the public slug of a commerce. The establishment number
// suffix keeps slugs unique even when name and postal code collide.
func BuildCommerceSlug(name, postalCode, establishmentNumber string) string {
	base := Slugify(name)
	if base == "" {
		base = slugNameFallback
	}
	postal := Slugify(postalCode)
	if postal == "" {
		postal = slugPostalFallback
	}
	return base + "-" + postal + "-" + Digits(establishmentNumber)
}
