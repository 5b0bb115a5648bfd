package transform

import (
	"strings"
	"unicode"
)

// cityParticles are lower-cased when they appear inside a hyphenated municipality name
// ("Sint-Joost-ten-Noode", "Mont-sur-Marchienne").
var cityParticles = map[string]bool{
	"sur": true, "sous": true, "lez": true, "les": true, "la": true, "le": true,
	"de": true, "du": true, "des": true, "en": true, "et": true, "aux": true,
	"ten": true, "ter": true, "te": true, "op": true, "aan": true, "bij": true,
	"van": true, "der": true, "den": true, "het": true, "in": true, "over": true,
}

// IsMissingName reports whether a denomination carries no usable text.
// Registry rows sometimes hold a lone dash as placeholder.
func IsMissingName(name string) bool {
	return strings.Trim(name, " \t-") == ""
}

// NormalizeCommerceName collapses whitespace and title-cases every word,
// capitalising each hyphen-separated segment.
func NormalizeCommerceName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		segments := strings.Split(w, "-")
		for j, seg := range segments {
			segments[j] = capitalize(seg)
		}
		words[i] = strings.Join(segments, "-")
	}
	return strings.Join(words, " ")
}

// NormalizeCityName title-cases a municipality name. Inside hyphenated names the
// linking particles stay lower case.
func NormalizeCityName(city string) string {
	words := strings.Fields(city)
	for i, w := range words {
		segments := strings.Split(w, "-")
		for j, seg := range segments {
			lower := strings.ToLower(seg)
			if j > 0 && cityParticles[lower] {
				segments[j] = lower
				continue
			}
			segments[j] = capitalize(seg)
		}
		words[i] = strings.Join(segments, "-")
	}
	return strings.Join(words, " ")
}

// ContainsExcludedName reports whether name contains any of the excluded terms,
// ignoring case, accents and punctuation.
func ContainsExcludedName(name string, excluded []string) bool {
	key := Slugify(name)
	for _, term := range excluded {
		t := Slugify(term)
		if t == "" {
			continue
		}
		if strings.Contains(key, t) {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first letter and any letter following an apostrophe
// ("L'ETOILE" → "L'Etoile"), lower-casing the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(strings.ToLower(s))
	upper := true
	for i, r := range rs {
		switch {
		case r == '\'' || r == '’':
			upper = true
		case upper && unicode.IsLetter(r):
			rs[i] = unicode.ToUpper(r)
			upper = false
		}
	}
	return string(rs)
}
