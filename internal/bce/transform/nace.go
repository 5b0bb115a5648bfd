package transform

import (
	"sort"
	"strings"
)

// Category is the directory category a commerce is listed under.
type Category string

// CategoryBoucherie is the butcher-shop category.
const CategoryBoucherie Category = "boucherie"

// NaceCategories maps exact NACE-BEL codes (digits only) to a directory category.
// Only codes listed here may appear in an import allow-list.
var NaceCategories = map[string]Category{
	"4722":  CategoryBoucherie, // Retail sale of meat and meat products in specialised stores
	"47221": CategoryBoucherie, // Butchers, delicatessen butchers
	"47222": CategoryBoucherie, // Retail sale of game and poultry
}

// NormalizeNaceCode keeps only the digits of a NACE code ("47.221" → "47221").
func NormalizeNaceCode(code string) string {
	code = strings.TrimSpace(code)
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NaceCategory returns the category for an exact, normalized NACE code.
func NaceCategory(code string) (Category, bool) {
	c, ok := NaceCategories[code]
	return c, ok
}

// SupportedNaceCodes returns the codes of NaceCategories in ascending order.
func SupportedNaceCodes() []string {
	codes := make([]string, 0, len(NaceCategories))
	for code := range NaceCategories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
