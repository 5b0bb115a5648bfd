package transform

import "strings"

// BuildAddressLine joins street and house number, then appends the box.
// A box alone never produces a line.
func BuildAddressLine(street, houseNumber, box string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{street, houseNumber} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.TrimSpace(strings.Join(parts, " "))
	if line == "" {
		return ""
	}
	if box == "" {
		return line
	}
	return line + " " + box
}
