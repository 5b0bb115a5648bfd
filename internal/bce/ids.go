package bce

import (
	"strings"

	"github.com/sells-group/bce-import/internal/bce/transform"
)

// EntityKind distinguishes the two identifier namespaces of the registry.
type EntityKind int

const (
	KindEnterprise EntityKind = iota + 1
	KindEstablishment
)

// String returns the registry term for the kind.
func (k EntityKind) String() string {
	switch k {
	case KindEnterprise:
		return "enterprise"
	case KindEstablishment:
		return "establishment"
	default:
		return "unknown"
	}
}

// establishmentPrefix marks establishment unit numbers ("2.xxx.xxx.xxx").
// Enterprise numbers start with 0 or 1.
const establishmentPrefix = "2."

// EntityNumber is a trimmed, non-empty registry identifier.
type EntityNumber string

// ParseEntityNumber trims raw and reports false when nothing is left.
func ParseEntityNumber(raw string) (EntityNumber, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return EntityNumber(raw), true
}

// Kind reports which namespace the number belongs to.
func (n EntityNumber) Kind() EntityKind {
	if strings.HasPrefix(string(n), establishmentPrefix) {
		return KindEstablishment
	}
	return KindEnterprise
}

// IsEstablishment is shorthand for Kind() == KindEstablishment.
func (n EntityNumber) IsEstablishment() bool {
	return n.Kind() == KindEstablishment
}

// Digits returns the number without separators ("2.000.000.111" → "2000000111").
func (n EntityNumber) Digits() string {
	return transform.Digits(string(n))
}

func (n EntityNumber) String() string {
	return string(n)
}
