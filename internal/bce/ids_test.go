package bce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntityNumber(t *testing.T) {
	n, ok := ParseEntityNumber("  2.000.000.111 ")
	assert.True(t, ok)
	assert.Equal(t, EntityNumber("2.000.000.111"), n)

	_, ok = ParseEntityNumber("   ")
	assert.False(t, ok)
}

func TestEntityNumber_Kind(t *testing.T) {
	tests := []struct {
		number string
		kind   EntityKind
	}{
		{"2.000.000.111", KindEstablishment},
		{"2.123.456.789", KindEstablishment},
		{"0123.456.789", KindEnterprise},
		{"1000.000.001", KindEnterprise},
		{"2000.000.001", KindEnterprise},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, EntityNumber(tt.number).Kind(), "number: %s", tt.number)
	}
	assert.Equal(t, "establishment", KindEstablishment.String())
	assert.Equal(t, "enterprise", KindEnterprise.String())
	assert.Equal(t, "unknown", EntityKind(0).String())
}

func TestEntityNumber_Digits(t *testing.T) {
	assert.Equal(t, "2000000111", EntityNumber("2.000.000.111").Digits())
	assert.Equal(t, "0123456789", EntityNumber("0123.456.789").Digits())
}
