package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"continental with thousands", "1.234,56 €", "1234.56", true},
		{"negative continental", "-24,15 €", "-24.15", true},
		{"plain decimal", "100.50", "100.5", true},
		{"plain integer", "42", "42", true},
		{"comma only decimal", "0,99", "0.99", true},
		{"dollar sign", "$15.00", "15", true},
		{"pound with spaces", " £ 7,25 ", "7.25", true},
		{"millions", "1.234.567,89", "1234567.89", true},
		{"empty", "", "", false},
		{"only currency", "€", "", false},
		{"garbage", "N/A", "", false},
		{"double sign", "--5,00", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestParseAmount_EmptyIsNotZero(t *testing.T) {
	// An unparseable amount must be reported as missing, not as 0.00.
	_, ok := ParseAmount("")
	assert.False(t, ok)
	_, ok = ParseAmount("   ")
	assert.False(t, ok)
}
