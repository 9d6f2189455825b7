package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLKPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+94771234567", "+94771234567", true},
		{"94771234567", "+94771234567", true},
		{"  94771234567  ", "+94771234567", true},
		{"0771234567", "", false},
		{"+9477123456", "", false},   // too short
		{"+947712345678", "", false}, // too long
		{"+14155550000", "", false},
		{"94abcdefghi", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, err := NormalizeLKPhone(tc.in)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", tc.in)
		}
	}
}

func TestIsValidLKNumber(t *testing.T) {
	assert.True(t, IsValidLKNumber("+94771234567"))
	assert.True(t, IsValidLKNumber("94771234567"))
	assert.False(t, IsValidLKNumber("0771234567"))
}
