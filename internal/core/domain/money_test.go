package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolaglobo/mmf-api/internal/core/domain"
)

func TestRoundKES(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4.109589", "4.11"},
		{"4.104", "4.1"},
		{"0.005", "0.01"}, // half rounds up
		{"0.004", "0"},
		{"1000", "1000"},
	}
	for _, tt := range tests {
		got := domain.RoundKES(decimal.RequireFromString(tt.in))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "RoundKES(%s) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestValidateAmount(t *testing.T) {
	min := decimal.NewFromInt(50)

	assert.NoError(t, domain.ValidateAmount(decimal.NewFromInt(50), min))
	assert.NoError(t, domain.ValidateAmount(decimal.NewFromInt(1000), min))

	err := domain.ValidateAmount(decimal.NewFromInt(49), min)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = domain.ValidateAmount(decimal.Zero, min)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = domain.ValidateAmount(decimal.NewFromInt(-10), min)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNormalizePhone(t *testing.T) {
	got, err := domain.NormalizePhone("0712345678")
	require.NoError(t, err)
	assert.Equal(t, "+254712345678", got)

	got, err = domain.NormalizePhone("+254712345678")
	require.NoError(t, err)
	assert.Equal(t, "+254712345678", got)

	got, err = domain.NormalizePhone("  0712345678 ")
	require.NoError(t, err)
	assert.Equal(t, "+254712345678", got)

	for _, bad := range []string{"712345678", "071234567", "07123456789", "+25571234567a", "0712-345-678", ""} {
		_, err := domain.NormalizePhone(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, "phone %q", bad)
	}
}

func TestValidPIN(t *testing.T) {
	assert.True(t, domain.ValidPIN("1234"))
	assert.True(t, domain.ValidPIN("0000"))

	assert.False(t, domain.ValidPIN("123"))
	assert.False(t, domain.ValidPIN("12345"))
	assert.False(t, domain.ValidPIN("12a4"))
	assert.False(t, domain.ValidPIN(""))
}
