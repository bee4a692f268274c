package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"-61,20", "-61.20"},
		{"0,00", "0.00"},
		{"-2.314,88", "-2314.88"},
		{"91,24", "91.24"},
		{"1.000.000,00", "1000000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12,34,56", "R$ 10,00", "--1,00"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Aplicação   automática ", "APLICACAO AUTOMATICA"},
		{"resgate cdb\tdi", "RESGATE CDB DI"},
		{"PIX TRANSF  JOÃO", "PIX TRANSF JOAO"},
		{"", ""},
		{"ÁÉÍÓÚÂÊÔÃÕÇàèìòùü", "AEIOUAEOAOCAEIOUU"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in))
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	samples := []string{
		"  Aplicação   automática ",
		"SALDO DO DIA",
		"pix transf João 05/03",
		"",
	}
	for _, s := range samples {
		once := NormalizeText(s)
		assert.Equal(t, once, NormalizeText(once))
	}
}
