package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	tests := []struct {
		v        *big.Int
		decimals int
		maxFrac  int
		want     string
	}{
		{nil, 18, 4, "-"},
		{big.NewInt(0), 18, 4, "0"},
		{oneEther, 18, 4, "1"},
		{new(big.Int).Mul(oneEther, big.NewInt(1500)), 18, 4, "1500"},
		{new(big.Int).Div(oneEther, big.NewInt(4)), 18, 4, "0.25"},
		{big.NewInt(123456789), 18, 4, "0"},
		{big.NewInt(123456789), 6, 4, "123.4567"},
		{big.NewInt(-2500000), 6, 2, "-2.5"},
		{big.NewInt(1000), 0, 4, "1000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUnits(tt.v, tt.decimals, tt.maxFrac))
	}
}

func TestNewNetwork(t *testing.T) {
	assert.Equal(t, "ganache", NewNetwork(big.NewInt(5777)).Name)
	assert.Equal(t, "unknown", NewNetwork(big.NewInt(424242)).Name)
}
