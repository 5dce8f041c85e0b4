package api

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootURL(t *testing.T) {
	e := DefaultEndpoints()
	tests := []struct {
		name string
		id   *big.Int
		want string
	}{
		{"ganache", big.NewInt(5777), e.LocalURL},
		{"mainnet", big.NewInt(1), e.ProductionURL},
		{"dev chain id", big.NewInt(1337), e.ProductionURL},
		{"not connected", nil, e.ProductionURL},
		{"huge", new(big.Int).Lsh(big.NewInt(1), 70), e.ProductionURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.RootURL(tt.id))
		})
	}
}

func TestRootURL_CustomLocalChain(t *testing.T) {
	e := Endpoints{LocalChainID: 31337, LocalURL: "http://127.0.0.1:9000/", ProductionURL: "https://api.example.org"}
	assert.Equal(t, "http://127.0.0.1:9000", e.RootURL(big.NewInt(31337)))
	assert.Equal(t, "https://api.example.org/members", e.URL(big.NewInt(1), "/members"))
}
