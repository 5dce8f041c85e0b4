// Package api routes requests to the backend HTTP API depending on the connected network.
package api

import (
	"math/big"
	"strings"
)

// Endpoints holds the two backend base URLs and the network identifier of the local chain.
type Endpoints struct {
	LocalChainID  int64
	LocalURL      string
	ProductionURL string
}

// DefaultEndpoints matches a Ganache development chain against the hosted backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		LocalChainID:  5777,
		LocalURL:      "http://localhost:5000/block-cities/us-central1/api",
		ProductionURL: "https://us-central1-block-cities.cloudfunctions.net/api",
	}
}

// RootURL returns the local endpoint when networkID is the local chain, otherwise production.
// A nil networkID (not connected) routes to production.
func (e Endpoints) RootURL(networkID *big.Int) string {
	if networkID != nil && networkID.IsInt64() && networkID.Int64() == e.LocalChainID {
		return strings.TrimRight(e.LocalURL, "/")
	}
	return strings.TrimRight(e.ProductionURL, "/")
}

// URL joins path onto the root for networkID.
func (e Endpoints) URL(networkID *big.Int, path string) string {
	return e.RootURL(networkID) + "/" + strings.TrimLeft(path, "/")
}
