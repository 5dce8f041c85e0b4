package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var networkNames = map[uint64]string{
	1:        "mainnet",
	3:        "ropsten",
	4:        "rinkeby",
	5:        "goerli",
	42:       "kovan",
	1337:     "dev",
	5777:     "ganache",
	11155111: "sepolia",
}

// Network identifies the chain the provider is attached to.
type Network struct {
	ID   *big.Int `json:"id"`
	Name string   `json:"name"`
}

// NewNetwork builds a Network, naming it when the identifier is well known.
func NewNetwork(id *big.Int) Network {
	n := Network{ID: new(big.Int).Set(id), Name: "unknown"}
	if id.IsUint64() {
		if name, ok := networkNames[id.Uint64()]; ok {
			n.Name = name
		}
	}
	return n
}

// Connection is the read-only view of the active wallet connection.
type Connection struct {
	Network Network         `json:"network"`
	Account *common.Address `json:"account,omitempty"` // nil when no account is authorized
}
