package model

import "github.com/ethereum/go-ethereum/common"

// Organization describes one pre-deployed DAO contract the user can select.
type Organization struct {
	Key     string         `json:"key"`
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
	Unit    string         `json:"unit"` // symbol of the approved token, e.g. "DAI"
}
