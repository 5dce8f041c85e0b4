// Package contract binds the organization (Moloch v1) and approved-token (ERC-20) contracts
// for read-only calls through a wallet signer.
package contract

import (
	_ "embed"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	//go:embed abi/moloch.json
	molochJSON string
	//go:embed abi/erc20.json
	erc20JSON string
)

var (
	// OrganizationABI is the fixed interface of every selectable organization.
	OrganizationABI = mustParse(molochJSON)
	// TokenABI is the standard fungible-token interface.
	TokenABI = mustParse(erc20JSON)
)

func mustParse(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("contract: bad embedded abi: " + err.Error())
	}
	return parsed
}
