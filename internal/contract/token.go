package contract

import (
	"context"
	"math/big"

	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// Token is a typed handle to an ERC-20 contract.
type Token struct {
	bound
}

func NewToken(address common.Address, signer wallet.Signer, from common.Address) *Token {
	return &Token{bound{address: address, abi: TokenABI, signer: signer, from: from}}
}

func (t *Token) Address() common.Address { return t.address }

// BalanceOf returns holder's balance in the token's base units.
func (t *Token) BalanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	return t.callUint(ctx, "balanceOf", holder)
}
