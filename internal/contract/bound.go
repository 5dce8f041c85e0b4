package contract

import (
	"context"
	"fmt"
	"math/big"

	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// bound is a contract address + ABI pair reached through a signer.
type bound struct {
	address common.Address
	abi     abi.ABI
	signer  wallet.Signer
	from    common.Address
}

func (b *bound) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{
		From: b.from,
		To:   &b.address,
		Data: data,
	}
	out, err := b.signer.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	res, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return res, nil
}

func (b *bound) callUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	res, err := b.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := res[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, res[0])
	}
	return v, nil
}

func (b *bound) callAddress(ctx context.Context, method string, args ...interface{}) (common.Address, error) {
	res, err := b.call(ctx, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	v, ok := res[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected output type %T", method, res[0])
	}
	return v, nil
}
