package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"DAOScope/internal/chaintest"
	"DAOScope/internal/contract"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orgAddr   = common.HexToAddress("0x7D1a4fC6Df3B16eB894004A4586A29f39Ba6d205")
	tokenAddr = common.HexToAddress("0x89d24A6b4CcB1B6fAA2625fE562bDD9a23260359")
	bankAddr  = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	member    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

func TestOrganization_Reads(t *testing.T) {
	chain := chaintest.New(1)
	chaintest.Organization{
		Address:     orgAddr,
		Token:       tokenAddr,
		GuildBank:   bankAddr,
		TotalShares: 1000,
		Shares:      map[common.Address]int64{member: 42},
	}.Install(chain)

	ctx := context.Background()
	org := contract.NewOrganization(orgAddr, chain.Signer(), member)

	shares, err := org.TotalShares(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), shares.Int64())

	bank, err := org.GuildBank(ctx)
	require.NoError(t, err)
	assert.Equal(t, bankAddr, bank)

	m, err := org.Members(ctx, member)
	require.NoError(t, err)
	assert.True(t, m.Exists)
	assert.Equal(t, int64(42), m.Shares.Int64())

	calls := chain.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, member, calls[0].From)
	assert.Equal(t, "members", calls[2].Method)
}

func TestOrganization_NonMember(t *testing.T) {
	chain := chaintest.New(1)
	chaintest.Organization{Address: orgAddr, Token: tokenAddr, GuildBank: bankAddr}.Install(chain)

	m, err := contract.NewOrganization(orgAddr, chain, common.Address{}).Members(context.Background(), member)
	require.NoError(t, err)
	assert.False(t, m.Exists)
	assert.Zero(t, m.Shares.Sign())
}

func TestToken_BalanceOf(t *testing.T) {
	chain := chaintest.New(1)
	chain.DeployToken(tokenAddr)
	chain.SetBalance(tokenAddr, bankAddr, big.NewInt(500))

	tok := contract.NewToken(tokenAddr, chain, common.Address{})
	bal, err := tok.BalanceOf(context.Background(), bankAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal.Int64())

	bal, err = tok.BalanceOf(context.Background(), member)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())
}

func TestCall_Errors(t *testing.T) {
	chain := chaintest.New(1)
	boom := errors.New("node unreachable")
	chain.Deploy(orgAddr, contract.OrganizationABI).Fails("totalShares", boom)

	org := contract.NewOrganization(orgAddr, chain, common.Address{})
	_, err := org.TotalShares(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "call totalShares")

	// no handler registered
	_, err = org.GuildBank(context.Background())
	assert.ErrorIs(t, err, chaintest.ErrReverted)

	// address without code answers with empty data, which cannot be decoded
	empty := contract.NewOrganization(common.HexToAddress("0x01"), chain, common.Address{})
	_, err = empty.TotalShares(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unpack totalShares")
}
