package contract

import (
	"context"
	"fmt"
	"math/big"

	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// Organization is a typed handle to a Moloch v1 organization contract.
type Organization struct {
	bound
}

// NewOrganization binds the organization at address. from is the account calls are
// issued as; the zero address is fine for reads.
func NewOrganization(address common.Address, signer wallet.Signer, from common.Address) *Organization {
	return &Organization{bound{address: address, abi: OrganizationABI, signer: signer, from: from}}
}

func (o *Organization) Address() common.Address { return o.address }

func (o *Organization) ProcessingReward(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "processingReward")
}

func (o *Organization) CurrentPeriod(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "getCurrentPeriod")
}

func (o *Organization) TotalShares(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "totalShares")
}

func (o *Organization) ProposalDeposit(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "proposalDeposit")
}

func (o *Organization) SummoningTime(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "summoningTime")
}

func (o *Organization) DilutionBound(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "dilutionBound")
}

func (o *Organization) ApprovedToken(ctx context.Context) (common.Address, error) {
	return o.callAddress(ctx, "approvedToken")
}

func (o *Organization) PeriodDuration(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "periodDuration")
}

func (o *Organization) VotingPeriodLength(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "votingPeriodLength")
}

func (o *Organization) GracePeriodLength(ctx context.Context) (*big.Int, error) {
	return o.callUint(ctx, "gracePeriodLength")
}

// GuildBank returns the treasury address holding pooled funds.
func (o *Organization) GuildBank(ctx context.Context) (common.Address, error) {
	return o.callAddress(ctx, "guildBank")
}

// Member is the membership record stored for an account.
type Member struct {
	DelegateKey         common.Address
	Shares              *big.Int
	Exists              bool
	HighestIndexYesVote *big.Int
}

// Members reads the membership record of account. Non-members come back with Exists=false
// and zero shares; that is not an error.
func (o *Organization) Members(ctx context.Context, account common.Address) (Member, error) {
	res, err := o.call(ctx, "members", account)
	if err != nil {
		return Member{}, err
	}
	if len(res) != 4 {
		return Member{}, fmt.Errorf("members: expected 4 outputs, got %d", len(res))
	}
	var m Member
	var ok bool
	if m.DelegateKey, ok = res[0].(common.Address); !ok {
		return Member{}, fmt.Errorf("members: delegateKey has type %T", res[0])
	}
	// shares sits at position 1 of the record
	if m.Shares, ok = res[1].(*big.Int); !ok {
		return Member{}, fmt.Errorf("members: shares has type %T", res[1])
	}
	if m.Exists, ok = res[2].(bool); !ok {
		return Member{}, fmt.Errorf("members: exists has type %T", res[2])
	}
	if m.HighestIndexYesVote, ok = res[3].(*big.Int); !ok {
		return Member{}, fmt.Errorf("members: highestIndexYesVote has type %T", res[3])
	}
	return m, nil
}
