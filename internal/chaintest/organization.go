package chaintest

import (
	"math/big"

	"DAOScope/internal/contract"

	"github.com/ethereum/go-ethereum/common"
)

// Organization describes a deployed Moloch organization and its token balances.
type Organization struct {
	Address            common.Address
	Token              common.Address
	GuildBank          common.Address
	ProcessingReward   int64
	CurrentPeriod      int64
	TotalShares        int64
	ProposalDeposit    int64
	SummoningTime      int64
	DilutionBound      int64
	PeriodDuration     int64
	VotingPeriodLength int64
	GracePeriodLength  int64
	GuildBankBalance   int64
	DAOBalance         int64
	Shares             map[common.Address]int64
}

// Install deploys the organization and its token on the chain.
func (o Organization) Install(c *Chain) *Contract {
	c.DeployToken(o.Token)
	c.SetBalance(o.Token, o.GuildBank, big.NewInt(o.GuildBankBalance))
	c.SetBalance(o.Token, o.Address, big.NewInt(o.DAOBalance))

	k := c.Deploy(o.Address, contract.OrganizationABI).
		Returns("processingReward", big.NewInt(o.ProcessingReward)).
		Returns("getCurrentPeriod", big.NewInt(o.CurrentPeriod)).
		Returns("totalShares", big.NewInt(o.TotalShares)).
		Returns("proposalDeposit", big.NewInt(o.ProposalDeposit)).
		Returns("summoningTime", big.NewInt(o.SummoningTime)).
		Returns("dilutionBound", big.NewInt(o.DilutionBound)).
		Returns("approvedToken", o.Token).
		Returns("periodDuration", big.NewInt(o.PeriodDuration)).
		Returns("votingPeriodLength", big.NewInt(o.VotingPeriodLength)).
		Returns("gracePeriodLength", big.NewInt(o.GracePeriodLength)).
		Returns("guildBank", o.GuildBank)

	shares := o.Shares
	k.Handle("members", func(args []interface{}) ([]interface{}, error) {
		account := args[0].(common.Address)
		n, ok := shares[account]
		delegate := common.Address{}
		if ok {
			delegate = account
		}
		return []interface{}{delegate, big.NewInt(n), ok, big.NewInt(0)}, nil
	})
	return k
}
