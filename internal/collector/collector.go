package collector

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"DAOScope/internal/contract"
	"DAOScope/internal/model"
	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Collector reads statistics and membership from one bound organization.
type Collector struct {
	Key          string
	Organization *contract.Organization
	Signer       wallet.Signer
	From         common.Address
	log          *zap.Logger
	now          func() time.Time
}

// NewCollector creates a Collector for the organization selected under key.
func NewCollector(key string, org *contract.Organization, signer wallet.Signer, from common.Address, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		Key:          key,
		Organization: org,
		Signer:       signer,
		From:         from,
		log:          logger.Named("collector").With(zap.String("org", key)),
		now:          time.Now,
	}
}

type step struct {
	name string
	run  func(context.Context) error
}

// Statistics issues the fixed, ordered batch of organization reads, then binds the approved
// token and reads the treasury and organization balances. The token handle is returned so
// the caller can keep it with the binding. Either everything succeeds or nothing is returned.
func (c *Collector) Statistics(ctx context.Context) (*model.StatisticsSnapshot, *contract.Token, error) {
	c.log.Debug("loading statistics")
	org := c.Organization
	s := &model.StatisticsSnapshot{Organization: c.Key}

	readUint := func(dst **big.Int, read func(context.Context) (*big.Int, error)) func(context.Context) error {
		return func(ctx context.Context) (err error) {
			*dst, err = read(ctx)
			return err
		}
	}
	readAddr := func(dst *common.Address, read func(context.Context) (common.Address, error)) func(context.Context) error {
		return func(ctx context.Context) (err error) {
			*dst, err = read(ctx)
			return err
		}
	}

	steps := []step{
		{"processingReward", readUint(&s.ProcessingReward, org.ProcessingReward)},
		{"getCurrentPeriod", readUint(&s.CurrentPeriod, org.CurrentPeriod)},
		{"totalShares", readUint(&s.TotalShares, org.TotalShares)},
		{"proposalDeposit", readUint(&s.ProposalDeposit, org.ProposalDeposit)},
		{"summoningTime", readUint(&s.SummoningTime, org.SummoningTime)},
		{"dilutionBound", readUint(&s.DilutionBound, org.DilutionBound)},
		{"approvedToken", readAddr(&s.ApprovedToken, org.ApprovedToken)},
		{"periodDuration", readUint(&s.PeriodDuration, org.PeriodDuration)},
		{"votingPeriodLength", readUint(&s.VotingPeriodLength, org.VotingPeriodLength)},
		{"gracePeriodLength", readUint(&s.GracePeriodLength, org.GracePeriodLength)},
		{"guildBank", readAddr(&s.GuildBank, org.GuildBank)},
	}
	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			return nil, nil, fmt.Errorf("fetch %s: %w", st.name, err)
		}
	}

	// token reads depend on approvedToken and guildBank
	token := contract.NewToken(s.ApprovedToken, c.Signer, c.From)
	var err error
	if s.GuildBankApprovedTokenBalance, err = token.BalanceOf(ctx, s.GuildBank); err != nil {
		return nil, nil, fmt.Errorf("fetch guild bank balance: %w", err)
	}
	if s.DAOBalance, err = token.BalanceOf(ctx, org.Address()); err != nil {
		return nil, nil, fmt.Errorf("fetch organization balance: %w", err)
	}

	s.FetchedAt = c.now()
	c.log.Debug("statistics loaded",
		zap.Stringer("total_shares", s.TotalShares),
		zap.Stringer("guild_bank_balance", s.GuildBankApprovedTokenBalance))
	return s, token, nil
}

// Position reads account's membership record and extracts its share count.
func (c *Collector) Position(ctx context.Context, account common.Address) (*model.AccountPosition, error) {
	c.log.Debug("loading account position", zap.Stringer("account", account))
	m, err := c.Organization.Members(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("fetch member %s: %w", account.Hex(), err)
	}
	return &model.AccountPosition{
		Organization: c.Key,
		Account:      account,
		Shares:       m.Shares,
	}, nil
}
