package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// StatisticsSnapshot is a point-in-time read of an organization and its approved token.
// A snapshot is never patched; the next fetch replaces it in full.
type StatisticsSnapshot struct {
	Organization string    `json:"organization"`
	FetchedAt    time.Time `json:"fetched_at"`

	ProcessingReward   *big.Int       `json:"processing_reward"`
	CurrentPeriod      *big.Int       `json:"current_period"`
	TotalShares        *big.Int       `json:"total_shares"`
	ProposalDeposit    *big.Int       `json:"proposal_deposit"`
	SummoningTime      *big.Int       `json:"summoning_time"`
	DilutionBound      *big.Int       `json:"dilution_bound"`
	ApprovedToken      common.Address `json:"approved_token"`
	PeriodDuration     *big.Int       `json:"period_duration"`
	VotingPeriodLength *big.Int       `json:"voting_period_length"`
	GracePeriodLength  *big.Int       `json:"grace_period_length"`
	GuildBank          common.Address `json:"guild_bank"`

	GuildBankApprovedTokenBalance *big.Int `json:"guild_bank_approved_token_balance"`
	DAOBalance                    *big.Int `json:"dao_balance"`
}

// SummonedAt converts the on-chain summoning timestamp.
func (s *StatisticsSnapshot) SummonedAt() time.Time {
	if s.SummoningTime == nil || !s.SummoningTime.IsInt64() {
		return time.Time{}
	}
	return time.Unix(s.SummoningTime.Int64(), 0).UTC()
}

// AccountPosition holds the active account's membership within the selected organization.
type AccountPosition struct {
	Organization string         `json:"organization"`
	Account      common.Address `json:"account"`
	Shares       *big.Int       `json:"shares"`
}
