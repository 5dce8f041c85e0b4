package notifier

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"DAOScope/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

var osaka = model.Organization{
	Key:     "osaka",
	Name:    "Osaka <DAO>",
	Address: common.HexToAddress("0x7D1a4fC6Df3B16eB894004A4586A29f39Ba6d205"),
	Unit:    "DAI",
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestFormatSnapshot(t *testing.T) {
	s := &model.StatisticsSnapshot{
		Organization:                  "osaka",
		FetchedAt:                     time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		ProcessingReward:              big.NewInt(0),
		CurrentPeriod:                 big.NewInt(12),
		TotalShares:                   big.NewInt(1000),
		ProposalDeposit:               ether(10),
		SummoningTime:                 big.NewInt(1_700_000_000),
		DilutionBound:                 big.NewInt(3),
		PeriodDuration:                big.NewInt(17280),
		VotingPeriodLength:            big.NewInt(35),
		GracePeriodLength:             big.NewInt(35),
		GuildBankApprovedTokenBalance: ether(500),
		DAOBalance:                    big.NewInt(0),
	}

	msg := FormatSnapshot(osaka, s)
	assert.Contains(t, msg, "<b>Osaka &lt;DAO&gt;</b> | 2024-03-01 12:30")
	assert.Contains(t, msg, "Guild bank: 500 DAI")
	assert.Contains(t, msg, "Total shares: 1000")
	assert.Contains(t, msg, "Proposal deposit: 10 DAI")
	assert.Contains(t, msg, "Period: 17280s | voting 35 | grace 35")
	assert.Contains(t, msg, "Summoned: 2023-11-14")
}

func TestFormatPosition(t *testing.T) {
	assert.Contains(t, FormatPosition(osaka, nil), "No active account")

	acct := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	msg := FormatPosition(osaka, &model.AccountPosition{Organization: "osaka", Account: acct, Shares: big.NewInt(25)})
	assert.Contains(t, msg, acct.Hex())
	assert.Contains(t, msg, "Shares: 25")
}

func TestFormatOrganizations_MarksSelected(t *testing.T) {
	orgs := []model.Organization{osaka, {Key: "raid", Name: "Raid Guild", Unit: "wETH"}}
	msg := FormatOrganizations(orgs, "raid")
	assert.Contains(t, msg, "  <code>osaka</code>")
	assert.Contains(t, msg, "▶ <code>raid</code> Raid Guild (wETH)")
}

func TestFormatError_Escapes(t *testing.T) {
	msg := FormatError("refresh failed", errors.New("call <totalShares>: reverted"))
	assert.Contains(t, msg, "&lt;totalShares&gt;")
}
