package notifier

import (
	"fmt"
	"html"
	"math/big"
	"strings"

	"DAOScope/internal/model"
)

func units(v *big.Int, unit string) string {
	return fmt.Sprintf("%s %s", model.FormatUnits(v, model.TokenDecimals, 4), html.EscapeString(unit))
}

// FormatSnapshot formats a statistics snapshot into a Telegram message.
func FormatSnapshot(org model.Organization, s *model.StatisticsSnapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(org.Name), s.FetchedAt.UTC().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Guild bank: %s\n", units(s.GuildBankApprovedTokenBalance, org.Unit)))
	b.WriteString(fmt.Sprintf("DAO balance: %s\n", units(s.DAOBalance, org.Unit)))
	b.WriteString(fmt.Sprintf("Total shares: %s\n", s.TotalShares))
	b.WriteString(fmt.Sprintf("Current period: %s\n\n", s.CurrentPeriod))

	b.WriteString("⚙️ <b>Parameters:</b>\n")
	b.WriteString(fmt.Sprintf("  Proposal deposit: %s\n", units(s.ProposalDeposit, org.Unit)))
	b.WriteString(fmt.Sprintf("  Processing reward: %s\n", units(s.ProcessingReward, org.Unit)))
	b.WriteString(fmt.Sprintf("  Period: %ss | voting %s | grace %s\n", s.PeriodDuration, s.VotingPeriodLength, s.GracePeriodLength))
	b.WriteString(fmt.Sprintf("  Dilution bound: %s\n", s.DilutionBound))
	if t := s.SummonedAt(); !t.IsZero() {
		b.WriteString(fmt.Sprintf("  Summoned: %s\n", t.Format("2006-01-02")))
	}
	return b.String()
}

// FormatPosition formats the active account's shares.
func FormatPosition(org model.Organization, p *model.AccountPosition) string {
	if p == nil {
		return fmt.Sprintf("👤 No active account for <b>%s</b>", html.EscapeString(org.Name))
	}
	return fmt.Sprintf("👤 <b>%s</b>\nAccount: <code>%s</code>\nShares: %s\n",
		html.EscapeString(org.Name), p.Account.Hex(), p.Shares)
}

// FormatOrganizations lists the selectable organizations, marking the current one.
func FormatOrganizations(orgs []model.Organization, selected string) string {
	var b strings.Builder
	b.WriteString("🏛 <b>Organizations</b>\n\n")
	for _, o := range orgs {
		mark := "  "
		if o.Key == selected {
			mark = "▶ "
		}
		b.WriteString(fmt.Sprintf("%s<code>%s</code> %s (%s)\n", mark, o.Key, html.EscapeString(o.Name), html.EscapeString(o.Unit)))
	}
	return b.String()
}

// FormatError formats a failure notice.
func FormatError(context string, err error) string {
	return fmt.Sprintf("⚠️ <b>%s</b>\n%s", html.EscapeString(context), html.EscapeString(err.Error()))
}
