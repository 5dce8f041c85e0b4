package main

import (
	"fmt"
	"io"
	"math/big"

	"DAOScope/internal/model"
	"DAOScope/internal/recorder"
	"DAOScope/internal/store"

	"github.com/pterm/pterm"
)

func amount(v *big.Int, unit string) string {
	return model.FormatUnits(v, model.TokenDecimals, 4) + " " + unit
}

func renderOrganizations(w io.Writer, orgs []model.Organization, selected string) error {
	data := pterm.TableData{{"", "Key", "Name", "Unit", "Address"}}
	for _, o := range orgs {
		mark := ""
		if o.Key == selected {
			mark = "*"
		}
		data = append(data, []string{mark, o.Key, o.Name, o.Unit, o.Address.Hex()})
	}
	return renderTable(w, pterm.DefaultTable.WithHasHeader().WithData(data))
}

func renderTable(w io.Writer, t *pterm.TablePrinter) error {
	out, err := t.Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func renderStatistics(w io.Writer, v store.View) {
	s := v.Statistics
	unit := v.Unit()
	network := "-"
	if v.Connection != nil {
		network = fmt.Sprintf("%s (%s)", v.Connection.Network.Name, v.Connection.Network.ID)
	}
	summoned := "-"
	if t := s.SummonedAt(); !t.IsZero() {
		summoned = t.Format("2006-01-02 15:04 MST")
	}
	data := pterm.TableData{
		{"Organization", v.Name()},
		{"Network", network},
		{"API", v.APIBaseURL},
		{"Guild bank balance", amount(s.GuildBankApprovedTokenBalance, unit)},
		{"DAO balance", amount(s.DAOBalance, unit)},
		{"Total shares", s.TotalShares.String()},
		{"Current period", s.CurrentPeriod.String()},
		{"Proposal deposit", amount(s.ProposalDeposit, unit)},
		{"Processing reward", amount(s.ProcessingReward, unit)},
		{"Period duration", s.PeriodDuration.String() + "s"},
		{"Voting period", s.VotingPeriodLength.String() + " periods"},
		{"Grace period", s.GracePeriodLength.String() + " periods"},
		{"Dilution bound", s.DilutionBound.String()},
		{"Summoned", summoned},
		{"Approved token", s.ApprovedToken.Hex()},
		{"Guild bank", s.GuildBank.Hex()},
	}
	_ = renderTable(w, pterm.DefaultTable.WithData(data))
}

// renderSelection prints whatever loaded for the selection, then returns fetchErr. A failed
// statistics read does not hide a position that loaded.
func renderSelection(w io.Writer, v store.View, fetchErr error) error {
	if v.Statistics != nil {
		renderStatistics(w, v)
	}
	if v.PositionPhase == model.PhaseReady {
		renderPosition(w, v)
	}
	return fetchErr
}

func renderPosition(w io.Writer, v store.View) {
	if v.Position == nil {
		fmt.Fprintln(w, "No active account")
		return
	}
	fmt.Fprintf(w, "Account %s holds %s shares in %s\n", v.Position.Account.Hex(), v.Position.Shares, v.Name())
}

func renderHistory(w io.Writer, org model.Organization, points []recorder.HistoryPoint) error {
	if len(points) == 0 {
		fmt.Fprintf(w, "No history recorded for %s\n", org.Name)
		return nil
	}
	data := pterm.TableData{{"Time", "Total shares", "Guild bank", "DAO balance", "Period"}}
	for _, p := range points {
		data = append(data, []string{
			p.Timestamp.Format("2006-01-02 15:04"),
			p.TotalShares,
			decimal(p.GuildBankBalance, org.Unit),
			decimal(p.DAOBalance, org.Unit),
			p.CurrentPeriod,
		})
	}
	return renderTable(w, pterm.DefaultTable.WithHasHeader().WithData(data))
}

// decimal formats a stored base-unit amount.
func decimal(s, unit string) string {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return s
	}
	return amount(v, unit)
}
