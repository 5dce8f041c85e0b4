package store

import (
	"DAOScope/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// View is a consistent, read-only copy of the store. Statistics and Position always belong
// to Selected under Generation.
type View struct {
	Generation      uint64                    `json:"generation"`
	Organizations   []model.Organization      `json:"organizations"`
	Selected        model.Organization        `json:"selected"`
	Connection      *model.Connection         `json:"connection,omitempty"`
	Statistics      *model.StatisticsSnapshot `json:"statistics"`
	Position        *model.AccountPosition    `json:"position"`
	StatisticsPhase model.Phase               `json:"statistics_phase"`
	StatisticsError string                    `json:"statistics_error,omitempty"`
	PositionPhase   model.Phase               `json:"position_phase"`
	PositionError   string                    `json:"position_error,omitempty"`
	TokenAddress    *common.Address           `json:"token_address,omitempty"`
	APIBaseURL      string                    `json:"api_base_url"`
}

// Unit is the accounting unit of the selected organization.
func (v View) Unit() string { return v.Selected.Unit }

// Name is the display name of the selected organization.
func (v View) Name() string { return v.Selected.Name }

// View returns the current state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected, _ := s.registry.Get(s.selected)
	v := View{
		Generation:      s.generation,
		Organizations:   s.registry.List(),
		Selected:        selected,
		Statistics:      s.stats,
		Position:        s.position,
		StatisticsPhase: s.statsState.phase,
		StatisticsError: s.statsState.err,
		PositionPhase:   s.posState.phase,
		PositionError:   s.posState.err,
		APIBaseURL:      s.endpoints.RootURL(nil),
	}
	if s.conn != nil {
		c := &model.Connection{Network: s.conn.network}
		if s.conn.account != nil {
			a := *s.conn.account
			c.Account = &a
		}
		v.Connection = c
		v.APIBaseURL = s.endpoints.RootURL(s.conn.network.ID)
	}
	if s.binding != nil && s.binding.token != nil {
		a := s.binding.token.Address()
		v.TokenAddress = &a
	}
	return v
}

// Selected returns the selected organization key.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Connected reports whether a provider has been connected.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}
