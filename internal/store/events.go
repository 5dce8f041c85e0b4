package store

import (
	"slices"

	"DAOScope/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Kind says which branch an Update carries.
type Kind string

const (
	KindStatistics Kind = "statistics"
	KindPosition   Kind = "position"
)

// Update is delivered to subscribers after a fetch result is published.
type Update struct {
	Kind         Kind
	Generation   uint64
	Organization model.Organization
	Statistics   *model.StatisticsSnapshot
	Position     *model.AccountPosition
}

// Subscribe registers fn to be called after every published result. fn runs on the
// fetching goroutine, outside the store lock.
func (s *Store) Subscribe(fn func(Update)) {
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.subMu.Unlock()
}

func (s *Store) publish(u Update) {
	s.subMu.Lock()
	subs := slices.Clone(s.subscribers)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(u)
	}
}

const (
	branchStatistics = "statistics"
	branchPosition   = "position"
	resultOK         = "ok"
	resultError      = "error"
)

var (
	fetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daoscope",
			Subsystem: "store",
			Name:      "fetches_total",
			Help:      "Completed fetches by branch and result",
		},
		[]string{"branch", "result"},
	)
	staleResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daoscope",
			Subsystem: "store",
			Name:      "superseded_results_total",
			Help:      "Fetch results dropped because a newer selection started",
		},
		[]string{"branch"},
	)
)
