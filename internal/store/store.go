// Package store holds the client-side state: the wallet connection, the selected organization
// and the latest statistics and account position read for it.
//
// Every selection starts a new generation. Fetches capture the generation they were started
// under and publish only while it is still current, so a slow read for a superseded selection
// can never overwrite data shown under a newer one.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"DAOScope/internal/api"
	"DAOScope/internal/collector"
	"DAOScope/internal/config"
	"DAOScope/internal/contract"
	"DAOScope/internal/model"
	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrConnection wraps any failure while resolving the provider's network or accounts.
	ErrConnection = errors.New("connection failed")
	// ErrNotConnected is returned by operations that need a connection before one exists.
	ErrNotConnected = errors.New("not connected")
	// ErrSuperseded is returned when a fetch finished after a newer selection started;
	// its result was dropped.
	ErrSuperseded = errors.New("selection superseded")
)

type connection struct {
	provider wallet.Provider
	signer   wallet.Signer
	network  model.Network
	account  *common.Address
}

// binding is owned by exactly one generation.
type binding struct {
	generation   uint64
	org          model.Organization
	organization *contract.Organization
	token        *contract.Token
	collector    *collector.Collector
}

type branch struct {
	phase model.Phase
	err   string
}

// Options configures a Store.
type Options struct {
	Endpoints api.Endpoints
	Logger    *zap.Logger
	// Selected is the initial organization key; it must be in the registry.
	Selected string
}

// Store is the explicit state object shared by the CLI, HTTP and chat surfaces.
type Store struct {
	mu        sync.RWMutex
	registry  *config.Registry
	endpoints api.Endpoints
	log       *zap.Logger

	selected   string
	generation uint64
	conn       *connection
	binding    *binding
	stats      *model.StatisticsSnapshot
	position   *model.AccountPosition
	statsState branch
	posState   branch

	subMu       sync.Mutex
	subscribers []func(Update)

	// onBinding runs after both branches enter PhaseBinding, before the contract is bound.
	onBinding func(key string)
}

// New creates a Store over a validated registry.
func New(registry *config.Registry, opts Options) (*Store, error) {
	if registry == nil {
		return nil, fmt.Errorf("store: registry is required")
	}
	if _, err := registry.Get(opts.Selected); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Endpoints == (api.Endpoints{}) {
		opts.Endpoints = api.DefaultEndpoints()
	}
	return &Store{
		registry:   registry,
		endpoints:  opts.Endpoints,
		log:        opts.Logger.Named("store"),
		selected:   opts.Selected,
		statsState: branch{phase: model.PhaseIdle},
		posState:   branch{phase: model.PhaseIdle},
	}, nil
}

// Connect derives the signer, network and active account from p, replaces the connection
// wholesale and binds the current selection. An empty account list is valid and means no
// account is logged in.
func (s *Store) Connect(ctx context.Context, p wallet.Provider) error {
	s.log.Info("setting provider")
	signer := p.Signer()

	id, err := p.NetworkID(ctx)
	if err != nil {
		return fmt.Errorf("%w: resolve network: %w", ErrConnection, err)
	}
	accounts, err := p.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("%w: list accounts: %w", ErrConnection, err)
	}
	var account *common.Address
	if len(accounts) > 0 {
		a := accounts[0]
		account = &a
	}

	conn := &connection{provider: p, signer: signer, network: model.NewNetwork(id), account: account}
	s.mu.Lock()
	s.conn = conn
	key := s.selected
	s.mu.Unlock()

	fields := []zap.Field{zap.Stringer("network", id), zap.String("network_name", conn.network.Name)}
	if account != nil {
		fields = append(fields, zap.Stringer("account", account))
	}
	s.log.Info("connected", fields...)

	return s.Select(ctx, key)
}

// Select switches to the organization under key. Unknown keys fail before any state change
// or network call. Otherwise previous statistics and position are cleared, the organization
// contract is bound, and the statistics and position fetches run concurrently; Select
// returns once both have finished, with the first error either produced. Re-selecting the
// current key still resets and refetches.
//
// Without a connection the selection is remembered and ErrNotConnected is returned; the next
// Connect binds it.
func (s *Store) Select(ctx context.Context, key string) error {
	org, err := s.registry.Get(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.selected = key
	s.stats = nil
	s.position = nil
	s.binding = nil
	conn := s.conn
	if conn == nil {
		s.statsState = branch{phase: model.PhaseIdle}
		s.posState = branch{phase: model.PhaseIdle}
		s.mu.Unlock()
		s.log.Info("organization selected while disconnected", zap.String("org", key))
		return ErrNotConnected
	}
	s.statsState = branch{phase: model.PhaseBinding}
	s.posState = branch{phase: model.PhaseBinding}
	s.mu.Unlock()
	if s.onBinding != nil {
		s.onBinding(key)
	}

	var from common.Address
	if conn.account != nil {
		from = *conn.account
	}
	organization := contract.NewOrganization(org.Address, conn.signer, from)
	b := &binding{
		generation:   gen,
		org:          org,
		organization: organization,
		collector:    collector.NewCollector(key, organization, conn.signer, from, s.log),
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.log.Info("selection superseded while binding", zap.String("org", key), zap.Uint64("generation", gen))
		return ErrSuperseded
	}
	s.binding = b
	s.statsState = branch{phase: model.PhaseLoading}
	s.posState = branch{phase: model.PhaseLoading}
	account := conn.account
	s.mu.Unlock()

	s.log.Info("loading organization contract",
		zap.String("org", key), zap.Stringer("address", org.Address), zap.Uint64("generation", gen))

	var g errgroup.Group
	g.Go(func() error { return s.fetchStatistics(ctx, b) })
	g.Go(func() error { return s.fetchPosition(ctx, b, account) })
	return g.Wait()
}

// Refresh re-reads statistics and position for the current binding without clearing what
// is shown. Failures leave the previous values in place.
func (s *Store) Refresh(ctx context.Context) error {
	b, account, err := s.current(true, true)
	if err != nil {
		return err
	}
	var g errgroup.Group
	g.Go(func() error { return s.fetchStatistics(ctx, b) })
	g.Go(func() error { return s.fetchPosition(ctx, b, account) })
	return g.Wait()
}

// RefreshStatistics re-reads only the statistics branch.
func (s *Store) RefreshStatistics(ctx context.Context) error {
	b, _, err := s.current(true, false)
	if err != nil {
		return err
	}
	return s.fetchStatistics(ctx, b)
}

// RefreshPosition re-reads only the account position branch.
func (s *Store) RefreshPosition(ctx context.Context) error {
	b, account, err := s.current(false, true)
	if err != nil {
		return err
	}
	return s.fetchPosition(ctx, b, account)
}

func (s *Store) current(stats, pos bool) (*binding, *common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil || s.conn == nil {
		return nil, nil, ErrNotConnected
	}
	if stats {
		s.statsState = branch{phase: model.PhaseLoading}
	}
	if pos {
		s.posState = branch{phase: model.PhaseLoading}
	}
	return s.binding, s.conn.account, nil
}

func (s *Store) fetchStatistics(ctx context.Context, b *binding) error {
	snap, token, err := b.collector.Statistics(ctx)

	s.mu.Lock()
	if b.generation != s.generation {
		s.mu.Unlock()
		staleResults.WithLabelValues(branchStatistics).Inc()
		s.log.Info("dropping statistics from superseded selection",
			zap.String("org", b.org.Key), zap.Uint64("generation", b.generation))
		return ErrSuperseded
	}
	if err != nil {
		s.statsState = branch{phase: model.PhaseFailed, err: err.Error()}
		s.mu.Unlock()
		fetches.WithLabelValues(branchStatistics, resultError).Inc()
		s.log.Warn("statistics fetch failed", zap.String("org", b.org.Key), zap.Error(err))
		return err
	}
	b.token = token
	s.stats = snap
	s.statsState = branch{phase: model.PhaseReady}
	update := Update{Kind: KindStatistics, Generation: b.generation, Organization: b.org, Statistics: snap}
	s.mu.Unlock()

	fetches.WithLabelValues(branchStatistics, resultOK).Inc()
	s.publish(update)
	return nil
}

func (s *Store) fetchPosition(ctx context.Context, b *binding, account *common.Address) error {
	if account == nil {
		// nothing to read when no account is logged in
		s.mu.Lock()
		if b.generation == s.generation {
			s.position = nil
			s.posState = branch{phase: model.PhaseReady}
		}
		s.mu.Unlock()
		return nil
	}

	pos, err := b.collector.Position(ctx, *account)

	s.mu.Lock()
	if b.generation != s.generation {
		s.mu.Unlock()
		staleResults.WithLabelValues(branchPosition).Inc()
		s.log.Info("dropping position from superseded selection",
			zap.String("org", b.org.Key), zap.Uint64("generation", b.generation))
		return ErrSuperseded
	}
	if err != nil {
		s.posState = branch{phase: model.PhaseFailed, err: err.Error()}
		s.mu.Unlock()
		fetches.WithLabelValues(branchPosition, resultError).Inc()
		s.log.Warn("position fetch failed", zap.String("org", b.org.Key), zap.Error(err))
		return err
	}
	s.position = pos
	s.posState = branch{phase: model.PhaseReady}
	update := Update{Kind: KindPosition, Generation: b.generation, Organization: b.org, Position: pos}
	s.mu.Unlock()

	fetches.WithLabelValues(branchPosition, resultOK).Inc()
	s.publish(update)
	return nil
}
