package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"DAOScope/internal/api"
	"DAOScope/internal/config"
	"DAOScope/internal/logging"
	"DAOScope/internal/session"
	"DAOScope/internal/store"
	"DAOScope/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	rpcURL     string
	org        string
	account    string
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// app holds what a command needs after bootstrap.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	provider *wallet.RPCProvider
}

// loadConfig reads and validates configuration, applying flag overrides.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.rpcURL != "" {
		cfg.RPCURL = opts.rpcURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func endpoints(cfg *config.Config) api.Endpoints {
	return api.Endpoints{
		LocalChainID:  cfg.API.LocalChainID,
		LocalURL:      cfg.API.LocalURL,
		ProductionURL: cfg.API.ProductionURL,
	}
}

// startingOrganization picks the --org flag, then the remembered session, then the config default.
func startingOrganization(opts *globalOptions, cfg *config.Config, logger *zap.Logger) (string, error) {
	reg := cfg.Registry()
	if opts.org != "" {
		if _, err := reg.Get(opts.org); err != nil {
			return "", err
		}
		return opts.org, nil
	}
	state, err := session.Load(cfg.Session.StateFile)
	if err != nil {
		logger.Warn("load session, using configured organization", zap.Error(err))
		return cfg.Organization, nil
	}
	valid := func(key string) bool {
		_, err := reg.Get(key)
		return err == nil
	}
	return session.Resolve(state, valid, cfg.Organization), nil
}

// bootstrap loads configuration and builds the logger and the store. Nothing is dialed yet.
func bootstrap(opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	selected, err := startingOrganization(opts, cfg, logger)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.Registry(), store.Options{
		Endpoints: endpoints(cfg),
		Logger:    logger,
		Selected:  selected,
	})
	if err != nil {
		return nil, err
	}
	rememberSelection(st, cfg.Session.StateFile, logger)
	return &app{cfg: cfg, log: logger, store: st}, nil
}

// connect dials the node and connects the store, which binds and fetches the selection.
// Errors wrapping store.ErrConnection mean nothing was connected; any other error is a
// failed read and the store stays usable.
func (a *app) connect(ctx context.Context, account string) error {
	provider, err := wallet.Dial(ctx, a.cfg.RPCURL, a.cfg.Proxy)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrConnection, err)
	}
	a.provider = provider

	var p wallet.Provider = provider
	if account != "" {
		if !common.IsHexAddress(account) {
			return fmt.Errorf("%w: invalid account %q", store.ErrConnection, account)
		}
		p = wallet.WithAccounts(provider, common.HexToAddress(account))
	}
	return a.store.Connect(ctx, p)
}

// rememberSelection saves the organization key whenever statistics for a new one publish.
func rememberSelection(st *store.Store, path string, logger *zap.Logger) {
	var mu sync.Mutex
	last := ""
	st.Subscribe(func(u store.Update) {
		if u.Kind != store.KindStatistics {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if u.Organization.Key == last {
			return
		}
		last = u.Organization.Key
		if err := session.Save(path, &session.State{Organization: last}); err != nil {
			logger.Warn("save session", zap.Error(err))
		}
	})
}

func (a *app) close() {
	if a.provider != nil {
		a.provider.Close()
	}
	_ = a.log.Sync()
}
