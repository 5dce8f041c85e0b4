package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"DAOScope/internal/httpserver"
	"DAOScope/internal/notifier"
	"DAOScope/internal/recorder"
	"DAOScope/internal/scheduler"
	"DAOScope/internal/store"
	"DAOScope/internal/wallet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "daoscope",
		Short:         "Read statistics of Moloch-style DAOs",
		Long:          "daoscope connects to an Ethereum node, selects one of the configured DAO contracts and reads its shares, treasury and voting parameters.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&opts.rpcURL, "rpc", "", "node JSON-RPC URL (overrides config)")
	root.PersistentFlags().StringVarP(&opts.org, "org", "o", "", "organization key")
	root.PersistentFlags().StringVar(&opts.account, "account", "", "account address to read the position of")

	root.AddCommand(
		newOrgsCommand(opts),
		newStatsCommand(opts),
		newPositionCommand(opts),
		newAPIURLCommand(opts),
		newHistoryCommand(opts),
		newServeCommand(opts),
	)
	return root
}

func newOrgsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List configured organizations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return renderOrganizations(cmd.OutOrStdout(), cfg.Registry().List(), cfg.Organization)
		},
	}
}

func newStatsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [org]",
		Short: "Select an organization and print its statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.org = args[0]
			}
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.close()
			err = a.connect(cmd.Context(), opts.account)
			if errors.Is(err, store.ErrConnection) {
				return err
			}
			return renderSelection(cmd.OutOrStdout(), a.store.View(), err)
		},
	}
}

func newPositionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "position [org]",
		Short: "Print the active account's shares",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.org = args[0]
			}
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.connect(cmd.Context(), opts.account); errors.Is(err, store.ErrConnection) {
				return err
			}
			v := a.store.View()
			if v.PositionError != "" {
				return errors.New(v.PositionError)
			}
			renderPosition(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newAPIURLCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "api-url",
		Short: "Print the backend API base URL for the connected network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			p, err := wallet.Dial(cmd.Context(), cfg.RPCURL, cfg.Proxy)
			if err != nil {
				return fmt.Errorf("%w: %w", store.ErrConnection, err)
			}
			defer p.Close()
			id, err := p.NetworkID(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: resolve network: %w", store.ErrConnection, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), endpoints(cfg).RootURL(id))
			return nil
		},
	}
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [org]",
		Short: "Print recorded treasury readings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.SQLitePath == "" {
				return errors.New("database.sqlite_path is not configured")
			}
			key := cfg.Organization
			if opts.org != "" {
				key = opts.org
			}
			if len(args) == 1 {
				key = args[0]
			}
			org, err := cfg.Registry().Get(key)
			if err != nil {
				return err
			}
			rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, nil)
			if err != nil {
				return err
			}
			defer rec.Close()
			points, err := rec.History(key, limit)
			if err != nil {
				return err
			}
			return renderHistory(cmd.OutOrStdout(), org, points)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of readings")
	return cmd
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, scheduled refresh and Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, opts, runOnStart || os.Getenv("RUN_ON_START") == "true")
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "send a report immediately")
	return cmd
}

func serve(ctx context.Context, opts *globalOptions, runOnStart bool) error {
	a, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, a.log)
		if err != nil {
			a.log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, a.log)
		n = tn
	}

	// subscribe before connecting so the first snapshot is recorded
	sched := scheduler.NewScheduler(ctx, a.store, n, rec, a.log)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		return err
	}

	if err := a.connect(ctx, opts.account); err != nil {
		if errors.Is(err, store.ErrConnection) {
			return err
		}
		a.log.Warn("initial fetch failed, retrying on schedule", zap.Error(err))
	}

	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		a.log.Info("telegram polling started")
	}
	if runOnStart {
		go sched.RunRefreshNow()
	}

	a.log.Info("daoscope is running", zap.String("org", a.store.Selected()), zap.String("addr", cfg.HTTP.Addr))
	if err := httpserver.New(a.store, rec, a.log).Run(ctx, cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	a.log.Info("daoscope stopped")
	return nil
}
