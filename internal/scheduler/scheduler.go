// Package scheduler drives periodic refreshes of the selected organization, records what the
// store publishes and answers chat commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math/big"
	"strings"

	"DAOScope/internal/model"
	"DAOScope/internal/notifier"
	"DAOScope/internal/recorder"
	"DAOScope/internal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Store    *store.Store
	Notifier Notifier
	Recorder recorder.Recorder
	Ctx      context.Context

	log *zap.Logger
}

// NewScheduler creates a new Scheduler. n may be nil when no chat is configured.
func NewScheduler(ctx context.Context, st *store.Store, n Notifier, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Store:    st,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		log:      logger.Named("scheduler"),
	}
	st.Subscribe(s.record)
	return s
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.log.Info("running refresh task", zap.String("org", s.Store.Selected()))
	if err := s.Store.Refresh(s.Ctx); err != nil {
		if errors.Is(err, store.ErrSuperseded) {
			return
		}
		s.log.Error("refresh", zap.Error(err))
		s.trySend(notifier.FormatError("Refresh failed", err))
		return
	}
	v := s.Store.View()
	if v.Statistics != nil {
		s.trySend(notifier.FormatSnapshot(v.Selected, v.Statistics))
	}
}

// record persists every published result.
func (s *Scheduler) record(u store.Update) {
	var err error
	switch u.Kind {
	case store.KindStatistics:
		err = s.Recorder.RecordStatistics(&recorder.StatisticsRecord{
			Organization: u.Organization, Generation: u.Generation, Snapshot: u.Statistics,
		})
	case store.KindPosition:
		err = s.Recorder.RecordPosition(&recorder.PositionRecord{
			Organization: u.Organization, Generation: u.Generation, Position: u.Position,
		})
	}
	if err != nil {
		s.log.Error("record update", zap.String("kind", string(u.Kind)), zap.Error(err))
	}
}

const helpText = "Available commands:\n" +
	"• /orgs list organizations\n" +
	"• /select &lt;key&gt; switch organization\n" +
	"• /stats refresh and show statistics\n" +
	"• /position show the active account's shares\n" +
	"• /history recent treasury readings"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// commands may arrive as "/stats@BotName" in group chats
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/orgs":
		v := s.Store.View()
		return notifier.FormatOrganizations(v.Organizations, v.Selected.Key)
	case "/select":
		if len(fields) < 2 {
			return "Usage: /select &lt;key&gt;"
		}
		if err := s.Store.Select(ctx, fields[1]); err != nil && !errors.Is(err, store.ErrSuperseded) {
			return notifier.FormatError("Select "+fields[1], err)
		}
		v := s.Store.View()
		if v.Statistics == nil {
			return fmt.Sprintf("Selected %s", v.Selected.Name)
		}
		return notifier.FormatSnapshot(v.Selected, v.Statistics)
	case "/stats":
		if err := s.Store.RefreshStatistics(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
			return notifier.FormatError("Statistics", err)
		}
		v := s.Store.View()
		if v.Statistics == nil {
			return "No statistics yet"
		}
		return notifier.FormatSnapshot(v.Selected, v.Statistics)
	case "/position":
		if err := s.Store.RefreshPosition(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
			return notifier.FormatError("Position", err)
		}
		v := s.Store.View()
		return notifier.FormatPosition(v.Selected, v.Position)
	case "/history":
		v := s.Store.View()
		points, err := s.Recorder.History(v.Selected.Key, 5)
		if err != nil {
			return notifier.FormatError("History", err)
		}
		return formatHistory(v.Selected, points)
	default:
		return helpText
	}
}

func formatHistory(org model.Organization, points []recorder.HistoryPoint) string {
	if len(points) == 0 {
		return fmt.Sprintf("No history recorded for %s", org.Name)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> history\n\n", html.EscapeString(org.Name)))
	for _, p := range points {
		bank, ok := new(big.Int).SetString(p.GuildBankBalance, 10)
		if !ok {
			bank = nil
		}
		b.WriteString(fmt.Sprintf("%s  shares %s | bank %s %s\n",
			p.Timestamp.UTC().Format("2006-01-02 15:04"), p.TotalShares,
			model.FormatUnits(bank, model.TokenDecimals, 4), html.EscapeString(org.Unit)))
	}
	return b.String()
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
