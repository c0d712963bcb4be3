package app

import (
	"fmt"
	"log/slog"

	"github.com/Changwoon-overview/Socialtalk/internal/config"
	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/alimtalk"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/cooldown"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/metrics"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/pgstore"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/sms"
	"github.com/Changwoon-overview/Socialtalk/internal/infra/store"

	"github.com/prometheus/client_golang/prometheus"
)

// Components is the dispatch core shared by the API server and the worker.
type Components struct {
	Store      *store.SupabaseStore
	Log        notification.DeliveryLog
	Cooldown   notification.CooldownStore
	Monitor    *notification.BalanceMonitor
	Dispatcher *notification.Dispatcher

	closers []func() error
}

// Close releases connections opened by Build.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			slog.Warn("closing component", "error", err)
		}
	}
}

// Build wires stores, channel clients, the low-balance monitor and the
// dispatcher from cfg. Send metrics are registered with reg when it is non-nil.
func Build(cfg *config.Config, reg prometheus.Registerer) (*Components, error) {
	c := &Components{}

	supabaseStore, err := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	if err != nil {
		return nil, fmt.Errorf("initializing supabase store: %w", err)
	}
	c.Store = supabaseStore
	slog.Info("supabase store initialized")

	switch cfg.DeliveryLog.Driver {
	case "postgres":
		db, err := pgstore.Open(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			c.closers = append(c.closers, sqlDB.Close)
		}
		c.Log = pgstore.NewDeliveryLogStore(db)
	default:
		c.Log = supabaseStore
	}
	slog.Info("delivery log initialized", "driver", cfg.DeliveryLog.Driver)

	if cfg.Redis.Address != "" {
		redisCooldown := cooldown.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		c.closers = append(c.closers, redisCooldown.Close)
		c.Cooldown = redisCooldown
	} else {
		c.Cooldown = cooldown.NewMemoryStore()
	}

	timeout := cfg.Channels.Timeout()
	smsClient := sms.NewClient(cfg.Channels.SMSBaseURL, timeout)
	alimtalkClient := alimtalk.NewClient(cfg.Channels.AlimtalkBaseURL, timeout)

	// Every channel response carries the remaining balance.
	c.Monitor = notification.NewBalanceMonitor(supabaseStore, c.Cooldown, smsClient, cfg.LowBalance.Cooldown())
	smsClient.SetBalanceObserver(c.Monitor)
	alimtalkClient.SetBalanceObserver(c.Monitor)
	slog.Info("channel clients initialized", "timeout", timeout.String())

	var opts []notification.DispatcherOption
	if reg != nil {
		opts = append(opts, notification.WithSendRecorder(metrics.NewRecorder(reg)))
	}

	c.Dispatcher = notification.NewDispatcher(
		supabaseStore,
		supabaseStore,
		c.Log,
		smsClient,
		alimtalkClient,
		notification.NewRenderer(),
		opts...,
	)

	return c, nil
}
