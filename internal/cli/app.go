// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/jeranaias/shopchat/internal/chatapi"
	"github.com/jeranaias/shopchat/internal/config"
	"github.com/jeranaias/shopchat/internal/exchange"
	"github.com/jeranaias/shopchat/internal/netstatus"
	"github.com/jeranaias/shopchat/internal/session"
	"github.com/jeranaias/shopchat/internal/storage"
	"github.com/jeranaias/shopchat/internal/telemetry"
)

// app holds the collaborators shared by one widget: storage, identity,
// analytics, the backend client and the session.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	kv        storage.KV
	history   *storage.History
	identity  *storage.Identity
	analytics *telemetry.Analytics
	client    *chatapi.Client
	session   *session.Session

	logCloser io.Closer
}

// newApp opens storage and builds the backend client. An unusable store falls
// back to an in-memory one so the chat still works.
func newApp(cfg *config.Config, logger zerolog.Logger) *app {
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Storage.Backend).Msg("storage unavailable, using memory")
		kv = storage.NewMemoryKV()
	}

	analytics := telemetry.NewAnalytics(cfg.Limits.AnalyticsCapacity).WithLogger(logger)
	identity := storage.NewIdentity(kv, logger)

	client := chatapi.New(cfg.API.URL).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRetryStep(cfg.API.RetryStep()).
		WithTimeout(cfg.API.RequestTimeout()).
		WithLogger(logger).
		WithTracker(analytics)

	return &app{
		cfg:    cfg,
		logger: logger,
		kv:     kv,
		history: storage.NewHistory(kv,
			storage.WithHistoryCapacity(cfg.Limits.HistoryCapacity),
			storage.WithHistoryLogger(logger),
		),
		identity:  identity,
		analytics: analytics,
		client:    client,
		session:   session.New(identity, session.Config{MinSendInterval: cfg.Limits.MinSendInterval()}),
		logCloser: nopCloser{},
	}
}

// controller wires an exchange controller for renderer.
func (a *app) controller(renderer exchange.Renderer) *exchange.Controller {
	return exchange.NewController(a.client, a.session, renderer,
		exchange.WithHistory(a.history),
		exchange.WithTracker(a.analytics),
		exchange.WithMessages(a.cfg.Messages.Exchange()),
		exchange.WithLogger(a.logger),
	)
}

// startMonitor probes the backend in the background when enabled. onChange
// runs on connectivity transitions.
func (a *app) startMonitor(ctx context.Context, onChange func(online bool)) {
	if !a.cfg.Network.Monitor {
		return
	}
	mon, err := netstatus.NewMonitor(a.cfg.API.URL, onChange)
	if err != nil {
		a.logger.Warn().Err(err).Msg("connectivity monitor disabled")
		return
	}
	mon = mon.WithInterval(a.cfg.Network.ProbeInterval()).WithLogger(a.logger)
	go mon.Run(ctx)
}

// watchConfig reloads the config file on change and hands the result to
// onChange. Only the message strings are meant to be applied live.
func (a *app) watchConfig(ctx context.Context, explicit string, onChange func(*config.Config)) {
	path, err := config.ResolvePath(explicit)
	if err != nil {
		a.logger.Warn().Err(err).Msg("config watch disabled")
		return
	}
	w := config.NewWatcher(path, onChange).WithLogger(a.logger)
	go func() {
		if err := w.Run(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("config watch stopped")
		}
	}()
}

// Close flushes analytics to the log and releases the store.
func (a *app) Close() {
	a.logger.Info().
		Str("session", a.session.ID()).
		Int("sends", a.session.Sends()).
		Interface("events", a.analytics.Counts()).
		Msg("session ended")
	if err := a.kv.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close storage")
	}
	_ = a.logCloser.Close()
}

// setup builds the logger for target and the app around it.
func (o *rootOptions) setup(target logTarget, stderr io.Writer) (*app, error) {
	logger, closer, err := newLogger(o.cfg, target, o.debug, stderr)
	if err != nil {
		return nil, err
	}
	a := newApp(o.cfg, logger)
	a.logCloser = closer
	return a, nil
}
