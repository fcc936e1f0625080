// Package console assembles the chat widget of one admin for a front end.
package console

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/bus"
	"github.com/matheus3301/campchat/internal/conn"
	"github.com/matheus3301/campchat/internal/history"
	"github.com/matheus3301/campchat/internal/logging"
	"github.com/matheus3301/campchat/internal/origin"
	"github.com/matheus3301/campchat/internal/profile"
	"github.com/matheus3301/campchat/internal/rooms"
	"github.com/matheus3301/campchat/internal/socket"
	"github.com/matheus3301/campchat/internal/widget"
)

// Params holds the resolved console configuration passed to the fx module.
type Params struct {
	Active profile.Active
	// Binary names the log file. Empty disables logging.
	Binary string
	// Console also logs to stderr. Off for the TUI.
	Console bool
	Surface Surface
}

// Module returns the fx module for a console session.
func Module(p Params) fx.Option {
	return fx.Module("console",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideClient,
			provideDialer,
			provideBus,
			provideManager,
			provideLoader,
			provideRooms,
			provideWidget,
			newSession,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.Binary == "" {
		return zap.NewNop(), nil
	}
	if err := profile.EnsureDir(p.Active.Name); err != nil {
		return nil, err
	}
	return logging.New(profile.LogPath(p.Active.Name, p.Binary), p.Active.Name, p.Console)
}

func provideClient(p Params, logger *zap.Logger) (*origin.Client, error) {
	s := p.Active.Settings
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Active.Name, err)
	}
	return origin.NewClient(s.OriginURL, s.Token, nil, logger)
}

func provideDialer(p Params) (socket.Dialer, error) {
	return socket.NewDialer(p.Active.Settings.OriginURL, p.Active.Settings.Token)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideManager(d socket.Dialer, b *bus.Bus, logger *zap.Logger) *conn.Manager {
	return conn.NewManager(d, b, logger)
}

func provideLoader(c *origin.Client, logger *zap.Logger) *history.Loader {
	return history.NewLoader(c, logger)
}

func provideRooms(p Params, c *origin.Client, logger *zap.Logger) *rooms.List {
	return rooms.NewList(p.Active.Settings.AdminID, c, logger)
}

func provideWidget(p Params, m *conn.Manager, l *history.Loader, list *rooms.List, logger *zap.Logger) (*widget.Widget, error) {
	s := p.Active.Settings
	loc, err := s.Location()
	if err != nil {
		return nil, err
	}
	return widget.New(widget.Options{
		Conn:      m,
		Loader:    l,
		Scheduler: p.Surface.Scheduler(),
		Viewport:  p.Surface.Viewport(),
		Scroll:    p.Surface.ScrollOptions(),
		Rooms:     list,
		Location:  loc,
		PageSize:  s.Pages(),
		Render:    p.Surface.Render,
		Logger:    logger,
	}), nil
}

func registerLifecycle(lc fx.Lifecycle, s *Session, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.Widget.Mount(ctx); err != nil {
				return err
			}
			s.Reload(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Widget.Unmount()
			logger.Info("console stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
