package devorigin

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/lock"
	"github.com/matheus3301/campchat/internal/logging"
	"github.com/matheus3301/campchat/internal/profile"
	"github.com/matheus3301/campchat/internal/store"
)

// Params holds the resolved origin configuration passed to the fx module.
type Params struct {
	Profile string
	Addr    string
	Token   string
	Seed    bool
	// DataDir overrides the profile's origin directory; used by tests.
	DataDir string
}

func (p Params) dataDir() string {
	if p.DataDir != "" {
		return p.DataDir
	}
	return profile.OriginDir(p.Profile)
}

// Module returns the fx module for the development origin.
func Module(p Params) fx.Option {
	return fx.Module("devorigin",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideLock,
			provideStore,
			NewService,
			NewHub,
			provideRouter,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.DataDir != "" {
		return zap.NewNop(), nil
	}
	return logging.New(profile.LogPath(p.Profile, "campchat-origin"), p.Profile, true)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	l, err := lock.Acquire(p.dataDir())
	if err != nil {
		return nil, err
	}
	logger.Info("data dir locked", zap.String("path", l.Path()))
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := filepath.Join(p.dataDir(), "origin.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRouter(p Params, svc *Service, hub *Hub, logger *zap.Logger) http.Handler {
	return NewRouter(svc, hub, p.Token, logger)
}

func registerLifecycle(lc fx.Lifecycle, p Params, srv *Server, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if p.Seed {
				res, err := Seed(db, time.Now())
				if err != nil {
					return err
				}
				logger.Info("demo data",
					zap.String("campaign_id", res.CampaignID),
					zap.String("admin_id", res.AdminID),
					zap.Int("rooms", res.Rooms),
					zap.Int("messages", res.Messages),
					zap.Bool("already_seeded", res.Skipped))
			}
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("origin server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("origin stopped")
			return nil
		},
	})
}
