package main

import (
	"context"
	"fmt"

	"github.com/smallnest/talentsearch/agent"
	"github.com/smallnest/talentsearch/config"
	"github.com/smallnest/talentsearch/log"
	"github.com/smallnest/talentsearch/metrics"
	"github.com/smallnest/talentsearch/oracle"
	"github.com/smallnest/talentsearch/search"
	"github.com/smallnest/talentsearch/session"
	"github.com/smallnest/talentsearch/session/memory"
	"github.com/smallnest/talentsearch/session/postgres"
	"github.com/smallnest/talentsearch/session/redis"
	"github.com/smallnest/talentsearch/session/sqlite"
)

// app holds the explicitly constructed services shared by the commands.
type app struct {
	cfg     *config.Config
	logger  log.Logger
	metrics *metrics.Metrics
	store   session.Store
	agent   *agent.Agent
	service *agent.Service
}

// openStore opens the configured session backend.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	var (
		backend session.Backend
		err     error
	)
	sc := cfg.Store
	switch sc.Driver {
	case config.DriverMemory:
		backend = memory.New(memory.Options{})
	case config.DriverRedis:
		backend = redis.New(redis.Options{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
		})
	case config.DriverPostgres:
		backend, err = postgres.New(ctx, postgres.Options{ConnString: sc.DatabaseURL, TableName: sc.TableName})
	case config.DriverSQLite:
		backend, err = sqlite.New(sqlite.Options{Path: sc.SQLitePath, TableName: sc.TableName})
	default:
		err = fmt.Errorf("unknown store driver %q", sc.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s session store: %w", sc.Driver, err)
	}
	return session.NewManager(backend), nil
}

func newApp(ctx context.Context, cfg *config.Config, logger log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New("talentsearch")}

	var o oracle.Oracle
	if cfg.HasOracle() {
		var err error
		o, err = oracle.New(cfg.OracleSettings())
		if err != nil {
			return nil, err
		}
		logger.Info("oracle: %s/%s", cfg.Oracle.Provider, cfg.Oracle.Model)
	} else {
		logger.Warn("oracle: OPENAI_API_KEY not set, replies use built-in fallbacks")
	}

	searcher, err := search.New(cfg.SearchSettings())
	if err != nil {
		return nil, err
	}

	a.store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.agent, err = agent.New(o, searcher,
		agent.WithLogger(logger),
		agent.WithMetrics(a.metrics),
		agent.WithTurnTimeout(cfg.Agent.TurnTimeout),
	)
	if err != nil {
		_ = a.store.Close()
		return nil, err
	}
	a.service = agent.NewService(a.agent, a.store, agent.WithServiceLogger(logger))
	a.metrics.TrackActiveTurns(a.service.ActiveTurns)
	return a, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
