// Package app wires the entity store and the query services from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/config"
	"github.com/Dencchi/f1-knowledge-base/internal/database"
	"github.com/Dencchi/f1-knowledge-base/internal/datasource"
	"github.com/Dencchi/f1-knowledge-base/internal/repository"
	"github.com/Dencchi/f1-knowledge-base/internal/search"
	"github.com/Dencchi/f1-knowledge-base/internal/service"
	"github.com/Dencchi/f1-knowledge-base/internal/standings"
)

// App holds every long-lived component of a process
type App struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *database.DB // nil for the in-memory store
	Repos  *repository.Repositories

	Aggregator *standings.Aggregator
	Builder    *standings.Builder
	Champions  *standings.ChampionResolver
	Lineups    *standings.LineupResolver
	Profiles   *standings.Profiles
	Search     *search.Engine

	clock standings.Clock
}

// Option customizes an App before its services are built
type Option func(*App)

// WithClock replaces the wall clock used by lineups and overviews
func WithClock(clock standings.Clock) Option {
	return func(a *App) { a.clock = clock }
}

// New opens the configured store and builds the services on top of it
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.UsesPostgres() {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.DB = db
		a.Repos = repos
		log.WithField("host", cfg.Database.Host).Info("Using PostgreSQL store")
	} else {
		store := repository.NewMemoryStore()
		if cfg.Store.Snapshot != "" {
			loaded, err := repository.LoadSnapshot(cfg.Store.Snapshot)
			if err != nil {
				return nil, fmt.Errorf("failed to load snapshot: %w", err)
			}
			store = loaded
		}
		a.Repos = repository.NewMemoryRepositories(store)
		log.WithField("snapshot", cfg.Store.Snapshot).Info("Using in-memory store")
	}

	a.build()
	return a, nil
}

// NewWithRepositories builds the services over an existing store
func NewWithRepositories(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger, opts ...Option) *App {
	a := &App{Config: cfg, Logger: log, Repos: repos}
	for _, opt := range opts {
		opt(a)
	}
	a.build()
	return a
}

func (a *App) build() {
	policy := standings.ReservePolicy{
		MinLeaderRaces: a.Config.Standings.Reserve.MinLeaderRaces,
		Ratio:          a.Config.Standings.Reserve.Ratio,
	}

	a.Aggregator = standings.NewAggregator(a.Repos.Result)
	a.Builder = standings.NewBuilder(a.Repos, a.Aggregator, a.Logger)
	a.Champions = standings.NewChampionResolver(a.Repos, a.Aggregator)
	a.Lineups = standings.NewLineupResolver(a.Repos, policy, a.clock, a.Logger)
	a.Profiles = standings.NewProfiles(a.Repos, a.Builder, a.Lineups, a.clock)
	a.Search = search.NewEngine(a.Repos, a.Champions, search.ConfigFrom(a.Config.Search), a.Logger)
}

// Importer builds the Jolpica import service over the app's store
func (a *App) Importer() (*service.ImportService, error) {
	source, err := datasource.NewFactory(a.Config.Import, a.Logger).Create(datasource.JolpicaSourceType)
	if err != nil {
		return nil, err
	}
	return service.NewImportService(source, a.Repos, nil, nil, a.Logger, a.Config.Import.PageSize), nil
}

// CurrentYear is the season assumed when a command is given none
func (a *App) CurrentYear() int {
	if a.clock != nil {
		return a.clock().UTC().Year()
	}
	return time.Now().UTC().Year()
}

// Close releases the database pool
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
