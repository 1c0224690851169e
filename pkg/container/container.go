package container

import (
	"context"
	"fmt"
	"time"

	"bookshelf-backend/internal/config"
	entryHandler "bookshelf-backend/internal/domains/entry/handler"
	entryRepo "bookshelf-backend/internal/domains/entry/repository"
	entryService "bookshelf-backend/internal/domains/entry/service"
	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/internal/infrastructure/database"
	"bookshelf-backend/pkg/cache"

	"github.com/rs/zerolog/log"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application.
// Init order: config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	// Infrastructure (one instance per process)
	Config   *config.Config
	Postgres *database.PostgresDB // set when DB_DRIVER=postgres
	SQLite   *database.SQLiteDB   // set when DB_DRIVER=sqlite
	Cache    cache.Cache

	// Repository
	EntryRepo entryRepo.Repository

	// Service
	EntryService entryService.ServiceInterface

	// Handler
	EntryHandler *entryHandler.EntryHandler
}

// NewContainer loads the configuration from the environment and builds the graph.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig builds the dependency graph from an explicit config.
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Msg("Initializing DI container...")

	c := &Container{Config: cfg}

	if err := c.initStore(); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	c.initCache()

	c.EntryService = entryService.NewService(c.EntryRepo, c.Cache, cfg.Redis.ListTTL)
	c.EntryHandler = entryHandler.NewEntryHandler(c.EntryService, cfg.App.Name)

	log.Info().Str("driver", cfg.Database.Driver).Msg("DI container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbCfg := c.Config.Database

	switch dbCfg.Driver {
	case config.DriverSQLite:
		sqliteDB, err := database.OpenSQLite(dbCfg.SQLitePath)
		if err != nil {
			return err
		}
		c.SQLite = sqliteDB
		c.EntryRepo = entryRepo.NewSQLiteRepository(sqliteDB.DB, dbCfg.Table)
		log.Info().Str("path", dbCfg.SQLitePath).Msg("SQLite opened")

	default:
		pgCfg, err := config.LoadDatabaseConfig(dbCfg)
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		pg := database.NewPostgresDB(pgCfg)
		if err := pg.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.HealthCheck(ctx); err != nil {
			pg.Close()
			return fmt.Errorf("database health check failed: %w", err)
		}
		c.Postgres = pg
		c.EntryRepo = entryRepo.NewPostgresRepository(pg.Pool, dbCfg.Table)
		log.Info().Str("host", dbCfg.Host).Str("db", dbCfg.Database).Msg("PostgreSQL connected")
	}

	if dbCfg.AutoSchema {
		if err := c.EntryRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info().Str("table", dbCfg.Table).Msg("Schema ensured")
	}

	return nil
}

// initCache connects Redis when enabled. The cache is not critical:
// any failure falls back to the no-op cache.
func (c *Container) initCache() {
	c.Cache = infraCache.NewNoopCache()

	if !c.Config.Redis.Enabled {
		return
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Redis connection failed (non-critical), caching disabled")
		_ = rc.Close()
		return
	}
	c.Cache = rc
}

// Cleanup releases every resource. Called on shutdown.
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources...")

	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}

	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close SQLite")
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
}
