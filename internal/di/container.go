// Package di wires repositories, clients, services, and jobs together.
// Construction order follows the dependency direction: databases, then
// clients, then repositories, then services, then jobs.
package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/clientdata"
	"github.com/jlmoreno/cartera/internal/clients/exchangerate"
	"github.com/jlmoreno/cartera/internal/clients/marketdata"
	"github.com/jlmoreno/cartera/internal/config"
	"github.com/jlmoreno/cartera/internal/database"
	"github.com/jlmoreno/cartera/internal/modules/cashflow"
	"github.com/jlmoreno/cartera/internal/modules/dividends"
	"github.com/jlmoreno/cartera/internal/modules/ledger"
	"github.com/jlmoreno/cartera/internal/modules/portfolio"
	"github.com/jlmoreno/cartera/internal/modules/users"
	"github.com/jlmoreno/cartera/internal/modules/valuation"
	"github.com/jlmoreno/cartera/internal/modules/watchlist"
	"github.com/jlmoreno/cartera/internal/reliability"
)

// Container holds every wired component.
type Container struct {
	Cfg *config.Config
	Log zerolog.Logger

	LedgerDB *database.DB
	CacheDB  *database.DB

	ClientData         *clientdata.Repository
	ExchangeRateClient *exchangerate.Client
	MarketDataClient   *marketdata.Client

	TradeRepo     *ledger.TradeRepository
	EntryRepo     *cashflow.EntryRepository
	CategoryRepo  *cashflow.CategoryRepository
	WatchlistRepo *watchlist.Repository
	UserRepo      *users.Repository
	SnapshotRepo  *valuation.SnapshotRepository

	PositionEngine   *portfolio.Engine
	PortfolioService *portfolio.Service
	CashflowService  *cashflow.Service
	ValuationService *valuation.Service
	WatchlistService *watchlist.Service
	DividendService  *dividends.Service
	StatsService     *users.StatsService

	CleanupJob *clientdata.CleanupJob
	BackupJob  *reliability.BackupJob // nil when backups are disabled
}

// Wire builds the full component graph.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{Cfg: cfg, Log: log}

	if err := c.wireDatabases(); err != nil {
		return nil, err
	}
	c.wireClients()
	c.wireRepositories()
	c.wireServices()
	if err := c.wireJobs(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) wireDatabases() error {
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(c.Cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := ledgerDB.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate ledger database: %w", err)
	}

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(c.Cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := cacheDB.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate cache database: %w", err)
	}

	c.LedgerDB = ledgerDB
	c.CacheDB = cacheDB
	return nil
}

func (c *Container) wireClients() {
	c.ClientData = clientdata.NewRepository(c.CacheDB.Conn())
	c.ExchangeRateClient = exchangerate.NewClient(
		c.Cfg.ExchangeRateBaseURL, c.ClientData, c.Cfg.FallbackRate, c.Log)
	c.MarketDataClient = marketdata.NewClient(c.Cfg.MarketDataBaseURL, c.ClientData, c.Log)
}

func (c *Container) wireRepositories() {
	c.TradeRepo = ledger.NewTradeRepository(c.LedgerDB.Conn(), c.Log)
	c.EntryRepo = cashflow.NewEntryRepository(c.LedgerDB.Conn(), c.Log)
	c.CategoryRepo = cashflow.NewCategoryRepository(c.LedgerDB.Conn(), c.Log)
	c.WatchlistRepo = watchlist.NewRepository(c.LedgerDB.Conn(), c.Log)
	c.UserRepo = users.NewRepository(c.LedgerDB.Conn(), c.Log)
	c.SnapshotRepo = valuation.NewSnapshotRepository(c.CacheDB.Conn(), c.Log)
}

func (c *Container) wireServices() {
	c.PositionEngine = portfolio.NewEngine(c.Log)
	c.PortfolioService = portfolio.NewService(c.TradeRepo, c.PositionEngine, c.Log)

	c.CashflowService = cashflow.NewService(
		c.EntryRepo, c.ExchangeRateClient,
		c.Cfg.PrimaryCurrency, c.Cfg.SecondaryCurrency, c.Log)

	c.ValuationService = valuation.NewService(
		c.PortfolioService, c.MarketDataClient, c.ExchangeRateClient,
		c.CashflowService, c.SnapshotRepo,
		c.Cfg.PrimaryCurrency, c.Cfg.SecondaryCurrency, c.Log)

	c.WatchlistService = watchlist.NewService(c.WatchlistRepo, c.MarketDataClient, c.Log)
	c.DividendService = dividends.NewService(c.PortfolioService, c.MarketDataClient, c.Log)
	c.StatsService = users.NewStatsService(
		c.UserRepo, c.TradeRepo, c.EntryRepo, c.WatchlistRepo, c.Log)
}

func (c *Container) wireJobs() error {
	c.CleanupJob = clientdata.NewCleanupJob(c.ClientData, c.Log)

	if !c.Cfg.Backup.Enabled {
		return nil
	}

	var storage *reliability.StorageClient
	if c.Cfg.Backup.Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		storage, err = reliability.NewStorageClient(ctx, c.Cfg.Backup, c.Log)
		if err != nil {
			return fmt.Errorf("failed to create backup storage client: %w", err)
		}
	}

	backupService := reliability.NewBackupService(
		[]*database.DB{c.LedgerDB, c.CacheDB},
		storage, c.Cfg.DataDir, c.Cfg.Backup.Keep, c.Log)
	c.BackupJob = reliability.NewBackupJob(backupService, c.Log)

	return nil
}

// Close releases database connections.
func (c *Container) Close() {
	if c.LedgerDB != nil {
		if err := c.LedgerDB.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("Failed to close ledger database")
		}
	}
	if c.CacheDB != nil {
		if err := c.CacheDB.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("Failed to close cache database")
		}
	}
}
