// Package node assembles one running node: configuration in, a wired set of
// components out. Everything is constructed once here and injected into its
// consumers; there is no ambient global state.
package node

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/db"
	"github.com/Ubaid-developer/keta-chain/pkg/metrics"
	"github.com/Ubaid-developer/keta-chain/pkg/miner"
	"github.com/Ubaid-developer/keta-chain/pkg/network"
	"github.com/Ubaid-developer/keta-chain/pkg/rpc"
	"github.com/Ubaid-developer/keta-chain/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Config carries everything a node needs at startup
type Config struct {
	DataDir      string
	DBBackend    string
	P2PPort      int
	APIPort      int
	Difficulty   int
	MiningReward float64
	MaxBlockTxs  int
	MineInterval time.Duration
	Peers        []string
}

// App is the application context: every long-lived component of one node
type App struct {
	Config  Config
	DB      db.Database
	Store   *store.ChainStore
	Ledger  *core.Ledger
	Gossip  *network.Node
	Miner   *miner.Miner
	API     *rpc.Server
	Metrics *metrics.Metrics
}

// New constructs and wires all components. A database that fails to open
// degrades to the in-memory backend with a logged warning rather than
// failing startup.
func New(cfg Config) (*App, error) {
	database, err := db.New(db.Type(cfg.DBBackend))
	if err != nil {
		slog.Warn("unknown database backend, using in-memory store", "backend", cfg.DBBackend)
		database = db.NewMemoryDB()
	}
	if err := database.Open(filepath.Join(cfg.DataDir, "chaindata")); err != nil {
		slog.Warn("opening database failed, falling back to in-memory store", "err", err)
		database = db.NewMemoryDB()
	}

	chainStore := store.New(database)
	collectors := metrics.New()
	ledger := core.NewLedger(cfg.Difficulty, cfg.MiningReward, cfg.MaxBlockTxs, chainStore)
	gossip := network.NewNode(cfg.P2PPort, ledger, collectors)
	mining := miner.New(ledger, gossip, collectors, cfg.MineInterval)
	api := rpc.NewServer(listenAddr(cfg.APIPort), ledger, gossip, mining, collectors)

	collectors.ChainHeight.Set(float64(ledger.Height()))
	collectors.PendingTransactions.Set(float64(len(ledger.Pending())))

	return &App{
		Config:  cfg,
		DB:      database,
		Store:   chainStore,
		Ledger:  ledger,
		Gossip:  gossip,
		Miner:   mining,
		API:     api,
		Metrics: collectors,
	}, nil
}

// Run starts the gossip listener and API server, dials the configured seed
// peers and blocks until the context is cancelled or a server fails
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Gossip.Start(ctx) })
	g.Go(func() error { return a.API.Start(ctx) })

	g.Go(func() error {
		// Give the listeners a moment before dialing out
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(500 * time.Millisecond):
		}
		for _, endpoint := range a.Config.Peers {
			address, port, err := splitEndpoint(endpoint)
			if err != nil {
				slog.Warn("skipping malformed peer endpoint", "endpoint", endpoint, "err", err)
				continue
			}
			if err := a.Gossip.Connect(address, port); err != nil {
				slog.Warn("seed peer dial failed", "endpoint", endpoint, "err", err)
			}
		}
		return nil
	})

	err := g.Wait()

	if stopErr := a.Miner.Stop(); stopErr != nil && stopErr != miner.ErrNotRunning {
		slog.Warn("stopping miner failed", "err", stopErr)
	}
	if closeErr := a.DB.Close(); closeErr != nil {
		slog.Warn("closing database failed", "err", closeErr)
	}

	return err
}
