// Package miner runs the background mining job: on an interval it drains
// pending transactions into a block, performs the proof-of-work search and
// broadcasts the result to the gossip layer.
package miner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/metrics"
	"github.com/Ubaid-developer/keta-chain/pkg/network"
	"github.com/pkg/errors"
)

// DefaultInterval is the pause between consecutive mining attempts
const DefaultInterval = 5 * time.Second

// ErrAlreadyRunning is returned by Start when a mining job is active
var ErrAlreadyRunning = errors.New("miner already running")

// ErrNotRunning is returned by Stop when no mining job is active
var ErrNotRunning = errors.New("miner not running")

// Status is a snapshot of the mining job
type Status struct {
	Running       bool    `json:"running"`
	RewardAddress string  `json:"rewardAddress,omitempty"`
	BlocksMined   uint64  `json:"blocksMined"`
	HashRate      float64 `json:"hashRate"`
}

// Miner owns the cancellable background mining job. Stopping the job aborts
// an in-flight nonce search; only fully mined blocks ever reach the chain.
type Miner struct {
	ledger   *core.Ledger
	node     *network.Node
	metrics  *metrics.Metrics
	interval time.Duration

	mu            sync.Mutex
	cancel        context.CancelFunc
	done          chan struct{}
	rewardAddress string
	blocksMined   uint64
	hashRate      float64
}

// New creates a miner over the given ledger and gossip node. Metrics may be
// nil when no collector is wired.
func New(ledger *core.Ledger, node *network.Node, m *metrics.Metrics, interval time.Duration) *Miner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Miner{
		ledger:   ledger,
		node:     node,
		metrics:  m,
		interval: interval,
	}
}

// Start launches the background job paying rewards to the given address
func (m *Miner) Start(rewardAddress string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.rewardAddress = rewardAddress

	go m.loop(ctx, rewardAddress, m.done)
	slog.Info("miner started", "rewardAddress", rewardAddress, "interval", m.interval)
	return nil
}

// Stop cancels the running job, aborting any in-flight nonce search, and
// waits for the loop to exit
func (m *Miner) Stop() error {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return ErrNotRunning
	}
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	cancel()
	<-done
	slog.Info("miner stopped")
	return nil
}

// Status reports the current job state
func (m *Miner) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Running:       m.cancel != nil,
		RewardAddress: m.rewardAddress,
		BlocksMined:   m.blocksMined,
		HashRate:      m.hashRate,
	}
}

func (m *Miner) loop(ctx context.Context, rewardAddress string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mineOnce(ctx, rewardAddress)
		}
	}
}

// mineOnce performs a single mining attempt. A cancelled search exits
// quietly; a nonce overflow is fatal to this attempt only.
func (m *Miner) mineOnce(ctx context.Context, rewardAddress string) {
	start := time.Now()

	block, attempts, err := m.ledger.MinePendingTransactions(ctx, rewardAddress)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("mining attempt failed", "err", err)
		return
	}

	elapsed := time.Since(start).Seconds()
	rate := float64(attempts)
	if elapsed > 0 {
		rate = float64(attempts) / elapsed
	}

	m.mu.Lock()
	m.blocksMined++
	m.hashRate = rate
	mined := m.blocksMined
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.BlocksMined.Inc()
		m.metrics.ChainHeight.Set(float64(m.ledger.Height()))
		m.metrics.PendingTransactions.Set(float64(len(m.ledger.Pending())))
	}

	slog.Info("mined block",
		"index", block.Index,
		"hash", block.Hash,
		"transactions", len(block.Transactions),
		"attempts", attempts,
		"blocksMined", mined,
	)

	if m.node != nil {
		m.node.BroadcastBlock(block)
		m.node.BroadcastHashRate(rate)
	}
}
