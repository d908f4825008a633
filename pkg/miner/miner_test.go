package miner

import (
	"testing"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStopLifecycle(t *testing.T) {
	ledger := core.NewLedger(1, 10, 10, nil)
	m := New(ledger, nil, nil, time.Hour)

	require.NoError(t, m.Start("Kaddr1"))

	status := m.Status()
	assert.True(t, status.Running)
	assert.Equal(t, "Kaddr1", status.RewardAddress)

	assert.ErrorIs(t, m.Start("Kaddr1"), ErrAlreadyRunning)

	require.NoError(t, m.Stop())
	assert.False(t, m.Status().Running)

	assert.ErrorIs(t, m.Stop(), ErrNotRunning)
}

func TestMinerRestartsAfterStop(t *testing.T) {
	ledger := core.NewLedger(1, 10, 10, nil)
	m := New(ledger, nil, nil, time.Hour)

	require.NoError(t, m.Start("Kaddr1"))
	require.NoError(t, m.Stop())
	require.NoError(t, m.Start("Kaddr2"))

	assert.Equal(t, "Kaddr2", m.Status().RewardAddress)
	require.NoError(t, m.Stop())
}

func TestMinerProducesBlocks(t *testing.T) {
	ledger := core.NewLedger(1, 10, 10, nil)
	m := New(ledger, nil, nil, 10*time.Millisecond)

	require.NoError(t, m.Start("Kaddr1"))
	defer m.Stop()

	require.Eventually(t, func() bool {
		return ledger.Height() >= 3
	}, 5*time.Second, 10*time.Millisecond)

	status := m.Status()
	assert.GreaterOrEqual(t, status.BlocksMined, uint64(2))
	assert.Greater(t, ledger.GetBalance("Kaddr1"), 0.0)
	assert.True(t, ledger.IsChainValid())
}

func TestStopWaitsForLoopExit(t *testing.T) {
	ledger := core.NewLedger(1, 10, 10, nil)
	m := New(ledger, nil, nil, 10*time.Millisecond)

	require.NoError(t, m.Start("Kaddr1"))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, m.Stop())

	height := ledger.Height()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, height, ledger.Height(), "no mining after Stop returns")
}

func TestDefaultInterval(t *testing.T) {
	ledger := core.NewLedger(1, 10, 10, nil)
	m := New(ledger, nil, nil, 0)
	assert.Equal(t, DefaultInterval, m.interval)
}
