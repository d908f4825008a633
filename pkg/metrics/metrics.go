// Package metrics collects node counters and gauges on a private Prometheus
// registry, exposed through the REST server's /metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the node's Prometheus collectors
type Metrics struct {
	BlocksMined         prometheus.Counter
	ChainHeight         prometheus.Gauge
	PendingTransactions prometheus.Gauge
	ConnectedPeers      prometheus.Gauge
	NetworkHashRate     prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers the node collectors
func New() *Metrics {
	m := &Metrics{
		BlocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keta_blocks_mined_total",
			Help: "Number of blocks mined by this node.",
		}),
		ChainHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keta_chain_height",
			Help: "Current number of blocks in the local chain.",
		}),
		PendingTransactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keta_pending_transactions",
			Help: "Number of transactions waiting in the pending pool.",
		}),
		ConnectedPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keta_connected_peers",
			Help: "Number of currently connected gossip peers.",
		}),
		NetworkHashRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keta_network_hashrate",
			Help: "Last observed network hash rate in hashes per second.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.BlocksMined,
		m.ChainHeight,
		m.PendingTransactions,
		m.ConnectedPeers,
		m.NetworkHashRate,
	)

	return m
}

// Handler returns the HTTP handler serving the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
