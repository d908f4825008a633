// Package network implements the gossip layer: a set of bidirectional
// websocket peers exchanging typed JSON envelopes to propagate blocks and
// transactions and to keep chains in sync under the longest-chain rule.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/metrics"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Node maintains the peer set and the message dispatch for one gossip
// participant. It holds a non-owning reference to the ledger and requests
// all chain mutation through the ledger's operations.
type Node struct {
	id      string
	port    int
	ledger  *core.Ledger
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
	server   *http.Server

	mu       sync.RWMutex
	peers    map[string]*Peer
	dialed   map[string]string // "host:port" -> peer id for outbound connections
	hashRate float64
}

// NewNode creates a gossip node listening on the given port. Metrics may be
// nil when no collector is wired.
func NewNode(port int, ledger *core.Ledger, m *metrics.Metrics) *Node {
	return &Node{
		id:      newPeerID(),
		port:    port,
		ledger:  ledger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		peers:  make(map[string]*Peer),
		dialed: make(map[string]string),
	}
}

// ID returns the stable node identifier
func (n *Node) ID() string { return n.id }

// Port returns the listening port
func (n *Node) Port() int { return n.port }

// Start serves the websocket endpoint until the context is cancelled
func (n *Node) Start(ctx context.Context) error {
	router := http.NewServeMux()
	router.HandleFunc("/ws", n.handleUpgrade)

	n.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", n.port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n.server.Shutdown(shutdownCtx)
		n.closeAllPeers()
	}()

	slog.Info("gossip node listening", "node", n.id, "port", n.port)
	if err := n.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "gossip listener")
	}
	return nil
}

// Connect dials an outbound peer at host:port. Dialing an endpoint this
// node already dialed is a no-op.
func (n *Node) Connect(address string, port int) error {
	endpoint := net.JoinHostPort(address, strconv.Itoa(port))

	n.mu.RLock()
	_, known := n.dialed[endpoint]
	n.mu.RUnlock()
	if known {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+endpoint+"/ws", nil)
	if err != nil {
		return errors.Wrapf(err, "dialing peer %s", endpoint)
	}

	peer := newPeer(conn, address, port)

	n.mu.Lock()
	n.dialed[endpoint] = peer.ID
	n.mu.Unlock()

	n.registerPeer(peer)
	slog.Info("connected to peer", "node", n.id, "peer", peer.ID, "endpoint", endpoint)
	return nil
}

func (n *Node) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := n.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}

	host, portStr, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		slog.Debug("parsing peer remote address failed", "remote", r.RemoteAddr, "err", err)
	}
	port, _ := strconv.Atoi(portStr)

	peer := newPeer(conn, host, port)
	n.registerPeer(peer)
	slog.Info("peer connected", "node", n.id, "peer", peer.ID, "remote", r.RemoteAddr)
}

// registerPeer records the peer, starts its pumps, sends it the current
// chain and announces it to every other peer so the network can mesh.
// Inbound and outbound connections are treated identically from here on.
func (n *Node) registerPeer(peer *Peer) {
	n.mu.Lock()
	n.peers[peer.ID] = peer
	peerCount := len(n.peers)
	n.mu.Unlock()

	if n.metrics != nil {
		n.metrics.ConnectedPeers.Set(float64(peerCount))
	}

	go peer.writePump()
	go n.readPump(peer)

	n.sendToPeer(peer, MsgChainResponse, n.chainResponse())

	// For inbound peers the recorded port is the remote ephemeral port,
	// not the peer's listening port, so announcements for them can name an
	// endpoint nothing is listening on. Receivers treat a failed discovery
	// dial as fire-and-forget; only outbound endpoints mesh reliably.
	discovery := &PeerDiscovery{NodeID: n.id, Address: peer.Address, Port: peer.Port}
	n.broadcast(MsgPeerDiscovery, discovery, peer.ID)
}

// readPump handles messages from one peer in arrival order until the
// connection errors, then removes the peer. No retry or backoff.
func (n *Node) readPump(peer *Peer) {
	defer n.removePeer(peer)

	for {
		_, raw, err := peer.conn.ReadMessage()
		if err != nil {
			slog.Debug("peer read ended", "peer", peer.ID, "err", err)
			return
		}
		n.handleMessage(peer, raw)
	}
}

// handleMessage dispatches one envelope. Handler failures never tear down
// the connection: the offending unit is dropped and logged.
func (n *Node) handleMessage(peer *Peer, raw []byte) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		slog.Warn("dropping malformed envelope", "peer", peer.ID, "err", err)
		return
	}

	switch env.Type {
	case MsgBlock:
		n.handleBlock(peer, env.Data)
	case MsgTransaction:
		n.handleTransaction(peer, env.Data)
	case MsgPeerDiscovery:
		n.handlePeerDiscovery(env.Data)
	case MsgChainRequest:
		n.sendToPeer(peer, MsgChainResponse, n.chainResponse())
	case MsgChainResponse:
		n.handleChainResponse(env.Data)
	case MsgHashRateUpdate:
		n.handleHashRateUpdate(env.Data)
	default:
		slog.Warn("dropping unknown message type", "peer", peer.ID, "type", env.Type)
	}
}

// handleBlock appends a well-shaped block that extends the local chain and
// relays it to every peer except its origin. Anything else is dropped.
func (n *Node) handleBlock(from *Peer, data json.RawMessage) {
	var block core.Block
	if err := json.Unmarshal(data, &block); err != nil {
		slog.Warn("dropping undecodable block", "peer", from.ID, "err", err)
		return
	}
	if !hasValidBlockShape(&block) {
		slog.Warn("dropping malformed block", "peer", from.ID, "index", block.Index)
		return
	}

	if err := n.ledger.AppendBlock(&block); err != nil {
		slog.Debug("dropping block", "peer", from.ID, "index", block.Index, "err", err)
		return
	}

	if n.metrics != nil {
		n.metrics.ChainHeight.Set(float64(n.ledger.Height()))
	}
	slog.Info("accepted block from peer", "peer", from.ID, "index", block.Index, "hash", block.Hash)
	n.broadcast(MsgBlock, &block, from.ID)
}

// handleTransaction admits a transaction to the pool and relays it on
// success. Admission failures are logged, never sent back to the peer.
func (n *Node) handleTransaction(from *Peer, data json.RawMessage) {
	var tx core.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		slog.Warn("dropping undecodable transaction", "peer", from.ID, "err", err)
		return
	}

	if err := n.ledger.AddTransaction(&tx); err != nil {
		slog.Debug("dropping transaction", "peer", from.ID, "tx", tx.ID, "err", err)
		return
	}

	if n.metrics != nil {
		n.metrics.PendingTransactions.Set(float64(len(n.ledger.Pending())))
	}
	n.broadcast(MsgTransaction, &tx, from.ID)
}

// handlePeerDiscovery dials an announced endpoint unless it is this node's
// own port or an endpoint already connected
func (n *Node) handlePeerDiscovery(data json.RawMessage) {
	var pd PeerDiscovery
	if err := json.Unmarshal(data, &pd); err != nil {
		slog.Warn("dropping undecodable peer discovery", "err", err)
		return
	}

	if pd.Port == n.port || pd.Address == "" || pd.Port == 0 {
		return
	}
	if n.connectedTo(pd.Address, pd.Port) {
		return
	}

	if err := n.Connect(pd.Address, pd.Port); err != nil {
		slog.Debug("peer discovery dial failed", "address", pd.Address, "port", pd.Port, "err", err)
	}
}

// handleChainResponse replaces the local chain when the peer's is strictly
// longer. The candidate is accepted on length alone.
func (n *Node) handleChainResponse(data json.RawMessage) {
	var cr ChainResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		slog.Warn("dropping undecodable chain response", "err", err)
		return
	}

	if cr.Height <= n.ledger.Height() {
		return
	}

	if err := n.ledger.ReplaceChain(cr.Chain); err != nil {
		slog.Debug("chain replacement rejected", "height", cr.Height, "err", err)
		return
	}

	if n.metrics != nil {
		n.metrics.ChainHeight.Set(float64(n.ledger.Height()))
	}
	slog.Info("replaced chain from peer", "height", cr.Height, "tip", cr.Hash)
}

// handleHashRateUpdate overwrites the tracked network hash rate gauge,
// last write wins
func (n *Node) handleHashRateUpdate(data json.RawMessage) {
	var hr HashRateUpdate
	if err := json.Unmarshal(data, &hr); err != nil {
		slog.Warn("dropping undecodable hash rate update", "err", err)
		return
	}
	n.setHashRate(hr.HashRate)
}

// BroadcastBlock announces a locally mined block to every peer
func (n *Node) BroadcastBlock(block *core.Block) {
	n.broadcast(MsgBlock, block, "")
}

// BroadcastTransaction announces a locally submitted transaction to every peer
func (n *Node) BroadcastTransaction(tx *core.Transaction) {
	n.broadcast(MsgTransaction, tx, "")
}

// BroadcastHashRate records the locally estimated hash rate and announces it
func (n *Node) BroadcastHashRate(rate float64) {
	n.setHashRate(rate)
	n.broadcast(MsgHashRateUpdate, &HashRateUpdate{HashRate: rate}, "")
}

// RequestChain asks every peer for its full chain
func (n *Node) RequestChain() {
	n.broadcast(MsgChainRequest, nil, "")
}

// HashRate returns the last observed network hash rate
func (n *Node) HashRate() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.hashRate
}

// PeerInfo describes one connected peer for introspection
type PeerInfo struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	Port        int       `json:"port"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Peers lists the currently connected peers
func (n *Node) Peers() []PeerInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]PeerInfo, 0, len(n.peers))
	for _, p := range n.peers {
		out = append(out, PeerInfo{
			ID:          p.ID,
			Address:     p.Address,
			Port:        p.Port,
			ConnectedAt: p.ConnectedAt,
		})
	}
	return out
}

// broadcast sends a message to every connected peer except the excluded
// one, typically the message's origin. This suppresses trivial echo loops
// only; it is not full duplicate suppression.
func (n *Node) broadcast(t MessageType, payload any, excludePeerID string) {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		slog.Error("encoding broadcast failed", "type", t, "err", err)
		return
	}
	raw, err := env.Encode()
	if err != nil {
		slog.Error("encoding broadcast failed", "type", t, "err", err)
		return
	}

	n.mu.RLock()
	targets := make([]*Peer, 0, len(n.peers))
	for id, p := range n.peers {
		if id != excludePeerID {
			targets = append(targets, p)
		}
	}
	n.mu.RUnlock()

	for _, p := range targets {
		if !p.enqueue(raw) {
			slog.Warn("peer send queue full, dropping peer", "peer", p.ID)
			n.removePeer(p)
		}
	}
}

func (n *Node) sendToPeer(peer *Peer, t MessageType, payload any) {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		slog.Error("encoding message failed", "type", t, "err", err)
		return
	}
	raw, err := env.Encode()
	if err != nil {
		slog.Error("encoding message failed", "type", t, "err", err)
		return
	}
	if !peer.enqueue(raw) {
		slog.Warn("peer send queue full, dropping peer", "peer", peer.ID)
		n.removePeer(peer)
	}
}

// chainResponse snapshots the local chain for CHAIN_REQUEST replies and
// new-peer greetings
func (n *Node) chainResponse() *ChainResponse {
	chain := n.ledger.Chain()
	return &ChainResponse{
		Chain:  chain,
		Height: len(chain),
		Hash:   chain[len(chain)-1].Hash,
	}
}

func (n *Node) connectedTo(address string, port int) bool {
	endpoint := net.JoinHostPort(address, strconv.Itoa(port))

	n.mu.RLock()
	defer n.mu.RUnlock()

	if _, ok := n.dialed[endpoint]; ok {
		return true
	}
	for _, p := range n.peers {
		if p.Address == address && p.Port == port {
			return true
		}
	}
	return false
}

func (n *Node) setHashRate(rate float64) {
	n.mu.Lock()
	n.hashRate = rate
	n.mu.Unlock()

	if n.metrics != nil {
		n.metrics.NetworkHashRate.Set(rate)
	}
}

func (n *Node) removePeer(peer *Peer) {
	n.mu.Lock()
	if _, ok := n.peers[peer.ID]; !ok {
		n.mu.Unlock()
		return
	}
	delete(n.peers, peer.ID)
	for endpoint, id := range n.dialed {
		if id == peer.ID {
			delete(n.dialed, endpoint)
		}
	}
	peerCount := len(n.peers)
	n.mu.Unlock()

	peer.close()
	if n.metrics != nil {
		n.metrics.ConnectedPeers.Set(float64(peerCount))
	}
	slog.Info("peer removed", "node", n.id, "peer", peer.ID)
}

func (n *Node) closeAllPeers() {
	n.mu.Lock()
	peers := make([]*Peer, 0, len(n.peers))
	for _, p := range n.peers {
		peers = append(peers, p)
	}
	n.peers = make(map[string]*Peer)
	n.dialed = make(map[string]string)
	n.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
}
