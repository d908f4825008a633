package network

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// sendBuffer bounds the per-peer outbound queue. A peer that cannot drain
// its queue is dropped rather than blocking the broadcaster.
const sendBuffer = 256

// Peer is one connected gossip participant: its websocket, remote endpoint
// and a buffered outbound queue drained by a dedicated write pump. Messages
// from a single peer are handled in arrival order by its read pump.
type Peer struct {
	ID          string
	Address     string
	Port        int
	ConnectedAt time.Time

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newPeer(conn *websocket.Conn, address string, port int) *Peer {
	return &Peer{
		ID:          newPeerID(),
		Address:     address,
		Port:        port,
		ConnectedAt: time.Now(),
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
	}
}

// enqueue queues a raw message for delivery. Reports false when the peer's
// queue is full or the peer is shutting down.
func (p *Peer) enqueue(msg []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

// writePump drains the outbound queue onto the websocket until the peer
// closes or a write fails
func (p *Peer) writePump() {
	for {
		select {
		case msg := <-p.send:
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("peer write failed", "peer", p.ID, "err", err)
				return
			}
		case <-p.done:
			return
		}
	}
}

// close shuts down the pumps and the underlying connection. Safe to call
// more than once via the node's removePeer path.
func (p *Peer) close() {
	select {
	case <-p.done:
		return
	default:
		close(p.done)
	}
	p.conn.Close()
}

func newPeerID() string {
	id := make([]byte, 8)
	if _, err := rand.Read(id); err != nil {
		panic(err)
	}
	return hex.EncodeToString(id)
}
