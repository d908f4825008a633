package network

import (
	"encoding/json"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/pkg/errors"
)

// MessageType tags a gossip message. The set is closed: every handler
// switches over exactly these values and drops anything else.
type MessageType string

const (
	// MsgBlock carries a single freshly mined block
	MsgBlock MessageType = "BLOCK"

	// MsgTransaction carries a transaction for the pending pool
	MsgTransaction MessageType = "TRANSACTION"

	// MsgPeerDiscovery announces a peer's listening endpoint
	MsgPeerDiscovery MessageType = "PEER_DISCOVERY"

	// MsgChainRequest asks the receiver for its full chain
	MsgChainRequest MessageType = "CHAIN_REQUEST"

	// MsgChainResponse carries a full chain with its height and tip hash
	MsgChainResponse MessageType = "CHAIN_RESPONSE"

	// MsgHashRateUpdate carries the sender's observed network hash rate
	MsgHashRateUpdate MessageType = "HASHRATE_UPDATE"
)

// Envelope is the wire format for every gossip message: a type tag and an
// opaque JSON payload. Malformed envelopes and unknown types are logged and
// dropped, never fatal to the connection.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PeerDiscovery is the payload of MsgPeerDiscovery
type PeerDiscovery struct {
	NodeID  string `json:"nodeId"`
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// ChainResponse is the payload of MsgChainResponse
type ChainResponse struct {
	Chain  []*core.Block `json:"chain"`
	Height int           `json:"height"`
	Hash   string        `json:"hash"`
}

// HashRateUpdate is the payload of MsgHashRateUpdate
type HashRateUpdate struct {
	HashRate float64 `json:"hashRate"`
}

// NewEnvelope wraps a payload in a typed envelope
func NewEnvelope(t MessageType, payload any) (*Envelope, error) {
	env := &Envelope{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s payload", t)
		}
		env.Data = data
	}
	return env, nil
}

// Encode serializes the envelope for the wire
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a wire message
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decoding envelope")
	}
	return &env, nil
}

// hasValidBlockShape checks the structural fields a peer-sourced block must
// carry before it is considered at all
func hasValidBlockShape(block *core.Block) bool {
	return block != nil &&
		block.Hash != "" &&
		block.PrevHash != "" &&
		block.Transactions != nil &&
		block.Timestamp != 0
}
