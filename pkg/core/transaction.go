package core

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"math"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/pkg/errors"
)

// MaxDataSize bounds the opaque payload attached to a transaction
const MaxDataSize = 1024

// Transaction represents a transfer of value between two KTA addresses. A
// transaction with an empty From address is a mint: newly created value paid
// out as a mining reward. Mints are always valid and never carry a signature.
type Transaction struct {
	ID        string  `json:"id"`
	From      string  `json:"from,omitempty"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
	Data      string  `json:"data,omitempty"`
	Signature string  `json:"signature,omitempty"`
}

// NewTransaction creates a transfer from one address to another. Both
// addresses must pass format validation and the amount must be positive.
// The amount is rounded to two decimal places.
func NewTransaction(from, to string, amount float64, data string) (*Transaction, error) {
	if err := crypto.ValidateAddress(to); err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "to address %q", to)
	}
	if from != "" {
		if err := crypto.ValidateAddress(from); err != nil {
			return nil, errors.Wrapf(ErrInvalidAddress, "from address %q", from)
		}
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(data) > MaxDataSize {
		return nil, errors.Wrapf(ErrDataTooLarge, "%d bytes", len(data))
	}

	return &Transaction{
		ID:        newTransactionID(),
		From:      from,
		To:        to,
		Amount:    roundAmount(amount),
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}, nil
}

// NewRewardTransaction creates a mint transaction paying a mining reward.
// The reward address is taken as-is: rewards are created by the node itself,
// outside the pool admission path.
func NewRewardTransaction(to string, amount float64) *Transaction {
	return &Transaction{
		ID:        newTransactionID(),
		To:        to,
		Amount:    roundAmount(amount),
		Timestamp: time.Now().UnixMilli(),
	}
}

// Sign signs the transaction with the sender's private key. The key must
// derive to the transaction's From address.
func (tx *Transaction) Sign(key *ecdsa.PrivateKey) error {
	if key == nil {
		return ErrMissingKey
	}
	if tx.From != "" && crypto.AddressFromKey(key) != tx.From {
		return ErrKeyMismatch
	}

	signature, err := crypto.Sign(key, tx.SigningDigest())
	if err != nil {
		return err
	}

	tx.Signature = signature
	return nil
}

// SigningDigest returns the canonical message covered by the signature:
// from, to, amount, timestamp, data, in that order.
func (tx *Transaction) SigningDigest() []byte {
	return crypto.HashMultiple(
		[]byte(tx.From),
		[]byte(tx.To),
		float64ToBytes(tx.Amount),
		int64ToBytes(tx.Timestamp),
		[]byte(tx.Data),
	)
}

// IsValid reports whether the transaction is acceptable for a pool or block.
// Mints are always valid. Non-mint transactions only need a structurally
// present signature; the signature is not re-verified against the sender's
// public key here.
func (tx *Transaction) IsValid() error {
	if tx.From == "" {
		return nil
	}
	if tx.Signature == "" {
		return ErrUnsigned
	}
	return nil
}

// hashBytes returns the bytes a containing block feeds into its content
// hash. Covers every field that survives the JSON wire format so a receiving
// node recomputes the identical digest.
func (tx *Transaction) hashBytes() []byte {
	out := make([]byte, 0, 128)
	out = append(out, []byte(tx.ID)...)
	out = append(out, []byte(tx.From)...)
	out = append(out, []byte(tx.To)...)
	out = append(out, float64ToBytes(tx.Amount)...)
	out = append(out, int64ToBytes(tx.Timestamp)...)
	out = append(out, []byte(tx.Data)...)
	out = append(out, []byte(tx.Signature)...)
	return out
}

func newTransactionID() string {
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(id)
}

func roundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Helper functions to convert numeric fields to bytes for hashing
func uint64ToBytes(n uint64) []byte {
	b := make([]byte, 8)
	for i := uint64(0); i < 8; i++ {
		b[i] = byte(n >> (i * 8))
	}
	return b
}

func int64ToBytes(n int64) []byte {
	return uint64ToBytes(uint64(n))
}

func float64ToBytes(f float64) []byte {
	return uint64ToBytes(math.Float64bits(f))
}
