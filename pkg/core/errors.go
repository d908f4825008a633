package core

import "errors"

// Validation errors reported synchronously to the caller.
var (
	// ErrInvalidAddress indicates an address failed format validation
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount indicates a non-positive transaction amount at creation
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrDataTooLarge indicates a transaction payload over the size bound
	ErrDataTooLarge = errors.New("transaction data exceeds size limit")

	// ErrMissingKey indicates Sign was called without a signing key
	ErrMissingKey = errors.New("no signing key provided")

	// ErrKeyMismatch indicates the signing key does not belong to the sender
	ErrKeyMismatch = errors.New("signing key does not match sender address")

	// ErrUnsigned indicates an unsigned non-mint transaction
	ErrUnsigned = errors.New("transaction is not signed")
)

// Ledger errors for pool admission and chain mutation.
var (
	// ErrMissingAddress indicates a pool submission without both addresses
	ErrMissingAddress = errors.New("transaction must include from and to addresses")

	// ErrInvalidTransaction indicates a transaction that failed its validity check
	ErrInvalidTransaction = errors.New("cannot add invalid transaction to pool")

	// ErrNonPositiveAmount indicates a pool submission with amount <= 0
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")

	// ErrInsufficientBalance indicates the sender cannot cover the amount
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOutOfSequence indicates a block whose index is not the current height
	ErrOutOfSequence = errors.New("block index does not match chain height")

	// ErrChainTooShort indicates a candidate chain that is not strictly longer
	ErrChainTooShort = errors.New("candidate chain is not longer than current chain")

	// ErrNilBlock indicates a candidate chain containing a nil block entry
	ErrNilBlock = errors.New("candidate chain contains a nil block")
)

// ErrNonceOverflow is the liveness bound on a single mining attempt: the
// nonce counter exhausted its range without finding a solution. Fatal to the
// attempt, not to the process.
var ErrNonceOverflow = errors.New("nonce overflow during mining")
