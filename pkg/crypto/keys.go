package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const (
	// AddressLength is the total length of an encoded KTA address
	AddressLength = 51

	// AddressPrefix marks every KTA address
	AddressPrefix = "K"

	addressVersion   = 0x00
	addressBodyBytes = 22
	checksumBytes    = 2
)

// ErrInvalidAddressFormat is returned when an address fails structural or
// checksum validation.
var ErrInvalidAddressFormat = errors.New("invalid address format")

// GenerateKey generates a new secp256k1 key pair
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ethcrypto.GenerateKey()
}

// KeyToHex encodes a private key as a hex string
func KeyToHex(key *ecdsa.PrivateKey) string {
	return hex.EncodeToString(ethcrypto.FromECDSA(key))
}

// KeyFromHex decodes a private key from a hex string
func KeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decoding private key")
	}
	return key, nil
}

// AddressFromPubKey derives a KTA address from a public key. The address is
// the prefix "K" followed by the hex encoding of a version byte, a 22-byte
// truncated BLAKE3 hash of the uncompressed public key, and a 2-byte
// checksum over the version and hash.
func AddressFromPubKey(pub *ecdsa.PublicKey) string {
	pubBytes := ethcrypto.FromECDSAPub(pub)

	payload := make([]byte, 0, 1+addressBodyBytes+checksumBytes)
	payload = append(payload, addressVersion)
	payload = append(payload, Hash(pubBytes)[:addressBodyBytes]...)

	checksum := Hash(payload)[:checksumBytes]
	payload = append(payload, checksum...)

	return AddressPrefix + hex.EncodeToString(payload)
}

// AddressFromKey derives a KTA address from a private key
func AddressFromKey(key *ecdsa.PrivateKey) string {
	return AddressFromPubKey(&key.PublicKey)
}

// ValidateAddress checks the structure and checksum of a KTA address
func ValidateAddress(address string) error {
	if len(address) != AddressLength {
		return errors.Wrapf(ErrInvalidAddressFormat, "length %d", len(address))
	}
	if !strings.HasPrefix(address, AddressPrefix) {
		return errors.Wrap(ErrInvalidAddressFormat, "missing K prefix")
	}

	payload, err := hex.DecodeString(address[len(AddressPrefix):])
	if err != nil {
		return errors.Wrap(ErrInvalidAddressFormat, "not hex encoded")
	}
	if payload[0] != addressVersion {
		return errors.Wrap(ErrInvalidAddressFormat, "unknown version byte")
	}

	body := payload[:1+addressBodyBytes]
	checksum := payload[1+addressBodyBytes:]
	expected := Hash(body)[:checksumBytes]
	for i := range checksum {
		if checksum[i] != expected[i] {
			return errors.Wrap(ErrInvalidAddressFormat, "checksum mismatch")
		}
	}

	return nil
}

// Sign signs a 32-byte digest with the given private key and returns the
// signature hex-encoded
func Sign(key *ecdsa.PrivateKey, digest []byte) (string, error) {
	sig, err := ethcrypto.Sign(digest, key)
	if err != nil {
		return "", errors.Wrap(err, "signing digest")
	}
	return hex.EncodeToString(sig), nil
}
