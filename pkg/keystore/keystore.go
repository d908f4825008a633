// Package keystore manages encrypted key files: one JSON file per key,
// AES-256-CTR with a PBKDF2-derived key and a BLAKE3 MAC over the
// ciphertext.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	ketacrypto "github.com/Ubaid-developer/keta-chain/pkg/crypto"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	kdfIterations = 262144
	kdfKeyLen     = 32
)

// ErrWrongPassword is returned when the MAC check fails on decryption
var ErrWrongPassword = errors.New("keystore: wrong password or corrupt key file")

// KeyStore manages encrypted key files in a directory
type KeyStore struct {
	keyDir string
}

type encryptedKey struct {
	Address string     `json:"address"`
	Crypto  cryptoBlob `json:"crypto"`
	Created string     `json:"created"`
}

type cryptoBlob struct {
	Cipher     string    `json:"cipher"`
	Ciphertext string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	KDF        string    `json:"kdf"`
	KDFParams  kdfParams `json:"kdfparams"`
	MAC        string    `json:"mac"`
}

type kdfParams struct {
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
	KeyLen     int    `json:"keylen"`
}

// NewKeyStore creates a keystore rooted at the given directory
func NewKeyStore(keyDir string) *KeyStore {
	return &KeyStore{keyDir: keyDir}
}

// StoreKey encrypts and stores a private key, returning the key file path
func (ks *KeyStore) StoreKey(privateKey *ecdsa.PrivateKey, password string) (string, error) {
	if err := os.MkdirAll(ks.keyDir, 0700); err != nil {
		return "", errors.Wrap(err, "creating keystore directory")
	}

	address := ketacrypto.AddressFromKey(privateKey)

	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	derived := pbkdf2.Key([]byte(password), salt, kdfIterations, kdfKeyLen, sha256.New)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return "", err
	}
	plaintext := ethcrypto.FromECDSA(privateKey)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)

	mac := ketacrypto.HashMultiple(derived[16:], ciphertext)

	key := encryptedKey{
		Address: address,
		Crypto: cryptoBlob{
			Cipher:     "aes-256-ctr",
			Ciphertext: hex.EncodeToString(ciphertext),
			IV:         hex.EncodeToString(iv),
			KDF:        "pbkdf2",
			KDFParams: kdfParams{
				Salt:       hex.EncodeToString(salt),
				Iterations: kdfIterations,
				KeyLen:     kdfKeyLen,
			},
			MAC: hex.EncodeToString(mac),
		},
		Created: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(&key, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(ks.keyDir, fmt.Sprintf("%s.json", address))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", errors.Wrap(err, "writing key file")
	}
	return path, nil
}

// LoadKey decrypts a private key from a key file
func (ks *KeyStore) LoadKey(path, password string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading key file")
	}

	var key encryptedKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, errors.Wrap(err, "decoding key file")
	}

	salt, err := hex.DecodeString(key.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "decoding salt")
	}
	iv, err := hex.DecodeString(key.Crypto.IV)
	if err != nil {
		return nil, errors.Wrap(err, "decoding iv")
	}
	ciphertext, err := hex.DecodeString(key.Crypto.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "decoding ciphertext")
	}

	iterations := key.Crypto.KDFParams.Iterations
	keyLen := key.Crypto.KDFParams.KeyLen
	if iterations <= 0 || keyLen <= 0 {
		return nil, errors.New("keystore: invalid kdf parameters")
	}

	derived := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)

	mac := ketacrypto.HashMultiple(derived[16:], ciphertext)
	if hex.EncodeToString(mac) != key.Crypto.MAC {
		return nil, ErrWrongPassword
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)

	privateKey, err := ethcrypto.ToECDSA(plaintext)
	if err != nil {
		return nil, errors.Wrap(err, "reconstructing private key")
	}
	return privateKey, nil
}

// KeyFilePath returns the expected key file path for an address
func (ks *KeyStore) KeyFilePath(address string) string {
	return filepath.Join(ks.keyDir, fmt.Sprintf("%s.json", address))
}
