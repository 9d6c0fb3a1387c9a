// Package crypto seals task blobs written to the shared git store.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	// NonceSize is the AES-GCM nonce size.
	NonceSize = 12
	// KeySize is the AES-256 key size.
	KeySize = 32
	// MinPassphraseLen is the shortest secret accepted as a passphrase.
	MinPassphraseLen = 16

	cacheFileName = "seal-cache.json"
)

// magic prefixes every sealed blob so plaintext blobs written before
// encryption was enabled stay readable.
var magic = []byte("TCSEAL1\x00")

var (
	// ErrInvalidKey is returned for a key that is not 64 hex characters.
	ErrInvalidKey = errors.New("invalid encryption key: want 64 hex characters or a passphrase of at least 16 characters")
	// ErrDecryptionFailed is returned when a sealed blob does not open with the key.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or key")
)

// Sealer encrypts blobs with AES-256-GCM.
//
// Sealing the same plaintext twice returns the same bytes: the nonce is
// remembered per plaintext digest, so an unchanged task keeps its blob hash
// and the change feed stays quiet.
type Sealer struct {
	gcm      cipher.AEAD
	sealed   map[string][]byte // sha256(plaintext) -> sealed blob
	cacheDir string
	mu       sync.RWMutex
}

// KeyFromSecret turns a configured secret into an AES-256 key. A 64 character
// hex string is used as is; any other secret of at least MinPassphraseLen
// characters is stretched with Argon2id, salted with salt.
func KeyFromSecret(secret, salt string) ([]byte, error) {
	if key, err := hex.DecodeString(secret); err == nil && len(key) == KeySize {
		return key, nil
	}
	if len(secret) < MinPassphraseLen {
		return nil, ErrInvalidKey
	}
	s := sha256.Sum256([]byte("teamcal/seal:" + salt))
	return argon2.IDKey([]byte(secret), s[:], 1, 64*1024, 4, KeySize), nil
}

// NewSealer creates a Sealer for a KeySize key. cacheDir persists the nonce
// cache across runs; empty keeps it in memory.
func NewSealer(key []byte, cacheDir string) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	s := &Sealer{gcm: gcm, cacheDir: cacheDir, sealed: make(map[string][]byte)}
	if cacheDir != "" {
		_ = s.loadCache()
	}
	return s, nil
}

// Seal returns magic + nonce + ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	sum := sha256.Sum256(plaintext)
	digest := hex.EncodeToString(sum[:])

	s.mu.RLock()
	cached, ok := s.sealed[digest]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, len(magic)+NonceSize+len(plaintext)+s.gcm.Overhead())
	out = append(out, magic...)
	out = append(out, nonce...)
	out = s.gcm.Seal(out, nonce, plaintext, nil)

	s.mu.Lock()
	s.sealed[digest] = out
	s.mu.Unlock()
	if s.cacheDir != "" {
		_ = s.saveCache()
	}
	return out, nil
}

// Open reverses Seal. Blobs without the sealed prefix are returned unchanged.
func (s *Sealer) Open(blob []byte) ([]byte, error) {
	if !IsSealed(blob) {
		return blob, nil
	}
	body := blob[len(magic):]
	if len(body) < NonceSize {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := s.gcm.Open(nil, body[:NonceSize], body[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// IsSealed reports whether blob was produced by Seal.
func IsSealed(blob []byte) bool {
	return bytes.HasPrefix(blob, magic)
}

func (s *Sealer) loadCache() error {
	data, err := os.ReadFile(filepath.Join(s.cacheDir, cacheFileName))
	if err != nil {
		return err
	}
	var entries map[string][]byte
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for digest, blob := range entries {
		// Entries sealed under another key are useless and would poison Seal.
		if _, err := s.Open(blob); err == nil {
			s.sealed[digest] = blob
		}
	}
	return nil
}

func (s *Sealer) saveCache() error {
	if err := os.MkdirAll(s.cacheDir, 0o700); err != nil {
		return err
	}
	s.mu.RLock()
	data, err := json.Marshal(s.sealed)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.cacheDir, cacheFileName), data, 0o600)
}
