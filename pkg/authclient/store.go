package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// TokenStore persists and retrieves the session's token pair. Implementations
// differ in what they are willing to write to durable storage.
type TokenStore interface {
	// GetTokens returns the stored pair, or false when no usable pair exists.
	GetTokens() (*TokenPair, bool)

	// SetTokens stores the pair, replacing any existing one.
	SetTokens(pair *TokenPair) error

	// RemoveTokens discards the stored pair. Removing when nothing is stored
	// is a no-op.
	RemoveTokens()

	// ExpiryBuffer is the store's default margin for proactive refresh: how
	// long before the access token's expiry the client should treat it as
	// already expired.
	ExpiryBuffer() time.Duration
}

// EncryptedFileStore persists the token pair to a file, sealed under a
// per-process ephemeral key. Suited to lower-trust environments where durable
// storage is readable by other software: a blob from a previous process is
// undecryptable garbage and gets discarded on first read.
type EncryptedFileStore struct {
	path   string
	sealer *sealer
	logger *slog.Logger
	mu     sync.Mutex
}

// NewEncryptedFileStore creates a store writing to path.
func NewEncryptedFileStore(path string, logger *slog.Logger) (*EncryptedFileStore, error) {
	s, err := newSealer()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	return &EncryptedFileStore{
		path:   path,
		sealer: s,
		logger: logger,
	}, nil
}

// GetTokens reads and decrypts the stored pair. Decrypt and parse failures
// never propagate: the corrupted blob is logged, discarded, and reported as
// "no tokens" so the session degrades to unauthenticated instead of crashing.
func (s *EncryptedFileStore) GetTokens() (*TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read token file", slog.Any("error", err))
		}
		return nil, false
	}

	plaintext, err := s.sealer.open(blob)
	if err != nil {
		s.logger.Warn("discarding undecryptable token blob", slog.Any("error", err))
		s.removeLocked()
		return nil, false
	}

	var pair TokenPair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		s.logger.Warn("discarding malformed token blob", slog.Any("error", err))
		s.removeLocked()
		return nil, false
	}

	return &pair, true
}

// SetTokens seals and writes the pair, replacing any existing blob.
func (s *EncryptedFileStore) SetTokens(pair *TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plaintext, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal token pair: %w", err)
	}

	blob, err := s.sealer.seal(plaintext)
	if err != nil {
		return fmt.Errorf("failed to seal token pair: %w", err)
	}

	if err := os.WriteFile(s.path, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// RemoveTokens deletes the stored blob.
func (s *EncryptedFileStore) RemoveTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked()
}

func (s *EncryptedFileStore) removeLocked() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove token file", slog.Any("error", err))
	}
}

// ExpiryBuffer returns the proactive-refresh buffer appropriate for this
// backend. The file backend runs in lower-trust environments with slower
// storage, so it refreshes well before expiry.
func (s *EncryptedFileStore) ExpiryBuffer() time.Duration {
	return 30 * time.Second
}
