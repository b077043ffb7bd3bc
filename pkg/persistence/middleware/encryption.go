package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/acheron/pkg/domain"
	"github.com/aretw0/acheron/pkg/ports"
)

// EncryptionConfig holds the AES-256 keys of the encryption middleware.
type EncryptionConfig struct {
	// ActiveKey seals every new record. Must be 32 bytes.
	ActiveKey []byte

	// FallbackKeys are retired keys still accepted when opening records,
	// so saves written before a rotation stay readable.
	FallbackKeys [][]byte
}

// envelope is what reaches the wrapped store. It stays valid JSON so file
// and redis stores hold the same shape as for plain records.
type envelope struct {
	Encrypted []byte `json:"__encrypted__"`
}

var errNoKeyOpens = errors.New("no configured key opens the record")

type encryptedStore struct {
	next    ports.KVStore
	seal    cipher.AEAD
	openers []cipher.AEAD
}

// NewEncryptionMiddleware seals record values with AES-GCM. It panics when a
// key is not 32 bytes long.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	active := mustAEAD(config.ActiveKey)
	openers := []cipher.AEAD{active}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			panic("fallback keys must be 32 bytes (AES-256)")
		}
		openers = append(openers, mustAEAD(k))
	}

	return func(next ports.KVStore) ports.KVStore {
		return &encryptedStore{next: next, seal: active, openers: openers}
	}
}

func mustAEAD(key []byte) cipher.AEAD {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}
	return aead
}

func (s *encryptedStore) Put(ctx context.Context, key string, value []byte) error {
	nonce := make([]byte, s.seal.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to encrypt record: %w", err)
	}
	data, err := json.Marshal(envelope{Encrypted: s.seal.Seal(nonce, nonce, value, []byte(key))})
	if err != nil {
		return err
	}
	return s.next.Put(ctx, key, data)
}

// Get returns domain.ErrCorruptRecord for values that are not envelopes or
// that no configured key can open, so callers treat them like unreadable saves.
func (s *encryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || len(env.Encrypted) == 0 {
		return nil, fmt.Errorf("%w: missing encrypted envelope", domain.ErrCorruptRecord)
	}
	plain, err := s.open(env.Encrypted, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptRecord, err)
	}
	return plain, nil
}

// open tries the active key first, then each fallback in order. The record
// key is bound as additional data, so a value copied under another key fails.
func (s *encryptedStore) open(sealed []byte, key string) ([]byte, error) {
	for _, aead := range s.openers {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, errors.New("ciphertext too short")
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], []byte(key)); err == nil {
			return plain, nil
		}
	}
	return nil, errNoKeyOpens
}

func (s *encryptedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

func (s *encryptedStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}
