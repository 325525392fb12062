package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// KeySize is the key length required for AES-256.
const KeySize = 32

// ErrNotSealed is returned by an encrypting store for a snapshot that was
// saved without encryption.
var ErrNotSealed = errors.New("snapshot is missing its encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey seals every new snapshot. Must be KeySize bytes.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a
	// snapshot, so keys can rotate without dropping live sessions.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next ports.StateStore
	// keys[0] seals; all of them open.
	keys []cipher.AEAD
}

// NewEncryptionMiddleware creates a middleware that seals snapshots with
// AES-GCM. The wrapped store only ever sees an envelope snapshot carrying
// the ciphertext and the update time. The session ID is bound as additional
// data, so an envelope copied to another session does not open.
//
// It panics when a key is not KeySize bytes long.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	keys := make([]cipher.AEAD, 0, 1+len(config.FallbackKeys))
	for i, key := range append([][]byte{config.ActiveKey}, config.FallbackKeys...) {
		aead, err := newGCM(key)
		if err != nil {
			panic(fmt.Sprintf("encryption key %d: %v", i, err))
		}
		keys = append(keys, aead)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, keys: keys}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, snap *domain.StateSnapshot) error {
	plain, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	aead := m.keys[0]
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to encrypt snapshot: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plain, []byte(sessionID))

	// UpdatedAt stays visible so stores can still expire or sort sessions.
	return m.next.Save(ctx, sessionID, &domain.StateSnapshot{
		UpdatedAt: snap.UpdatedAt,
		Sealed:    base64.StdEncoding.EncodeToString(sealed),
	})
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.StateSnapshot, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if envelope.Sealed == "" {
		return nil, ErrNotSealed
	}

	sealed, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	plain, err := m.open(sealed, []byte(sessionID))
	if err != nil {
		return nil, err
	}

	var snap domain.StateSnapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted snapshot: %w", err)
	}
	return &snap, nil
}

func (m *encryptionMiddleware) open(sealed, sessionID []byte) ([]byte, error) {
	for _, aead := range m.keys {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, errors.New("ciphertext too short")
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], sessionID); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("failed to decrypt snapshot with any key")
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("want %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
