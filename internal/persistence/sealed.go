package persistence

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const sealedFormatVersion = 1

// ErrWrongPassphrase is returned when a sealed value cannot be opened,
// either because the passphrase differs or the ciphertext was modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted state")

// ErrScryptCost is returned when a stored value asks for a more expensive
// key derivation than the slot is configured with.
var ErrScryptCost = errors.New("sealed slot: key derivation cost exceeds configured limit")

// sealedBlob is the JSON envelope stored in the inner slot.
type sealedBlob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// SealedSlot encrypts values before handing them to another Slot. Each Set
// derives a fresh key from the passphrase and a random salt.
type SealedSlot struct {
	inner      Slot
	passphrase string
	n, r, p    int
}

var _ Slot = (*SealedSlot)(nil)

// SealedOption configures a SealedSlot.
type SealedOption func(*SealedSlot)

// WithScryptParams overrides the key derivation cost. Lower values are
// only suitable for tests.
func WithScryptParams(n, r, p int) SealedOption {
	return func(s *SealedSlot) {
		s.n, s.r, s.p = n, r, p
	}
}

// NewSealedSlot wraps inner so that everything stored through it is
// encrypted with passphrase.
func NewSealedSlot(inner Slot, passphrase string, opts ...SealedOption) (*SealedSlot, error) {
	if passphrase == "" {
		return nil, errors.New("sealed slot: passphrase is required")
	}
	s := &SealedSlot{inner: inner, passphrase: passphrase, n: 1 << 15, r: 8, p: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SealedSlot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.open(data)
}

func (s *SealedSlot) Set(ctx context.Context, key string, data []byte) error {
	sealed, err := s.seal(data)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedSlot) seal(raw []byte) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(s.passphrase), salt[:], s.n, s.r, s.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	// The key is unique per salt, so a fixed nonce is never reused.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(sealedBlob{
		V:      sealedFormatVersion,
		Salt:   salt[:],
		N:      s.n,
		R:      s.r,
		P:      s.p,
		Cipher: ct,
	})
}

func (s *SealedSlot) open(data []byte) ([]byte, error) {
	var bl sealedBlob
	if err := json.Unmarshal(data, &bl); err != nil {
		return nil, fmt.Errorf("sealed slot: %w", err)
	}
	if bl.V > sealedFormatVersion {
		return nil, fmt.Errorf("sealed slot: unsupported version %d", bl.V)
	}

	// The cost fields are read before the ciphertext is authenticated.
	if bl.N > s.n || bl.R > s.r || bl.P > s.p {
		return nil, fmt.Errorf("%w: N=%d r=%d p=%d", ErrScryptCost, bl.N, bl.R, bl.P)
	}

	key, err := scrypt.Key([]byte(s.passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
