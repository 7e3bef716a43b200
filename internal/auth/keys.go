package auth

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

var errKeyMismatch = errors.New("public half does not match the seed")

func EncodeKey(key []byte) string {
	return entity.Encoding.EncodeToString(key)
}

func ParsePublicKey(value string) (ed25519.PublicKey, error) {
	raw, err := entity.Encoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bad public key length %d", len(raw))
	}

	return ed25519.PublicKey(raw), nil
}

// ParsePrivateKey accepts either a 32 byte seed or a full 64 byte private key whose public
// half must be the one derived from its seed.
func ParsePrivateKey(value string) (ed25519.PrivateKey, error) {
	raw, err := entity.Encoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		key := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(key, raw) {
			return nil, errKeyMismatch
		}

		return key, nil
	default:
		return nil, fmt.Errorf("bad private key length %d", len(raw))
	}
}
