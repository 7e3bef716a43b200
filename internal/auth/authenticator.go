// Package auth signs and verifies the messages two replicas exchange: moves, signed by the
// player making them, and the game setup, signed by the setup service.
package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

var errInvalidSignature = errors.New("invalid signature")

// Signer signs on behalf of one identity. Implementations may call out to a key-management
// facility; callers wait for Sign to return before processing the next move.
type Signer interface {
	Public() ed25519.PublicKey
	Sign(ctx context.Context, message []byte) ([]byte, error)
}

// KeySigner signs with a private key held in memory.
type KeySigner struct {
	key ed25519.PrivateKey
}

func NewKeySigner(key ed25519.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// GenerateKeySigner creates a signer around a fresh keypair.
func GenerateKeySigner() (*KeySigner, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	return NewKeySigner(key), nil
}

func (that *KeySigner) Public() ed25519.PublicKey {
	public, _ := that.key.Public().(ed25519.PublicKey)
	return public
}

func (that *KeySigner) Sign(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return ed25519.Sign(that.key, message), nil
}

// EncodeMove returns the canonical signed bytes of a move: "sequence:timestamp:column".
func EncodeMove(sequence uint32, timestamp uint64, column uint8) []byte {
	buf := make([]byte, 0, 32)
	buf = strconv.AppendUint(buf, uint64(sequence), 10)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, timestamp, 10)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, uint64(column), 10)

	return buf
}

// SignMove signs the canonical encoding of a move.
func SignMove(ctx context.Context, signer Signer, column uint8, sequence uint32, timestamp uint64) ([]byte, error) {
	signature, err := signer.Sign(ctx, EncodeMove(sequence, timestamp, column))
	if err != nil {
		return nil, fmt.Errorf("failed to sign move %d: %w", sequence, err)
	}

	return signature, nil
}

// VerifyMove checks record's signature against key. Any failure wraps ErrAuthentication.
func VerifyMove(record entity.MoveRecord, key ed25519.PublicKey) error {
	message := EncodeMove(record.Sequence, record.Timestamp, record.Column)
	if err := verify(key, message, record.Signature); err != nil {
		return fmt.Errorf("%w: move %d: %w", apperror.ErrAuthentication, record.Sequence, err)
	}

	return nil
}

// LocalSigns reports whether the local party signs the move with the given sequence.
// The starting player owns odd sequence numbers.
func LocalSigns(sequence uint32, startingIsLocal bool) bool {
	player := sequence % 2
	return (startingIsLocal && player == 1) || (!startingIsLocal && player == 0)
}

func verify(key ed25519.PublicKey, message, signature []byte) error {
	if len(key) != ed25519.PublicKeySize {
		return fmt.Errorf("bad public key length %d", len(key))
	}

	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("bad signature length %d", len(signature))
	}

	if !ed25519.Verify(key, message, signature) {
		return errInvalidSignature
	}

	return nil
}
