package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

// EncodeSetup returns the canonical signed bytes of a setup: "seed:issuedAt:startingKey:secondKey",
// keys in unpadded base64.
func EncodeSetup(setup entity.GameSetup) []byte {
	buf := make([]byte, 0, 128)
	buf = strconv.AppendUint(buf, setup.SharedSeed, 10)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, setup.IssuedAt, 10)
	buf = append(buf, ':')
	buf = entity.Encoding.AppendEncode(buf, setup.StartingKey)
	buf = append(buf, ':')
	buf = entity.Encoding.AppendEncode(buf, setup.SecondKey)

	return buf
}

// SignSetup returns setup with its signature filled in. Both player keys must be set.
func SignSetup(ctx context.Context, signer Signer, setup entity.GameSetup) (entity.GameSetup, error) {
	if len(setup.StartingKey) != ed25519.PublicKeySize || len(setup.SecondKey) != ed25519.PublicKeySize {
		return entity.GameSetup{}, fmt.Errorf("%w: both player keys are required", apperror.ErrInvalidSetup)
	}

	if bytes.Equal(setup.StartingKey, setup.SecondKey) {
		return entity.GameSetup{}, apperror.ErrSameKeys
	}

	signature, err := signer.Sign(ctx, EncodeSetup(setup))
	if err != nil {
		return entity.GameSetup{}, fmt.Errorf("failed to sign setup: %w", err)
	}

	setup.SetupSignature = signature

	return setup, nil
}

// VerifySetup checks the setup signature against the setup service key.
func VerifySetup(setup entity.GameSetup, key ed25519.PublicKey) error {
	if err := verify(key, EncodeSetup(setup), setup.SetupSignature); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidSetup, err)
	}

	return nil
}

// VerifySetupFor checks the setup was issued to exactly these two players, in this order.
func VerifySetupFor(setup entity.GameSetup, key, startingKey, secondKey ed25519.PublicKey) error {
	if !bytes.Equal(setup.StartingKey, startingKey) || !bytes.Equal(setup.SecondKey, secondKey) {
		return fmt.Errorf("%w: setup was issued to other players", apperror.ErrInvalidSetup)
	}

	return VerifySetup(setup, key)
}
