package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveRecord_JSON(t *testing.T) {
	t.Run("Signature travels as unpadded base64", func(t *testing.T) {
		// Given: a move whose signature length needs padding in std base64
		move := MoveRecord{Sequence: 1, Timestamp: 10, Column: 2, Signature: Binary{0xff, 0xfe}}

		// When: it is marshalled and read back
		raw, err := json.Marshal(move)
		require.NoError(t, err)

		var decoded MoveRecord
		require.NoError(t, json.Unmarshal(raw, &decoded))

		// Then: the signature has no padding and survives the trip
		assert.JSONEq(t, `{"sequence":1,"timestamp":10,"column":2,"signature":"//4"}`, string(raw))
		assert.Equal(t, move, decoded)
	})

	t.Run("Padded input is rejected", func(t *testing.T) {
		var decoded MoveRecord
		err := json.Unmarshal([]byte(`{"signature":"//4="}`), &decoded)

		require.Error(t, err)
	})
}
