package entity

import "encoding/base64"

// Encoding is the base64 alphabet used for every key and signature on the wire.
var Encoding = base64.RawStdEncoding

// Binary is a byte string that travels as unpadded standard base64.
type Binary []byte

func (that Binary) MarshalText() ([]byte, error) {
	buf := make([]byte, Encoding.EncodedLen(len(that)))
	Encoding.Encode(buf, that)

	return buf, nil
}

func (that *Binary) UnmarshalText(text []byte) error {
	buf := make([]byte, Encoding.DecodedLen(len(text)))

	n, err := Encoding.Decode(buf, text)
	if err != nil {
		return err
	}

	*that = buf[:n]

	return nil
}
