package adapter

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// Codec encodes ledger records to bytes and back
//
//go:generate mockgen -source=codec.go -destination=../mocks/codec.go -package=mocks -mock_names=Codec=MockCodec
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// CanonicalCodec encodes JSON in RFC 8785 canonical form so equal records
// always produce equal bytes
type CanonicalCodec struct{}

// NewCanonicalCodec creates a JSON codec with JCS canonicalization
func NewCanonicalCodec() Codec {
	return &CanonicalCodec{}
}

func (c *CanonicalCodec) Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(data)
}

func (c *CanonicalCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Canonicalize rewrites arbitrary JSON into its canonical form
func Canonicalize(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}
