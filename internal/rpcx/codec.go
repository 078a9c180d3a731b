// Package rpcx registers the JSON wire codec used by the vault service.
// Messages are the plain structs from the contract package.
package rpcx

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the codec name and content subtype ("application/grpc+json").
const Name = "json"

// Codec marshals gRPC messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpcx: marshal %T: %w", v, err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpcx: unmarshal %T: %w", v, err)
	}
	return nil
}

func (Codec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(Codec{})
}
