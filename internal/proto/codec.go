package proto

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encode renders v, which must marshal to a JSON object, as a Struct.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}

// Decode fills dst from s using dst's json tags. A nil Struct decodes as an
// empty object.
func Decode(s *structpb.Struct, dst any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
