// Package api defines the GameService wire surface: messages, procedure
// names, and Connect handler/client constructors.
//
// Messages are plain Go structs carried by a JSON codec, so the same
// procedures are reachable from browsers with a plain fetch and from Go with
// the generated-style client below.
package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is the Connect codec name. Requests use Content-Type
// application/json (unary) or application/connect+json (streaming).
const CodecName = "json"

// Codec marshals messages as JSON. It replaces Connect's protobuf-only JSON
// codec on both handler and client.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
