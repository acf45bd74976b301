package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec encodes plain Go message structs as JSON. It replaces connect's
// built-in "json" codec, which only accepts protobuf messages.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Codec returns the option that makes a client or handler speak this package's
// JSON wire format.
func Codec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
