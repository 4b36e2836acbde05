package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec encodes plain Go request and response structs as JSON. It
// replaces Connect's protobuf-only "json" codec on every handler and client.
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
