package rpcpb

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// codecName is registered with grpc's encoding package and forced on both
// the server (grpc.ForceServerCodec) and the client (grpc.ForceCodec) in
// place of the default protobuf codec. See DESIGN.md for why this module
// carries its own RPC types over gob instead of running a protobuf
// generator.
const codecName = "gob"

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// gobCodec implements google.golang.org/grpc/encoding.Codec by delegating
// to encoding/gob. Unlike the protobuf codec it has no reflection
// requirements on the message type beyond "has exported fields" — exactly
// what the plain structs in messages.go are.
type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string {
	return codecName
}

// Codec exposes the registered codec instance for callers (client dial
// options, server options) that need to force it explicitly.
func Codec() encoding.Codec {
	return gobCodec{}
}
