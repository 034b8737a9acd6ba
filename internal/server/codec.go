package server

import (
	json "github.com/goccy/go-json"
	"google.golang.org/grpc/encoding"
)

// JSONCodecName is the gRPC content-subtype of the JSON codec
// (content-type application/grpc+json). Clients select it with
// grpc.CallContentSubtype(JSONCodecName).
const JSONCodecName = "json"

// jsonCodec carries plain Go structs over gRPC.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
