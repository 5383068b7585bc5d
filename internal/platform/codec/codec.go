// Package codec registers a JSON codec for gRPC. Clients select it with
// grpc.CallContentSubtype(codec.Name), so messages are plain Go structs and
// no generated protobuf code is needed.
package codec

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

// Name is the content subtype: application/grpc+json.
const Name = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON implements encoding.Codec.
type JSON struct{}

func (JSON) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                               { return Name }

func init() {
	encoding.RegisterCodec(JSON{})
}
