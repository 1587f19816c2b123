package voxelize

import jsoniter "github.com/json-iterator/go"

// initPayloadJSON is the dedicated jsoniter config InitPayload is marshaled
// with: HTML escaping, sorted map keys, and validated raw messages. Wire
// field names come from the camelCase struct tags.
var initPayloadJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// InitPayload is the subset of WorldConfig published to newly connecting
// clients. Field names are camelCase on the wire for compatibility with
// existing client implementations.
type InitPayload struct {
	ChunkSize     int      `json:"chunkSize"`
	MaxHeight     int      `json:"maxHeight"`
	MaxLightLevel uint32   `json:"maxLightLevel"`
	MinChunk      [2]int32 `json:"minChunk"`
	MaxChunk      [2]int32 `json:"maxChunk"`
}

// Marshal serializes the payload using the camelCase-preserving codec.
func (p InitPayload) Marshal() ([]byte, error) {
	return initPayloadJSON.Marshal(p)
}
