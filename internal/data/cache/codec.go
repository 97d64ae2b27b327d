package cache

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"

	"lattice/internal/core/errors"
)

// Codec serializes snapshots. Plain keeps the file human readable; zstd
// trades that for size on large graphs.
type Codec interface {
	Name() string
	Encode(Snapshot) ([]byte, error)
	Decode([]byte) (Snapshot, error)
}

// NewCodec maps a config value onto a codec. Empty means plain.
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", "plain", "json":
		return plainCodec{}, nil
	case "zstd":
		return newZstdCodec()
	default:
		return nil, errors.Newf(errors.CodeValidationError, "unknown cache codec %q", name)
	}
}

type plainCodec struct{}

func (plainCodec) Name() string { return "plain" }

func (plainCodec) Encode(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (plainCodec) Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}

// zstdMagic prefixes compressed snapshots so a plain reader fails loudly
// instead of parsing garbage.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type zstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newZstdCodec() (Codec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &zstdCodec{encoder: encoder, decoder: decoder}, nil
}

func (*zstdCodec) Name() string { return "zstd" }

func (c *zstdCodec) Encode(s Snapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *zstdCodec) Decode(data []byte) (Snapshot, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return Snapshot{}, io.ErrUnexpectedEOF
	}
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return Snapshot{}, err
	}
	var s Snapshot
	err = json.Unmarshal(raw, &s)
	return s, err
}
