package packcache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"packhub/internal/trainingpack"
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdEncoder = enc
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdDecoder = dec
}

func encodePack(pack *trainingpack.Pack) ([]byte, error) {
	raw, err := json.Marshal(pack)
	if err != nil {
		return nil, fmt.Errorf("marshal pack: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func decodePack(body []byte) (*trainingpack.Pack, error) {
	raw, err := zstdDecoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	var pack trainingpack.Pack
	if err := json.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("unmarshal pack: %w", err)
	}
	return &pack, nil
}
