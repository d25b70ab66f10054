package modelstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/manifold/core"
)

// Compression selects the compression applied to the encoded payload.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd compression (better ratio).
	CompressionZSTD Compression = 2
)

// magic identifies the model framing format.
var magic = []byte("MFLD1")

// header: magic, compression tag, uncompressed payload length.
const headerSize = 5 + 1 + 4

var errCorrupt = errors.New("modelstore: corrupt model data")

// Encode serializes a projection artifact with the given compression.
func Encode(pr *core.Projection, c Compression) ([]byte, error) {
	if pr == nil || pr.Matrix == nil || pr.Mean == nil {
		return nil, errors.New("modelstore: nil projection")
	}
	matBytes, err := pr.Matrix.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode projection matrix: %w", err)
	}
	meanBytes, err := pr.Mean.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode projection mean: %w", err)
	}

	payload := make([]byte, 0, 8+len(matBytes)+len(meanBytes))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(matBytes)))
	payload = append(payload, matBytes...)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(meanBytes)))
	payload = append(payload, meanBytes...)

	compressed, c, err := compress(payload, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize+len(compressed))
	out = append(out, magic...)
	out = append(out, byte(c))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, compressed...)
	return out, nil
}

// Decode deserializes a projection artifact.
func Decode(data []byte) (*core.Projection, error) {
	if len(data) < headerSize || string(data[:len(magic)]) != string(magic) {
		return nil, errCorrupt
	}
	c := Compression(data[len(magic)])
	rawLen := binary.LittleEndian.Uint32(data[len(magic)+1:])
	payload, err := decompress(data[headerSize:], c, int(rawLen))
	if err != nil {
		return nil, err
	}

	if len(payload) < 4 {
		return nil, errCorrupt
	}
	matLen := binary.LittleEndian.Uint32(payload)
	payload = payload[4:]
	if uint32(len(payload)) < matLen {
		return nil, errCorrupt
	}
	var m mat.Dense
	if err := m.UnmarshalBinary(payload[:matLen]); err != nil {
		return nil, fmt.Errorf("decode projection matrix: %w", err)
	}
	payload = payload[matLen:]

	if len(payload) < 4 {
		return nil, errCorrupt
	}
	meanLen := binary.LittleEndian.Uint32(payload)
	payload = payload[4:]
	if uint32(len(payload)) < meanLen {
		return nil, errCorrupt
	}
	var v mat.VecDense
	if err := v.UnmarshalBinary(payload[:meanLen]); err != nil {
		return nil, fmt.Errorf("decode projection mean: %w", err)
	}

	return &core.Projection{Matrix: &m, Mean: &v}, nil
}

// Save encodes a projection and writes it to the store.
func Save(ctx context.Context, s Store, name string, pr *core.Projection, c Compression) error {
	data, err := Encode(pr, c)
	if err != nil {
		return err
	}
	return s.Put(ctx, name, data)
}

// Load reads a model from the store and decodes it.
func Load(ctx context.Context, s Store, name string) (*core.Projection, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// compress returns the compressed payload and the tag actually used. An
// incompressible payload falls back to CompressionNone so decode never sees
// an LZ4 zero-length block.
func compress(payload []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case CompressionNone:
		return payload, CompressionNone, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(payload) {
			return payload, CompressionNone, nil
		}
		return buf[:n], CompressionLZ4, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, 0, err
		}
		defer enc.Close()
		return enc.EncodeAll(payload, nil), CompressionZSTD, nil
	}
	return nil, 0, fmt.Errorf("modelstore: unknown compression %d", c)
}

func decompress(data []byte, c Compression, rawLen int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(data) != rawLen {
			return nil, errCorrupt
		}
		return data, nil
	case CompressionLZ4:
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != rawLen {
			return nil, errCorrupt
		}
		return out, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != rawLen {
			return nil, errCorrupt
		}
		return out, nil
	}
	return nil, fmt.Errorf("modelstore: unknown compression %d", c)
}
