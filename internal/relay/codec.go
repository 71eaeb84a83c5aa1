package relay

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// maxFrameSize ограничивает размер кадра: поза занимает десятки байт,
// всё крупнее — повреждённый поток
const maxFrameSize = 64 * 1024

// codec сериализует кадры реле: uint32-префикс длины + JSON,
// опционально сжатый zstd
type codec struct {
	useZstd      bool
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

func newCodec(useZstd bool) (*codec, error) {
	c := &codec{useZstd: useZstd}
	if !useZstd {
		return c, nil
	}

	var err error
	c.compressor, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	c.decompressor, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return c, nil
}

// encode сериализует сообщение в кадр с префиксом длины
func (c *codec) encode(msg *PoseUpdate) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal pose: %w", err)
	}

	if c.useZstd {
		payload = c.compressor.EncodeAll(payload, nil)
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)
	return frame, nil
}

// decode читает один кадр из потока
func (c *codec) decode(r io.Reader) (*PoseUpdate, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size == 0 || size > maxFrameSize {
		return nil, fmt.Errorf("недопустимый размер кадра: %d", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	if c.useZstd {
		var err error
		payload, err = c.decompressor.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
	}

	var msg PoseUpdate
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal pose: %w", err)
	}
	return &msg, nil
}
