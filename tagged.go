package huffpack

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

const (
	magicLen = 4

	// maxDecodedBytes bounds the output of a tagged codec.
	maxDecodedBytes = 1 << 30 // 1 GiB
)

var (
	zlibMagic  = [magicLen]byte{'Z', 'L', 'I', 'B'}
	zstdMagic  = [magicLen]byte{'Z', 'S', 'T', 'D'}
	bzip2Magic = [magicLen]byte{'B', 'Z', 'P', '2'}
)

type backend interface {
	compress(src []byte) ([]byte, error)
	decompress(src []byte) ([]byte, error)
}

// TaggedCodec wraps a self-describing general-purpose compressor behind a fixed
// 4-byte magic tag. No other metadata is stored.
type TaggedCodec struct {
	name        string
	description string
	magic       [magicLen]byte
	backend     backend
}

// Name returns the codec name.
func (c *TaggedCodec) Name() string { return c.name }

// Description describes the codec.
func (c *TaggedCodec) Description() string { return c.description }

// Magic returns the tag every compressed buffer starts with.
func (c *TaggedCodec) Magic() []byte { return c.magic[:] }

// Detect reports whether data starts with this codec's magic tag.
func (c *TaggedCodec) Detect(data []byte) bool {
	return bytes.HasPrefix(data, c.magic[:])
}

// Compress returns the magic tag followed by the compressed UTF-8 bytes of text.
func (c *TaggedCodec) Compress(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}
	body, err := c.backend.compress([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%s compress: %w", c.name, err)
	}
	out := make([]byte, 0, magicLen+len(body))
	out = append(out, c.magic[:]...)
	return append(out, body...), nil
}

// Decompress verifies the magic tag and decompresses the rest.
func (c *TaggedCodec) Decompress(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if !c.Detect(data) {
		n := min(len(data), magicLen)
		return "", fmt.Errorf("%w: %s header missing, got %q", ErrFormat, c.name, data[:n])
	}
	raw, err := c.backend.decompress(data[magicLen:])
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCorruptData, c.name, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s output is not valid UTF-8", ErrCorruptData, c.name)
	}
	return string(raw), nil
}

func readLimited(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxDecodedBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxDecodedBytes {
		return nil, fmt.Errorf("decoded payload expands beyond limit")
	}
	return raw, nil
}

// NewZlibCodec creates the "ZLIB"-tagged codec. WithZlibLevel applies.
func NewZlibCodec(opts ...Option) (*TaggedCodec, error) {
	cfg := newConfig(opts)
	// Surface a bad level at construction rather than on first use.
	if _, err := zlib.NewWriterLevel(io.Discard, cfg.zlibLevel); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	return &TaggedCodec{
		name:        "ZLib",
		description: "Standard zlib (deflate) compression, fast and effective",
		magic:       zlibMagic,
		backend:     zlibBackend{level: cfg.zlibLevel},
	}, nil
}

type zlibBackend struct {
	level int
}

func (b zlibBackend) compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, b.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b zlibBackend) decompress(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readLimited(r)
}

// NewZstdCodec creates the "ZSTD"-tagged codec. WithZstdLevel applies.
func NewZstdCodec(opts ...Option) (*TaggedCodec, error) {
	cfg := newConfig(opts)
	if cfg.zstdLevel < 1 || cfg.zstdLevel > 22 {
		return nil, fmt.Errorf("zstd: invalid level %d", cfg.zstdLevel)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.zstdLevel)))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedBytes))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &TaggedCodec{
		name:        "Zstd",
		description: "Zstandard compression, high ratio with fast decompression",
		magic:       zstdMagic,
		backend:     zstdBackend{enc: enc, dec: dec},
	}, nil
}

type zstdBackend struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (b zstdBackend) compress(src []byte) ([]byte, error) {
	return b.enc.EncodeAll(src, nil), nil
}

func (b zstdBackend) decompress(src []byte) ([]byte, error) {
	return b.dec.DecodeAll(src, nil)
}

// NewBzip2Codec creates the "BZP2"-tagged codec. WithBzip2Level applies.
func NewBzip2Codec(opts ...Option) (*TaggedCodec, error) {
	cfg := newConfig(opts)
	if _, err := bzip2.NewWriter(io.Discard, &bzip2.WriterConfig{Level: cfg.bzip2Level}); err != nil {
		return nil, fmt.Errorf("bzip2: %w", err)
	}
	return &TaggedCodec{
		name:        "Bzip2",
		description: "Burrows-Wheeler block compression, strong on repetitive text",
		magic:       bzip2Magic,
		backend:     bzip2Backend{level: cfg.bzip2Level},
	}, nil
}

type bzip2Backend struct {
	level int
}

func (b bzip2Backend) compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: b.level})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b bzip2Backend) decompress(src []byte) ([]byte, error) {
	r, err := bzip2.NewReader(bytes.NewReader(src), nil)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readLimited(r)
}
