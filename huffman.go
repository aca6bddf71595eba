package huffpack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seiflotfy/huffpack/bitpack"
	"github.com/seiflotfy/huffpack/huffman"
)

const (
	huffmanTag = "huffman"

	stageCodeTable = "code_table"
	stageChecksum  = "checksum"

	checksumLen = 8
)

// HuffmanCodec compresses text with a per-buffer Huffman code. The code table,
// padding length and an optional checksum travel in the container metadata.
type HuffmanCodec struct {
	checksum bool
	cache    *lru.Cache[uint64, decodeTable]
}

type decodeTable struct {
	raw     []byte
	inverse map[huffman.Code]rune
}

// NewHuffmanCodec creates a Huffman codec. Only WithChecksum and
// WithCodeCacheSize apply.
func NewHuffmanCodec(opts ...Option) (*HuffmanCodec, error) {
	cfg := newConfig(opts)
	h := &HuffmanCodec{checksum: cfg.checksum}
	if cfg.codeCacheSize > 0 {
		cache, err := lru.New[uint64, decodeTable](cfg.codeCacheSize)
		if err != nil {
			return nil, fmt.Errorf("code table cache: %w", err)
		}
		h.cache = cache
	}
	return h, nil
}

// Name returns "Huffman".
func (h *HuffmanCodec) Name() string { return "Huffman" }

// Description describes the codec.
func (h *HuffmanCodec) Description() string {
	return "Character-frequency based compression, best suited for text"
}

// Compress encodes text. Empty text yields nil: nothing is compressed.
func (h *HuffmanCodec) Compress(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}

	codes, err := huffman.Build(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	payload, padding, err := huffman.Encode(text, codes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	table, err := encodeCodeTable(codes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	c := &container{
		algorithm: huffmanTag,
		stages: []stage{
			{name: stageCodeTable, params: []byte{padding}, payload: table},
		},
		payload: payload,
	}
	if h.checksum {
		c.stages = append(c.stages, stage{
			name:    stageChecksum,
			payload: binary.LittleEndian.AppendUint64(nil, xxhash.Sum64String(text)),
		})
	}
	return c.marshal()
}

// Decompress restores the text produced by Compress.
func (h *HuffmanCodec) Decompress(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	c, err := parseContainer(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if c.algorithm != huffmanTag {
		return "", fmt.Errorf("%w: algorithm tag %q, expected %q", ErrFormat, c.algorithm, huffmanTag)
	}
	st, ok := c.stage(stageCodeTable)
	if !ok {
		return "", fmt.Errorf("%w: missing required stage %q", ErrFormat, stageCodeTable)
	}
	if len(st.params) != 1 || st.params[0] > 7 {
		return "", fmt.Errorf("%w: invalid padding parameter %v", ErrFormat, st.params)
	}
	padding := st.params[0]

	inverse, err := h.decodeTable(st.payload)
	if err != nil {
		return "", err
	}

	text, err := huffman.Decode(c.payload, padding, inverse)
	switch {
	case errors.Is(err, bitpack.ErrInvalidPadding):
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrCorruptData, err)
	}

	if sum, ok := c.stage(stageChecksum); ok {
		if len(sum.payload) != checksumLen {
			return "", fmt.Errorf("%w: checksum stage has %d bytes", ErrFormat, len(sum.payload))
		}
		want := binary.LittleEndian.Uint64(sum.payload)
		if got := xxhash.Sum64String(text); got != want {
			return "", fmt.Errorf("%w: checksum mismatch: got %016x, want %016x", ErrCorruptData, got, want)
		}
	}
	return text, nil
}

func (h *HuffmanCodec) decodeTable(raw []byte) (map[huffman.Code]rune, error) {
	var key uint64
	if h.cache != nil {
		key = xxhash.Sum64(raw)
		if t, ok := h.cache.Get(key); ok && bytes.Equal(t.raw, raw) {
			return t.inverse, nil
		}
	}

	codes, err := decodeCodeTable(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if err := codes.Validate(); err != nil {
		switch {
		case errors.Is(err, huffman.ErrCodeCollision):
			// A shared code is both a malformed table and undecodable data.
			return nil, fmt.Errorf("%w: %w: %w", ErrCorruptData, ErrFormat, err)
		case errors.Is(err, huffman.ErrNotPrefixFree):
			return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	inverse, err := codes.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrCorruptData, ErrFormat, err)
	}

	if h.cache != nil {
		h.cache.Add(key, decodeTable{raw: append([]byte(nil), raw...), inverse: inverse})
	}
	return inverse, nil
}

// Code table layout:
//
//	count = uvarint
//	repeat count times, ascending by symbol:
//	  symbol = uvarint code point
//	  len    = uint8 code length in bits (1-64)
//	  code   = ceil(len/8) bytes, MSB-first, zero padded
func encodeCodeTable(codes huffman.CodeMap) ([]byte, error) {
	buf := binary.AppendUvarint(nil, uint64(len(codes)))
	for _, r := range codes.Symbols() {
		c := codes[r]
		w := bitpack.NewWriter()
		if err := w.WriteBits(c.Bits, c.Len); err != nil {
			return nil, err
		}
		packed, _, err := w.Finish()
		if err != nil {
			return nil, err
		}
		buf = binary.AppendUvarint(buf, uint64(r))
		buf = append(buf, c.Len)
		buf = append(buf, packed...)
	}
	return buf, nil
}

func decodeCodeTable(raw []byte) (huffman.CodeMap, error) {
	count, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, fmt.Errorf("code table: bad entry count")
	}
	off := n
	// Each entry takes at least three bytes.
	if count > uint64(len(raw)-off)/3 {
		return nil, fmt.Errorf("code table: %d entries cannot fit in %d bytes", count, len(raw)-off)
	}

	codes := make(huffman.CodeMap, int(count))
	for i := 0; i < int(count); i++ {
		sym, n := binary.Uvarint(raw[off:])
		if n <= 0 {
			return nil, fmt.Errorf("code table entry %d at offset %d: bad symbol", i, off)
		}
		off += n
		if sym > utf8.MaxRune || !utf8.ValidRune(rune(sym)) {
			return nil, fmt.Errorf("code table entry %d: invalid code point %#x", i, sym)
		}
		r := rune(sym)
		if _, dup := codes[r]; dup {
			return nil, fmt.Errorf("code table entry %d: duplicate symbol %q", i, r)
		}

		if off >= len(raw) {
			return nil, fmt.Errorf("code table entry %d at offset %d: missing code length", i, off)
		}
		bitLen := raw[off]
		off++
		if bitLen == 0 || bitLen > huffman.MaxCodeLen {
			return nil, fmt.Errorf("code table entry %d: invalid code length %d", i, bitLen)
		}
		size := (int(bitLen) + 7) / 8
		if off+size > len(raw) {
			return nil, fmt.Errorf("code table entry %d at offset %d: truncated code", i, off)
		}

		br, err := bitpack.NewReader(raw[off:off+size], bitpack.Padding(int(bitLen)))
		if err != nil {
			return nil, fmt.Errorf("code table entry %d: %w", i, err)
		}
		var c huffman.Code
		for j := 0; j < int(bitLen); j++ {
			bit, err := br.ReadBit()
			if err != nil {
				return nil, fmt.Errorf("code table entry %d: %w", i, err)
			}
			c = c.Append(bit)
		}
		off += size
		codes[r] = c
	}
	if off != len(raw) {
		return nil, fmt.Errorf("code table trailing bytes: %d", len(raw)-off)
	}
	return codes, nil
}
