package huffman

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seiflotfy/huffpack/bitpack"
)

var (
	// ErrMissingCode indicates a symbol of the text has no code in the map.
	ErrMissingCode = errors.New("symbol has no code")
	// ErrTrailingBits indicates bits left over after the last complete code.
	ErrTrailingBits = errors.New("unconsumed trailing bits")
)

// Encode concatenates the code of every symbol of text, in order, and packs the
// result. It returns the packed bytes and the padding length.
func Encode(text string, codes CodeMap) ([]byte, uint8, error) {
	w := bitpack.NewWriter()
	for i, r := range text {
		c, ok := codes[r]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q at byte %d", ErrMissingCode, r, i)
		}
		if err := w.WriteBits(c.Bits, c.Len); err != nil {
			return nil, 0, err
		}
	}
	return w.Finish()
}

// EncodedLen returns the number of bits Encode would produce for a text with
// the given frequencies.
func EncodedLen(freqs FrequencyTable, codes CodeMap) int {
	n := 0
	for r, f := range freqs {
		n += f * int(codes[r].Len)
	}
	return n
}

// Decode reads the packed bits and greedily emits a symbol every time the
// accumulated bits equal a code of inverse. Bits left once the input is exhausted
// mean the payload was truncated or corrupted.
func Decode(data []byte, padding uint8, inverse map[Code]rune) (string, error) {
	r, err := bitpack.NewReader(data, padding)
	if err != nil {
		return "", err
	}

	var maxLen uint8
	for c := range inverse {
		maxLen = max(maxLen, c.Len)
	}

	var sb strings.Builder
	sb.Grow(len(data))
	var cur Code
	for {
		bit, err := r.ReadBit()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		cur = cur.Append(bit)
		if sym, ok := inverse[cur]; ok {
			sb.WriteRune(sym)
			cur = Code{}
			continue
		}
		if cur.Len >= maxLen {
			return "", fmt.Errorf("%w: no code matches %s with %d bits left", ErrTrailingBits, cur, r.Remaining())
		}
	}
	if cur.Len > 0 {
		return "", fmt.Errorf("%w: %d bits (%s)", ErrTrailingBits, cur.Len, cur)
	}
	return sb.String(), nil
}
