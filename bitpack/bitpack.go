// Package bitpack converts between bit sequences and byte buffers.
//
// Bits are written MSB-first. The final byte is filled with zero bits and the
// number of filler bits (the padding, 0-7) is reported so that a Reader can stop
// at the exact end of the original sequence.
package bitpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

var (
	// ErrInvalidPadding indicates a padding length outside 0-7, or padding on an empty buffer.
	ErrInvalidPadding = errors.New("invalid padding length")
	// ErrInvalidBit indicates a bit-string symbol other than '0' or '1'.
	ErrInvalidBit = errors.New("invalid bit symbol")
)

// Padding returns the number of filler bits needed to round bitLen up to a byte boundary.
func Padding(bitLen int) uint8 {
	return uint8((8 - bitLen%8) % 8)
}

// Writer accumulates bits into a byte buffer.
type Writer struct {
	buf bytes.Buffer
	bw  *bitio.Writer
	n   int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	w := &Writer{}
	w.bw = bitio.NewWriter(&w.buf)
	return w
}

// WriteBits appends the low n bits of v, most significant first. n must be <= 64.
func (w *Writer) WriteBits(v uint64, n uint8) error {
	if n == 0 {
		return nil
	}
	if n > 64 {
		return fmt.Errorf("bit count too large: %d", n)
	}
	if n < 64 {
		v &= 1<<n - 1
	}
	if err := w.bw.WriteBits(v, n); err != nil {
		return err
	}
	w.n += int(n)
	return nil
}

// WriteString appends a textual bit sequence such as "0110".
func (w *Writer) WriteString(bits string) error {
	for i := 0; i < len(bits); i++ {
		var b bool
		switch bits[i] {
		case '0':
		case '1':
			b = true
		default:
			return fmt.Errorf("%w at position %d: %q", ErrInvalidBit, i, bits[i])
		}
		if err := w.bw.WriteBool(b); err != nil {
			return err
		}
		w.n++
	}
	return nil
}

// Len reports the number of bits written so far.
func (w *Writer) Len() int {
	return w.n
}

// Finish flushes the pending bits and returns the packed bytes with the padding length.
// The Writer must not be used afterwards.
func (w *Writer) Finish() ([]byte, uint8, error) {
	if err := w.bw.Close(); err != nil {
		return nil, 0, err
	}
	data := w.buf.Bytes()
	if want := (w.n + 7) / 8; len(data) != want {
		return nil, 0, fmt.Errorf("packed %d bytes for %d bits, expected %d", len(data), w.n, want)
	}
	return data, Padding(w.n), nil
}

// Reader yields the bits of a packed buffer, excluding the trailing padding.
type Reader struct {
	br        *bitio.Reader
	remaining int
}

// NewReader returns a Reader over data that ignores the last padding bits.
func NewReader(data []byte, padding uint8) (*Reader, error) {
	if padding > 7 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPadding, padding)
	}
	if len(data) == 0 && padding != 0 {
		return nil, fmt.Errorf("%w: %d bits of padding on empty payload", ErrInvalidPadding, padding)
	}
	return &Reader{
		br:        bitio.NewReader(bytes.NewReader(data)),
		remaining: len(data)*8 - int(padding),
	}, nil
}

// ReadBit returns the next bit as 0 or 1, or io.EOF once every significant bit was read.
func (r *Reader) ReadBit() (uint8, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	b, err := r.br.ReadBool()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	r.remaining--
	if b {
		return 1, nil
	}
	return 0, nil
}

// Remaining reports how many significant bits are left.
func (r *Reader) Remaining() int {
	return r.remaining
}

// Pack converts a textual bit sequence into bytes plus padding length.
func Pack(bits string) ([]byte, uint8, error) {
	w := NewWriter()
	if err := w.WriteString(bits); err != nil {
		return nil, 0, err
	}
	return w.Finish()
}

// Unpack converts packed bytes back into a textual bit sequence, dropping the padding.
func Unpack(data []byte, padding uint8) (string, error) {
	r, err := NewReader(data, padding)
	if err != nil {
		return "", err
	}
	out := make([]byte, 0, r.Remaining())
	for {
		bit, err := r.ReadBit()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		out = append(out, '0'+bit)
	}
	return string(out), nil
}
