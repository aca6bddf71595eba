package bitpack

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestPadding(t *testing.T) {
	cases := []struct {
		bits int
		want uint8
	}{
		{0, 0}, {1, 7}, {7, 1}, {8, 0}, {9, 7}, {15, 1}, {16, 0}, {21, 3},
	}
	for _, tc := range cases {
		if got := Padding(tc.bits); got != tc.want {
			t.Errorf("Padding(%d): got %d, want %d", tc.bits, got, tc.want)
		}
	}
}

func TestPackKnownValues(t *testing.T) {
	cases := []struct {
		bits    string
		want    []byte
		padding uint8
	}{
		{"", nil, 0},
		{"1", []byte{0x80}, 7},
		{"0000", []byte{0x00}, 4},
		{"10101010", []byte{0xAA}, 0},
		{"111111110", []byte{0xFF, 0x00}, 7},
		{"0100000101", []byte{0x41, 0x40}, 6},
	}
	for _, tc := range cases {
		data, padding, err := Pack(tc.bits)
		if err != nil {
			t.Fatalf("Pack(%q) failed: %v", tc.bits, err)
		}
		if !bytes.Equal(data, tc.want) {
			t.Errorf("Pack(%q): got %x, want %x", tc.bits, data, tc.want)
		}
		if padding != tc.padding {
			t.Errorf("Pack(%q) padding: got %d, want %d", tc.bits, padding, tc.padding)
		}
		if 8*len(data)-int(padding) != len(tc.bits) {
			t.Errorf("Pack(%q): %d bytes with padding %d do not cover %d bits", tc.bits, len(data), padding, len(tc.bits))
		}
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"0",
		"1",
		"01",
		"0110100",
		"01101001",
		"011010011",
		strings.Repeat("10", 100),
		strings.Repeat("1", 63),
	}
	for _, bits := range inputs {
		data, padding, err := Pack(bits)
		if err != nil {
			t.Fatalf("Pack(%q) failed: %v", bits, err)
		}
		if padding > 7 {
			t.Fatalf("Pack(%q) padding out of range: %d", bits, padding)
		}
		got, err := Unpack(data, padding)
		if err != nil {
			t.Fatalf("Unpack failed for %q: %v", bits, err)
		}
		if got != bits {
			t.Errorf("round trip: got %q, want %q", got, bits)
		}

		// Re-padding the unpacked bits must give back the identical buffer.
		again, againPadding, err := Pack(got)
		if err != nil {
			t.Fatalf("re-Pack failed: %v", err)
		}
		if !bytes.Equal(again, data) || againPadding != padding {
			t.Errorf("re-pack of %q: got %x/%d, want %x/%d", bits, again, againPadding, data, padding)
		}
	}
}

func TestWriterBitsMatchString(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBits(0b101, 3); err != nil {
		t.Fatalf("WriteBits failed: %v", err)
	}
	if err := w.WriteBits(0xFFFF, 2); err != nil { // only the low two bits count
		t.Fatalf("WriteBits failed: %v", err)
	}
	if err := w.WriteBits(0, 0); err != nil {
		t.Fatalf("WriteBits with zero length failed: %v", err)
	}
	if w.Len() != 5 {
		t.Fatalf("Len: got %d, want 5", w.Len())
	}
	data, padding, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	want, wantPadding, err := Pack("10111")
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if !bytes.Equal(data, want) || padding != wantPadding {
		t.Errorf("got %x/%d, want %x/%d", data, padding, want, wantPadding)
	}
}

func TestWriterFullWidth(t *testing.T) {
	w := NewWriter()
	if err := w.WriteBits(^uint64(0), 64); err != nil {
		t.Fatalf("WriteBits(64) failed: %v", err)
	}
	if err := w.WriteBits(1, 65); err == nil {
		t.Fatalf("expected error for 65-bit write")
	}
	data, padding, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if len(data) != 8 || padding != 0 {
		t.Fatalf("got %d bytes with padding %d, want 8/0", len(data), padding)
	}
	for i, b := range data {
		if b != 0xFF {
			t.Errorf("byte %d: got %#x, want 0xff", i, b)
		}
	}
}

func TestPackRejectsInvalidSymbols(t *testing.T) {
	_, _, err := Pack("0102")
	if !errors.Is(err, ErrInvalidBit) {
		t.Fatalf("expected ErrInvalidBit, got %v", err)
	}
}

func TestReaderRejectsInvalidPadding(t *testing.T) {
	if _, err := NewReader([]byte{0x00}, 8); !errors.Is(err, ErrInvalidPadding) {
		t.Errorf("padding 8: expected ErrInvalidPadding, got %v", err)
	}
	if _, err := NewReader(nil, 3); !errors.Is(err, ErrInvalidPadding) {
		t.Errorf("padding on empty payload: expected ErrInvalidPadding, got %v", err)
	}
	if _, err := NewReader(nil, 0); err != nil {
		t.Errorf("empty payload without padding: %v", err)
	}
}

func TestReaderStopsAtPadding(t *testing.T) {
	r, err := NewReader([]byte{0xF0}, 4)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if r.Remaining() != 4 {
		t.Fatalf("Remaining: got %d, want 4", r.Remaining())
	}
	for i := 0; i < 4; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			t.Fatalf("ReadBit %d failed: %v", i, err)
		}
		if bit != 1 {
			t.Fatalf("bit %d: got %d, want 1", i, bit)
		}
	}
	if _, err := r.ReadBit(); err != io.EOF {
		t.Fatalf("expected io.EOF after significant bits, got %v", err)
	}
}

func FuzzPackUnpack(f *testing.F) {
	f.Add([]byte{0x00}, uint8(0))
	f.Add([]byte{0xAB, 0xCD}, uint8(3))
	f.Add([]byte{}, uint8(0))

	f.Fuzz(func(t *testing.T, data []byte, padding uint8) {
		padding %= 8
		if len(data) == 0 {
			padding = 0
		}
		bits, err := Unpack(data, padding)
		if err != nil {
			t.Fatalf("Unpack failed: %v", err)
		}
		if len(bits) != 8*len(data)-int(padding) {
			t.Fatalf("got %d bits, want %d", len(bits), 8*len(data)-int(padding))
		}
		if _, _, err := Pack(bits); err != nil {
			t.Fatalf("Pack failed: %v", err)
		}
	})
}

func BenchmarkPack(b *testing.B) {
	bits := strings.Repeat("0110100111", 1000)
	b.SetBytes(int64(len(bits) / 8))
	for i := 0; i < b.N; i++ {
		if _, _, err := Pack(bits); err != nil {
			b.Fatal(err)
		}
	}
}
