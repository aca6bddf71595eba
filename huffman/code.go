package huffman

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxCodeLen is the longest code a Code can hold.
const MaxCodeLen = 64

var (
	// ErrCodeTooLong indicates a tree deeper than MaxCodeLen.
	ErrCodeTooLong = errors.New("code longer than 64 bits")
	// ErrCodeCollision indicates two symbols share one code.
	ErrCodeCollision = errors.New("code assigned to more than one symbol")
	// ErrInvalidCode indicates an empty, oversized or malformed code.
	ErrInvalidCode = errors.New("invalid code")
	// ErrNotPrefixFree indicates a code that is a prefix of another code.
	ErrNotPrefixFree = errors.New("code table is not prefix-free")
)

// Code is a variable-length bit string stored in the low Len bits of Bits,
// most significant bit first.
type Code struct {
	Bits uint64
	Len  uint8
}

// String renders the code as a sequence of '0' and '1'.
func (c Code) String() string {
	var sb strings.Builder
	sb.Grow(int(c.Len))
	for i := int(c.Len) - 1; i >= 0; i-- {
		if c.Bits>>uint(i)&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Append returns c extended by one bit.
func (c Code) Append(bit uint8) Code {
	return Code{Bits: c.Bits<<1 | uint64(bit&1), Len: c.Len + 1}
}

func (c Code) valid() bool {
	if c.Len == 0 || c.Len > MaxCodeLen {
		return false
	}
	return c.Len == MaxCodeLen || c.Bits>>c.Len == 0
}

// ParseCode parses a '0'/'1' string produced by Code.String.
func ParseCode(s string) (Code, error) {
	if len(s) == 0 || len(s) > MaxCodeLen {
		return Code{}, fmt.Errorf("%w: length %d", ErrInvalidCode, len(s))
	}
	var c Code
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			c = c.Append(0)
		case '1':
			c = c.Append(1)
		default:
			return Code{}, fmt.Errorf("%w: symbol %q at %d", ErrInvalidCode, s[i], i)
		}
	}
	return c, nil
}

// CodeMap assigns a prefix-free code to every symbol of a text.
type CodeMap map[rune]Code

// Codes walks the tree and collects a code for every leaf: descending left
// appends 0, descending right appends 1. A lone leaf gets the code "0".
func Codes(root *Node) (CodeMap, error) {
	codes := make(CodeMap)
	if root == nil {
		return codes, nil
	}
	if root.Leaf() {
		codes[root.Symbol] = Code{Bits: 0, Len: 1}
		return codes, nil
	}

	var walk func(n *Node, c Code) error
	walk = func(n *Node, c Code) error {
		if n.Leaf() {
			codes[n.Symbol] = c
			return nil
		}
		if c.Len == MaxCodeLen {
			return ErrCodeTooLong
		}
		if err := walk(n.Left, c.Append(0)); err != nil {
			return err
		}
		return walk(n.Right, c.Append(1))
	}
	if err := walk(root, Code{}); err != nil {
		return nil, err
	}
	return codes, nil
}

// Build derives the code map of text. Empty text yields an empty map.
func Build(text string) (CodeMap, error) {
	freqs := Frequencies(text)
	if len(freqs) == 0 {
		return CodeMap{}, nil
	}
	root, err := BuildTree(freqs)
	if err != nil {
		return nil, err
	}
	return Codes(root)
}

// Symbols returns the mapped symbols in ascending order.
func (m CodeMap) Symbols() []rune {
	symbols := make([]rune, 0, len(m))
	for r := range m {
		symbols = append(symbols, r)
	}
	slices.Sort(symbols)
	return symbols
}

// Inverse maps every code back to its symbol. Two symbols sharing a code is an error.
func (m CodeMap) Inverse() (map[Code]rune, error) {
	inverse := make(map[Code]rune, len(m))
	for _, r := range m.Symbols() {
		c := m[r]
		if other, ok := inverse[c]; ok {
			return nil, fmt.Errorf("%w: %q and %q both use %s", ErrCodeCollision, other, r, c)
		}
		inverse[c] = r
	}
	return inverse, nil
}

// PrefixFree reports whether no code is a prefix of another.
func (m CodeMap) PrefixFree() bool {
	return m.checkPrefixes() == nil
}

func (m CodeMap) checkPrefixes() error {
	codes := make([]string, 0, len(m))
	for _, c := range m {
		codes = append(codes, c.String())
	}
	// Sorted lexicographically, a prefix sorts directly before some string it prefixes.
	slices.Sort(codes)
	for i := 1; i < len(codes); i++ {
		if strings.HasPrefix(codes[i], codes[i-1]) {
			return fmt.Errorf("%w: %s prefixes %s", ErrNotPrefixFree, codes[i-1], codes[i])
		}
	}
	return nil
}

// Validate checks that every code is well formed, unique and prefix-free.
func (m CodeMap) Validate() error {
	for _, r := range m.Symbols() {
		if c := m[r]; !c.valid() {
			return fmt.Errorf("%w for %q: %d bits", ErrInvalidCode, r, c.Len)
		}
	}
	if _, err := m.Inverse(); err != nil {
		return err
	}
	return m.checkPrefixes()
}
