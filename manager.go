// Package huffpack compresses text with interchangeable codecs behind a
// self-describing binary format.
//
// A Manager holds the registered algorithms and the current selection. Huffman
// output is a length-framed container carrying the code table and padding;
// the secondary codecs prefix their output with a 4-byte magic tag, which lets
// Manager.Decompress route those buffers without relying on the selection.
//
// A Manager is not safe for concurrent use while the selection changes.
package huffpack

import (
	"fmt"
	"strings"
)

// Info describes a registered algorithm.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Result is the outcome of Manager.Compress.
type Result struct {
	Data           []byte
	Rate           float64 // percent saved, never negative
	Algorithm      string
	OriginalSize   int
	CompressedSize int
}

// Empty reports whether no compression was performed because the text was empty.
func (r Result) Empty() bool {
	return r.OriginalSize == 0
}

// Manager dispatches between registered algorithms.
type Manager struct {
	algorithms map[string]Algorithm
	order      []string
	current    string
	logger     Logger
}

// New creates a manager with the built-in algorithms (Huffman, ZLib, Zstd,
// Bzip2) unless WithAlgorithms is given. The first registered algorithm is
// selected unless WithDefault names another one. A built-in that fails to
// construct is logged and skipped.
func New(opts ...Option) *Manager {
	cfg := newConfig(opts)
	m := &Manager{
		algorithms: make(map[string]Algorithm),
		logger:     cfg.logger,
	}

	if cfg.customAlgorithms {
		for _, a := range cfg.algorithms {
			m.Register(a)
		}
	} else {
		m.registerBuiltins(opts)
	}

	if len(m.order) > 0 {
		m.current = m.order[0]
	}
	if cfg.defaultAlgorithm != "" && !m.Select(cfg.defaultAlgorithm) {
		m.logger.Errorf("default algorithm %q is not registered, keeping %q", cfg.defaultAlgorithm, m.current)
	}
	return m
}

func (m *Manager) registerBuiltins(opts []Option) {
	builtins := []struct {
		name string
		new  func(...Option) (Algorithm, error)
	}{
		{"huffman", func(o ...Option) (Algorithm, error) { return NewHuffmanCodec(o...) }},
		{"zlib", func(o ...Option) (Algorithm, error) { return NewZlibCodec(o...) }},
		{"zstd", func(o ...Option) (Algorithm, error) { return NewZstdCodec(o...) }},
		{"bzip2", func(o ...Option) (Algorithm, error) { return NewBzip2Codec(o...) }},
	}
	for _, b := range builtins {
		a, err := b.new(opts...)
		if err != nil {
			m.logger.Errorf("register %s: %v", b.name, err)
			continue
		}
		m.Register(a)
	}
}

func algorithmKey(name string) string {
	return strings.ToLower(name)
}

// Register adds a, or replaces the algorithm with the same lower-cased name
// while keeping its position. It does not change the selection.
func (m *Manager) Register(a Algorithm) {
	k := algorithmKey(a.Name())
	if _, ok := m.algorithms[k]; !ok {
		m.order = append(m.order, k)
	}
	m.algorithms[k] = a
}

// Select makes name the current algorithm. It reports false if name is not registered.
func (m *Manager) Select(name string) bool {
	k := algorithmKey(name)
	if _, ok := m.algorithms[k]; !ok {
		return false
	}
	m.current = k
	return true
}

// Current returns the selected algorithm.
func (m *Manager) Current() (Algorithm, bool) {
	a, ok := m.algorithms[m.current]
	return a, ok
}

// CurrentName returns the lower-cased name of the selected algorithm, or "".
func (m *Manager) CurrentName() string {
	return m.current
}

// Algorithms returns the lower-cased names in registration order.
func (m *Manager) Algorithms() []string {
	return append([]string(nil), m.order...)
}

// Algorithm looks up a registered algorithm by name.
func (m *Manager) Algorithm(name string) (Algorithm, bool) {
	a, ok := m.algorithms[algorithmKey(name)]
	return a, ok
}

// Info returns the display name and description of name.
func (m *Manager) Info(name string) (Info, bool) {
	a, ok := m.Algorithm(name)
	if !ok {
		return Info{}, false
	}
	return Info{Name: a.Name(), Description: a.Description()}, true
}

// Compress compresses text with the current algorithm. Empty text is not an
// error: the returned Result reports Empty and a rate of 0.
func (m *Manager) Compress(text string) (Result, error) {
	if text == "" {
		return Result{Algorithm: m.current}, nil
	}
	a, ok := m.Current()
	if !ok {
		return Result{}, ErrNoAlgorithmSelected
	}
	return compressWith(a, m.current, text)
}

// CompressWith compresses text with the named algorithm without touching the selection.
func (m *Manager) CompressWith(name, text string) (Result, error) {
	a, ok := m.Algorithm(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	if text == "" {
		return Result{Algorithm: algorithmKey(name)}, nil
	}
	return compressWith(a, algorithmKey(name), text)
}

func compressWith(a Algorithm, name, text string) (Result, error) {
	data, err := a.Compress(text)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Data:           data,
		Rate:           compressionRate(len(text), len(data)),
		Algorithm:      name,
		OriginalSize:   len(text),
		CompressedSize: len(data),
	}, nil
}

// Decompress restores text. Buffers claimed by a Detector go to that algorithm
// regardless of the selection; anything else goes to the current algorithm.
func (m *Manager) Decompress(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if a, ok := m.Detect(data); ok {
		return a.Decompress(data)
	}
	a, ok := m.Current()
	if !ok {
		return "", ErrNoAlgorithmSelected
	}
	return a.Decompress(data)
}

// Detect returns the registered algorithm whose magic tag data carries.
func (m *Manager) Detect(data []byte) (Algorithm, bool) {
	for _, k := range m.order {
		a := m.algorithms[k]
		if d, ok := a.(Detector); ok && d.Detect(data) {
			return a, true
		}
	}
	return nil, false
}
