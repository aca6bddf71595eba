package huffpack

import "errors"

var (
	// ErrFormat indicates a malformed or unrecognized container header or tag.
	ErrFormat = errors.New("cannot parse compressed data")
	// ErrCorruptData indicates a well-formed header whose payload does not decode cleanly.
	ErrCorruptData = errors.New("corrupt compressed data")
	// ErrNoAlgorithmSelected indicates the manager was used before an algorithm was chosen.
	ErrNoAlgorithmSelected = errors.New("no compression algorithm selected")
	// ErrEncoding indicates an internal invariant violation while encoding.
	ErrEncoding = errors.New("encoding invariant violated")
	// ErrInvalidText indicates input text that is not valid UTF-8.
	ErrInvalidText = errors.New("text is not valid UTF-8")
	// ErrUnknownAlgorithm indicates a name that is not registered.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// Algorithm is a text codec that can be registered with a Manager.
//
// Compress returns nil for empty text. Decompress must reject any buffer it
// did not produce with ErrFormat or ErrCorruptData rather than panic.
type Algorithm interface {
	Name() string
	Description() string
	Compress(text string) ([]byte, error)
	Decompress(data []byte) (string, error)
}

// Detector is implemented by algorithms whose output starts with an
// unambiguous magic tag. The manager routes decompression to a Detector that
// claims the data regardless of the current selection.
type Detector interface {
	Detect(data []byte) bool
}
