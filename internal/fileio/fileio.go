// Package fileio reads and writes the text and compressed files handled by the CLI.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	// MaxTextFileSize is the largest file IsValidTextFile accepts.
	MaxTextFileSize = 10 << 20
	sampleSize      = 1 << 10
)

var ErrNotRegular = errors.New("not a regular file")

// FileInfo is a summary of a file on disk.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsFile  bool
	Ext     string
}

// ReadText returns the contents of path as UTF-8. Files that are not valid
// UTF-8 are decoded as ISO-8859-1, which maps every byte to a code point.
func ReadText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text %s: %w", path, err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode latin-1 %s: %w", path, err)
	}
	return string(decoded), nil
}

func ReadBinary(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read binary %s: %w", path, err)
	}
	return data, nil
}

// WriteText writes text as UTF-8, creating parent directories as needed.
func WriteText(path, text string) error {
	return write(path, []byte(text))
}

// WriteBinary writes data, creating parent directories as needed.
func WriteBinary(path string, data []byte) error {
	return write(path, data)
}

func write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func Info(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return FileInfo{
		Path:    path,
		Size:    st.Size(),
		ModTime: st.ModTime(),
		IsFile:  st.Mode().IsRegular(),
		Ext:     filepath.Ext(path),
	}, nil
}

// IsValidTextFile reports whether path is a regular file of at most
// MaxTextFileSize bytes whose first KiB is UTF-8. A code point cut by the
// sample boundary is allowed.
func IsValidTextFile(path string) (bool, error) {
	info, err := Info(path)
	if err != nil {
		return false, err
	}
	if !info.IsFile {
		return false, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if info.Size > MaxTextFileSize {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sample := make([]byte, sampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	sample = sample[:n]
	if n == sampleSize {
		sample = trimPartialRune(sample)
	}
	return utf8.Valid(sample), nil
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}
