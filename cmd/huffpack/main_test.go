package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seiflotfy/huffpack"
)

func TestCompressDecompressFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.txt")
	text := strings.Repeat("to be or not to be\n", 30)
	if err := os.WriteFile(in, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, algo := range []string{"huffman", "zlib", "zstd", "bzip2"} {
		t.Run(algo, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run([]string{"compress", "-a", algo, "-in", in}, &stdout, &stderr); err != nil {
				t.Fatalf("compress: %v (%s)", err, stderr.String())
			}
			comp := filepath.Join(dir, "notes_"+algo+".comp")
			if _, err := os.Stat(comp); err != nil {
				t.Fatalf("default output missing: %v", err)
			}
			if !strings.Contains(stdout.String(), "base64: ") {
				t.Fatalf("stdout lacks preview: %q", stdout.String())
			}

			out := filepath.Join(dir, "restored", algo+".txt")
			stdout.Reset()
			if err := run([]string{"decompress", "-in", comp, "-out", out}, &stdout, &stderr); err != nil {
				t.Fatalf("decompress: %v", err)
			}
			got, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != text {
				t.Fatal("restored text differs")
			}
		})
	}
}

func TestDecompressToStdout(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(in, []byte("hello stdout"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "a.bin")
	var stdout, stderr bytes.Buffer
	if err := run([]string{"compress", "-a", "zlib", "-in", in, "-out", out}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	stdout.Reset()
	// Tagged output is routed regardless of -a.
	if err := run([]string{"decompress", "-a", "bzip2", "-in", out}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "hello stdout" {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestCompressReportsSavings(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		text string
		want string
	}{
		// The container outweighs a single byte, so the savings go negative.
		{"tiny", "a", "savings: -"},
		{"repetitive", strings.Repeat("ab", 2000), "savings: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := filepath.Join(dir, tt.name+".txt")
			if err := os.WriteFile(in, []byte(tt.text), 0o644); err != nil {
				t.Fatal(err)
			}
			var stdout, stderr bytes.Buffer
			if err := run([]string{"compress", "-in", in}, &stdout, &stderr); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Fatalf("stdout = %q, want %q", stdout.String(), tt.want)
			}
			if tt.name == "repetitive" && strings.Contains(stdout.String(), "savings: -") {
				t.Fatalf("repetitive text reported negative savings: %q", stdout.String())
			}
		})
	}
}

func TestListInfoStats(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"list"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "* huffman") || !strings.Contains(stdout.String(), "bzip2") {
		t.Fatalf("list = %q", stdout.String())
	}

	stdout.Reset()
	if err := run([]string{"info", "ZSTD"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "Zstd: ") {
		t.Fatalf("info = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "s.txt")
	if err := os.WriteFile(path, []byte("one two\nthree"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout.Reset()
	if err := run([]string{"stats", "-in", path}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if want := "characters: 13\nbytes: 13\nlines: 2\nwords: 3\n"; stdout.String() != want {
		t.Fatalf("stats = %q, want %q", stdout.String(), want)
	}
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("no args: %v", err)
	}
	if err := run([]string{"explode"}, &stdout, &stderr); !errors.Is(err, errUsage) {
		t.Fatalf("unknown command: %v", err)
	}
	if err := run([]string{"info", "lzma"}, &stdout, &stderr); !errors.Is(err, huffpack.ErrUnknownAlgorithm) {
		t.Fatalf("info lzma: %v", err)
	}
	if err := run([]string{"compress"}, &stdout, &stderr); err == nil {
		t.Fatal("compress without -in: expected error")
	}
	if err := run([]string{"compress", "-a", "lzma", "-in", "x"}, &stdout, &stderr); !errors.Is(err, huffpack.ErrUnknownAlgorithm) {
		t.Fatalf("compress -a lzma: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.comp")
	if err := os.WriteFile(bad, []byte("not compressed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"decompress", "-in", bad}, &stdout, &stderr); !errors.Is(err, huffpack.ErrFormat) {
		t.Fatalf("decompress garbage: %v", err)
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := map[string]string{
		"notes.txt":          "notes_zlib.comp",
		"dir/archive.tar.gz": "dir/archive.tar_zlib.comp",
		"README":             "README_zlib.comp",
	}
	for in, want := range tests {
		if got := defaultOutput(in, "zlib"); got != want {
			t.Errorf("defaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}
