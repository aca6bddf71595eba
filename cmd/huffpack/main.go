// Command huffpack compresses and decompresses text files.
//
//	huffpack compress [-a algorithm] -in notes.txt [-out notes_huffman.comp]
//	huffpack decompress [-a algorithm] -in notes_huffman.comp -out notes.txt
//	huffpack list
//	huffpack info zstd
//	huffpack stats -in notes.txt
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/fileio"
	"github.com/seiflotfy/huffpack/internal/logger"
)

var errUsage = errors.New("usage: huffpack <compress|decompress|list|info|stats> [flags]")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "huffpack:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	m := huffpack.New(huffpack.WithLogger(logger.NewWriter(stderr)))

	cmd, args := args[0], args[1:]
	switch cmd {
	case "compress":
		return compress(m, args, stdout, stderr)
	case "decompress":
		return decompress(m, args, stdout, stderr)
	case "list":
		for _, name := range m.Algorithms() {
			marker := " "
			if name == m.CurrentName() {
				marker = "*"
			}
			info, _ := m.Info(name)
			fmt.Fprintf(stdout, "%s %-8s %s\n", marker, name, info.Description)
		}
		return nil
	case "info":
		if len(args) != 1 {
			return fmt.Errorf("info takes one algorithm name")
		}
		info, ok := m.Info(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", huffpack.ErrUnknownAlgorithm, args[0])
		}
		fmt.Fprintf(stdout, "%s: %s\n", info.Name, info.Description)
		return nil
	case "stats":
		return stats(args, stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

func selectAlgorithm(m *huffpack.Manager, name string) error {
	if name != "" && !m.Select(name) {
		return fmt.Errorf("%w: %q", huffpack.ErrUnknownAlgorithm, name)
	}
	return nil
}

func compress(m *huffpack.Manager, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	algo := fs.String("a", "", "algorithm (default: huffman)")
	in := fs.String("in", "", "input text file")
	out := fs.String("out", "", "output file (default: <input>_<algorithm>.comp)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("compress: -in is required")
	}
	if err := selectAlgorithm(m, *algo); err != nil {
		return err
	}

	text, err := fileio.ReadText(*in)
	if err != nil {
		return err
	}
	res, err := m.Compress(text)
	if err != nil {
		return err
	}
	if res.Empty() {
		fmt.Fprintf(stdout, "%s is empty, nothing to compress\n", *in)
		return nil
	}
	if *out == "" {
		*out = defaultOutput(*in, res.Algorithm)
	}
	if err := fileio.WriteBinary(*out, res.Data); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d -> %d bytes (%.2f%%) with %s\n", *out, res.OriginalSize, res.CompressedSize, res.Rate, res.Algorithm)
	st := m.Stats(text, res.Data)
	fmt.Fprintf(stdout, "savings: %d bytes (%.2f%%)\n", st.Savings, st.Rate)
	fmt.Fprintln(stdout, huffpack.Preview(res.Data, 0))
	return nil
}

func decompress(m *huffpack.Manager, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("decompress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	algo := fs.String("a", "", "algorithm for untagged input (default: huffman)")
	in := fs.String("in", "", "compressed input file")
	out := fs.String("out", "", "output text file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("decompress: -in is required")
	}
	if err := selectAlgorithm(m, *algo); err != nil {
		return err
	}

	data, err := fileio.ReadBinary(*in)
	if err != nil {
		return err
	}
	text, err := m.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", *in, err)
	}
	if *out == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := fileio.WriteText(*out, text); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d bytes\n", *out, len(text))
	return nil
}

func stats(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input text file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("stats: -in is required")
	}
	if ok, err := fileio.IsValidTextFile(*in); err != nil {
		return err
	} else if !ok {
		fmt.Fprintf(stderr, "warning: %s does not look like a UTF-8 text file\n", *in)
	}
	text, err := fileio.ReadText(*in)
	if err != nil {
		return err
	}
	st := huffpack.Summarize(text)
	fmt.Fprintf(stdout, "characters: %d\nbytes: %d\nlines: %d\nwords: %d\n", st.Length, st.Bytes, st.Lines, st.Words)
	return nil
}

// defaultOutput names the compressed file after its input: notes.txt -> notes_zlib.comp.
func defaultOutput(in, algorithm string) string {
	base := strings.TrimSuffix(in, filepath.Ext(in))
	return base + "_" + algorithm + ".comp"
}
