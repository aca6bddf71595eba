package huffman

import "slices"

// FrequencyTable maps each distinct symbol of a text to its occurrence count.
// Symbols absent from the text are absent from the table.
type FrequencyTable map[rune]int

// Frequencies counts the code points of text.
func Frequencies(text string) FrequencyTable {
	freqs := make(FrequencyTable)
	for _, r := range text {
		freqs[r]++
	}
	return freqs
}

// Total returns the sum of all counts, i.e. the number of code points counted.
func (f FrequencyTable) Total() int {
	n := 0
	for _, c := range f {
		n += c
	}
	return n
}

// Symbols returns the distinct symbols in ascending order.
func (f FrequencyTable) Symbols() []rune {
	symbols := make([]rune, 0, len(f))
	for r := range f {
		symbols = append(symbols, r)
	}
	slices.Sort(symbols)
	return symbols
}
