package huffman

import (
	"container/heap"
	"errors"
)

// ErrEmptyTable indicates a tree was requested for a table without symbols.
var ErrEmptyTable = errors.New("empty frequency table")

// Node is a Huffman tree node. Leaves carry a symbol; internal nodes carry
// exactly two children and the sum of their frequencies.
type Node struct {
	Symbol rune
	Freq   int
	Left   *Node
	Right  *Node

	seq int // insertion order, breaks frequency ties
}

// Leaf reports whether n holds a symbol.
func (n *Node) Leaf() bool {
	return n.Left == nil && n.Right == nil
}

type nodeHeap []*Node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].Freq != h[j].Freq {
		return h[i].Freq < h[j].Freq
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*Node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// BuildTree merges the two lowest-frequency nodes until a single root remains.
// Leaves enter the queue in ascending symbol order and every merged node gets the
// next sequence number, so equal frequencies always resolve the same way.
// A table with one symbol yields a single leaf.
func BuildTree(freqs FrequencyTable) (*Node, error) {
	if len(freqs) == 0 {
		return nil, ErrEmptyTable
	}

	h := make(nodeHeap, 0, len(freqs))
	seq := 0
	for _, r := range freqs.Symbols() {
		h = append(h, &Node{Symbol: r, Freq: freqs[r], seq: seq})
		seq++
	}
	heap.Init(&h)

	for h.Len() > 1 {
		left := heap.Pop(&h).(*Node)
		right := heap.Pop(&h).(*Node)
		heap.Push(&h, &Node{
			Freq:  left.Freq + right.Freq,
			Left:  left,
			Right: right,
			seq:   seq,
		})
		seq++
	}
	return heap.Pop(&h).(*Node), nil
}
