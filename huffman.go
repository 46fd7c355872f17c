package inflate

import "fmt"

const (
	maxCodeLen = 15  // longest code length allowed by RFC 1951
	maxSymbols = 288 // literal/length alphabet including the two unused codes
)

// huffmanTree is a canonical Huffman decode table: the number of codes of
// each length and the symbols sorted by code. No node graph is built.
type huffmanTree struct {
	counts  [maxCodeLen + 1]uint16
	symbols [maxSymbols]uint16
	maxSym  int
}

// build fills t from per-symbol code lengths. An over-subscribed or
// incomplete set of lengths is rejected, except for the single code of
// length 1 that RFC 1951 allows for one-symbol alphabets.
func (t *huffmanTree) build(lengths []uint8) error {
	var offs [maxCodeLen + 1]uint16

	t.counts = [maxCodeLen + 1]uint16{}
	t.maxSym = -1

	for i, l := range lengths {
		if l > maxCodeLen {
			return fmt.Errorf("%w: code length %d for symbol %d", ErrData, l, i)
		}

		if l != 0 {
			t.maxSym = i
			t.counts[l]++
		}
	}

	available := uint32(1)
	numCodes := uint32(0)

	for i := 0; i <= maxCodeLen; i++ {
		used := uint32(t.counts[i])
		if used > available {
			return fmt.Errorf("%w: over-subscribed huffman tree at length %d", ErrData, i)
		}

		available = 2 * (available - used)

		offs[i] = uint16(numCodes)
		numCodes += used
	}

	if (numCodes > 1 && available > 0) || (numCodes == 1 && t.counts[1] != 1) {
		return fmt.Errorf("%w: incomplete huffman tree", ErrData)
	}

	for i, l := range lengths {
		if l != 0 {
			t.symbols[offs[l]] = uint16(i)
			offs[l]++
		}
	}

	// A lone code 0 gets a partner code 1 that decodes to a symbol past
	// maxSym, so the walk always terminates and callers reject it.
	if numCodes == 1 {
		t.counts[1] = 2
		t.symbols[1] = uint16(t.maxSym + 1)
	}

	return nil
}

// decode reads one symbol. It tracks the position of the code among all
// codes sorted canonically, which is the index into symbols.
func (t *huffmanTree) decode(br *bitReader) (int, error) {
	base, offs := 0, 0

	for l := 1; l <= maxCodeLen; l++ {
		bit, err := br.getBits(1)
		if err != nil {
			return 0, err
		}

		offs = 2*offs + int(bit)

		count := int(t.counts[l])
		if offs < count {
			return int(t.symbols[base+offs]), nil
		}

		base += count
		offs -= count
	}

	return 0, fmt.Errorf("%w: no huffman code within %d bits", ErrData, maxCodeLen)
}

// buildFixedTrees installs the literal/length and distance trees of
// RFC 1951 section 3.2.6.
func buildFixedTrees(lt, dt *huffmanTree) {
	lt.counts = [maxCodeLen + 1]uint16{7: 24, 8: 152, 9: 112}

	for i := 0; i < 24; i++ {
		lt.symbols[i] = uint16(256 + i)
	}
	for i := 0; i < 144; i++ {
		lt.symbols[24+i] = uint16(i)
	}
	for i := 0; i < 8; i++ {
		lt.symbols[24+144+i] = uint16(280 + i)
	}
	for i := 0; i < 112; i++ {
		lt.symbols[24+144+8+i] = uint16(144 + i)
	}

	lt.maxSym = 285

	dt.counts = [maxCodeLen + 1]uint16{5: 32}

	for i := 0; i < 32; i++ {
		dt.symbols[i] = uint16(i)
	}

	dt.maxSym = 29
}
