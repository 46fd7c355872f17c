package inflate

import (
	"io"
	"math/rand"
	"strings"
)

// bitWriter packs DEFLATE bit fields for hand-built test streams.
type bitWriter struct {
	buf  []byte
	acc  byte
	nacc uint
}

// bits writes the low n bits of v, least significant first.
func (w *bitWriter) bits(v uint32, n uint) *bitWriter {
	for i := uint(0); i < n; i++ {
		w.acc |= byte(v>>i&1) << w.nacc
		w.nacc++

		if w.nacc == 8 {
			w.buf = append(w.buf, w.acc)
			w.acc, w.nacc = 0, 0
		}
	}

	return w
}

// code writes a Huffman code of the given length, most significant bit first.
func (w *bitWriter) code(c uint32, length uint) *bitWriter {
	for i := length; i > 0; i-- {
		w.bits(c>>(i-1)&1, 1)
	}

	return w
}

// fixedSymbol writes literal/length symbol sym with the fixed code.
func (w *bitWriter) fixedSymbol(sym int) *bitWriter {
	switch {
	case sym < 144:
		return w.code(uint32(0x30+sym), 8)
	case sym < 256:
		return w.code(uint32(0x190+sym-144), 9)
	case sym < 280:
		return w.code(uint32(sym-256), 7)
	default:
		return w.code(uint32(0xC0+sym-280), 8)
	}
}

func (w *bitWriter) align() *bitWriter {
	if w.nacc > 0 {
		w.buf = append(w.buf, w.acc)
		w.acc, w.nacc = 0, 0
	}

	return w
}

func (w *bitWriter) raw(p ...byte) *bitWriter {
	w.align()
	w.buf = append(w.buf, p...)

	return w
}

func (w *bitWriter) bytes() []byte {
	w.align()

	return w.buf
}

// storedBlock appends a stored block holding p.
func (w *bitWriter) storedBlock(final bool, p []byte) *bitWriter {
	w.bits(boolBit(final), 1).bits(blockStored, 2).align()
	n := uint16(len(p))
	w.raw(byte(n), byte(n>>8), byte(^n), byte(^n>>8))

	return w.raw(p...)
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}

var words = strings.Fields("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu nu xi omicron pi rho sigma tau upsilon")

// sampleText returns n bytes of repetitive text, deterministic per seed.
func sampleText(seed int64, n int) []byte {
	rnd := rand.New(rand.NewSource(seed))

	var sb strings.Builder
	for sb.Len() < n {
		sb.WriteString(words[rnd.Intn(len(words))])
		sb.WriteByte(' ')
	}

	return []byte(sb.String()[:n])
}

// sampleRandom returns n incompressible bytes, deterministic per seed.
func sampleRandom(seed int64, n int) []byte {
	rnd := rand.New(rand.NewSource(seed))
	p := make([]byte, n)
	rnd.Read(p)

	return p
}

// streamDecode runs stream mode over src and collects the output.
func streamDecode(src []byte, windowBits int) ([]byte, error) {
	var (
		out []byte
		pos int
	)

	pull := func() (byte, error) {
		if pos >= len(src) {
			return 0, io.EOF
		}

		b := src[pos]
		pos++

		return b, nil
	}

	push := func(b byte) error {
		out = append(out, b)

		return nil
	}

	err := StreamUncompress(pull, push, &StreamOptions{WindowBits: windowBits})

	return out, err
}
