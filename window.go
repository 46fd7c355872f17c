package inflate

import "fmt"

// Stream history limits, as log2 of the window size in bytes.
const (
	MinWindowBits = 9
	MaxWindowBits = 15
)

// window is the stream-mode history: a ring holding the most recent
// 1<<bits decoded bytes. Every byte put into it is also pushed to the caller.
type window struct {
	push PushFunc

	buf  []byte
	mask uint64
	size uint64

	TotalPos uint64
}

func newWindow(push PushFunc, bits int) (*window, error) {
	if bits < MinWindowBits || bits > MaxWindowBits {
		return nil, fmt.Errorf("%w: %d, want %d..%d", ErrInvalidWindowBits, bits, MinWindowBits, MaxWindowBits)
	}

	size := uint64(1) << bits

	return &window{
		push: push,

		buf:  make([]byte, size),
		mask: size - 1,
		size: size,

		TotalPos: 0,
	}, nil
}

func (w *window) PutByte(b byte) error {
	if err := w.push(b); err != nil {
		return fmt.Errorf("%w: push at offset %d: %w", ErrBuffer, w.TotalPos, err)
	}

	w.buf[w.TotalPos&w.mask] = b
	w.TotalPos++

	return nil
}

func (w *window) GetByte(dist uint32) byte {
	return w.buf[(w.TotalPos-uint64(dist))&w.mask]
}

// CopyMatch emits length bytes starting dist bytes back, one at a time so a
// match may overlap the bytes it produces.
func (w *window) CopyMatch(dist, length uint32) error {
	for ; length > 0; length-- {
		if err := w.PutByte(w.GetByte(dist)); err != nil {
			return err
		}
	}

	return nil
}

// CheckDistance reports whether dist points inside the output produced so far.
func (w *window) CheckDistance(dist uint32) bool {
	return uint64(dist) <= w.TotalPos
}

// Holds reports whether the byte dist positions back is still in the ring.
func (w *window) Holds(dist uint32) bool {
	return uint64(dist) < w.size
}

func (w *window) Size() int {
	return int(w.size)
}
