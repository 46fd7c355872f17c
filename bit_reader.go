package inflate

import (
	"errors"
	"fmt"
	"io"
)

// byteSource is the input side of a decode: a slice cursor in buffer mode or
// the caller's pull function in stream mode.
type byteSource interface {
	ReadByte() (byte, error)
}

// bitReader serves little-endian bit fields from a byteSource. Reads are
// irrevocable; once the source runs dry every further read fails.
type bitReader struct {
	src byteSource

	tag      uint64
	bitcount uint
	err      error
}

func newBitReader(src byteSource) bitReader {
	return bitReader{src: src}
}

func (r *bitReader) refill(n uint) error {
	if r.err != nil {
		return r.err
	}

	for r.bitcount < n {
		b, err := r.src.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errUnexpectedEOF
			}

			r.err = fmt.Errorf("%w: %w", ErrData, err)

			return r.err
		}

		r.tag |= uint64(b) << r.bitcount
		r.bitcount += 8
	}

	return nil
}

// getBits returns the next n bits (n <= 32) as an unsigned value.
func (r *bitReader) getBits(n uint) (uint32, error) {
	if err := r.refill(n); err != nil {
		return 0, err
	}

	bits := uint32(r.tag & (1<<n - 1))
	r.tag >>= n
	r.bitcount -= n

	return bits, nil
}

// getBitsBase reads an n-bit extra field and adds it to base.
func (r *bitReader) getBitsBase(n uint, base uint32) (uint32, error) {
	if n == 0 {
		return base, nil
	}

	bits, err := r.getBits(n)
	if err != nil {
		return 0, err
	}

	return base + bits, nil
}

// alignToByte discards the bits left over from a partially consumed byte.
func (r *bitReader) alignToByte() {
	drop := r.bitcount & 7
	r.tag >>= drop
	r.bitcount -= drop
}

func (r *bitReader) reset() {
	r.tag = 0
	r.bitcount = 0
}

// Err reports whether the reader ever ran past the end of its input.
func (r *bitReader) Err() error {
	return r.err
}
