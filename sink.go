package inflate

import (
	"fmt"
	"io"
)

// sink is the decode mode: where compressed bytes come from and where
// decoded bytes go. A decode uses exactly one implementation for its whole
// lifetime.
type sink interface {
	byteSource

	literal(b byte) error
	match(dist, length uint32) error
	// stored copies n raw bytes from input to output.
	stored(n uint32) error
}

// bufferSink decodes from src into the caller-owned dst, never writing
// past len(dst).
type bufferSink struct {
	src    []byte
	srcPos int

	dst    []byte
	dstPos int
}

func (s *bufferSink) ReadByte() (byte, error) {
	if s.srcPos >= len(s.src) {
		return 0, io.EOF
	}

	b := s.src[s.srcPos]
	s.srcPos++

	return b, nil
}

func (s *bufferSink) literal(b byte) error {
	if s.dstPos == len(s.dst) {
		return fmt.Errorf("%w: literal at offset %d", ErrBuffer, s.dstPos)
	}

	s.dst[s.dstPos] = b
	s.dstPos++

	return nil
}

func (s *bufferSink) match(dist, length uint32) error {
	if int(dist) > s.dstPos {
		return fmt.Errorf("%w: distance %d before start of output at offset %d", ErrData, dist, s.dstPos)
	}

	if len(s.dst)-s.dstPos < int(length) {
		return fmt.Errorf("%w: match of %d bytes at offset %d", ErrBuffer, length, s.dstPos)
	}

	// Forward byte copy: with dist < length the match reads bytes it has
	// just written.
	out := s.dst[s.dstPos-int(dist):]
	for i := 0; i < int(length); i++ {
		out[int(dist)+i] = out[i]
	}

	s.dstPos += int(length)

	return nil
}

func (s *bufferSink) stored(n uint32) error {
	if len(s.src)-s.srcPos < int(n) {
		return fmt.Errorf("%w: stored block of %d bytes with %d left", ErrData, n, len(s.src)-s.srcPos)
	}

	if len(s.dst)-s.dstPos < int(n) {
		return fmt.Errorf("%w: stored block of %d bytes at offset %d", ErrBuffer, n, s.dstPos)
	}

	copy(s.dst[s.dstPos:], s.src[s.srcPos:s.srcPos+int(n)])
	s.srcPos += int(n)
	s.dstPos += int(n)

	return nil
}
