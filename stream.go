package inflate

import (
	"errors"
	"fmt"
	"io"
)

// PullFunc returns the next compressed byte. Any error, io.EOF included,
// means end of input. The signature matches io.ByteReader.ReadByte.
type PullFunc func() (byte, error)

// PushFunc accepts one decoded byte. A non-nil error aborts the decode with
// ErrBuffer. The signature matches io.ByteWriter.WriteByte.
type PushFunc func(b byte) error

// StreamOptions configures StreamUncompress.
type StreamOptions struct {
	// WindowBits sets the history size to 1<<WindowBits bytes. Streams that
	// refer further back than that fail with ErrWindowTooSmall.
	WindowBits int
}

// DefaultStreamOptions returns options with the full 32 KiB DEFLATE window.
func DefaultStreamOptions() *StreamOptions {
	return &StreamOptions{
		WindowBits: MaxWindowBits,
	}
}

// streamSink pulls input through the caller's callback and resolves matches
// against the bounded history window.
type streamSink struct {
	pull      PullFunc
	outWindow *window
}

func (s *streamSink) ReadByte() (byte, error) {
	return s.pull()
}

func (s *streamSink) literal(b byte) error {
	return s.outWindow.PutByte(b)
}

func (s *streamSink) match(dist, length uint32) error {
	if !s.outWindow.CheckDistance(dist) {
		return fmt.Errorf("%w: distance %d before start of output at offset %d", ErrData, dist, s.outWindow.TotalPos)
	}

	if !s.outWindow.Holds(dist) {
		return fmt.Errorf("%w: distance %d, window holds %d bytes", ErrWindowTooSmall, dist, s.outWindow.Size())
	}

	return s.outWindow.CopyMatch(dist, length)
}

func (s *streamSink) stored(n uint32) error {
	for i := uint32(0); i < n; i++ {
		b, err := s.pull()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errUnexpectedEOF
			}

			return fmt.Errorf("%w: stored block byte %d of %d: %w", ErrData, i, n, err)
		}

		if err := s.outWindow.PutByte(b); err != nil {
			return err
		}
	}

	return nil
}

// StreamUncompress decodes a raw DEFLATE stream byte by byte: input comes
// from pull, output goes to push. Back-references are resolved against a
// history of 1<<opts.WindowBits bytes. Options nil means
// DefaultStreamOptions().
func StreamUncompress(pull PullFunc, push PushFunc, opts *StreamOptions) error {
	if pull == nil || push == nil {
		return ErrNilCallback
	}

	if opts == nil {
		opts = DefaultStreamOptions()
	}

	outWindow, err := newWindow(push, opts.WindowBits)
	if err != nil {
		return err
	}

	return newDecoder(&streamSink{pull: pull, outWindow: outWindow}).run()
}
