package inflate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// CompressOptions configures the compression side, which produces streams
// this package decodes. Compression itself is delegated to
// github.com/klauspost/compress.
type CompressOptions struct {
	// Level is a flate level from flate.HuffmanOnly to flate.BestCompression.
	// Below MaxWindowBits only flate.NoCompression and flate.HuffmanOnly are
	// honoured; other levels use the custom-window encoder.
	Level int
	// WindowBits bounds back-reference distances to 1<<WindowBits bytes.
	WindowBits int
}

// DefaultCompressOptions returns level 6 with the full 32 KiB window.
func DefaultCompressOptions() *CompressOptions {
	return &CompressOptions{
		Level:      6,
		WindowBits: MaxWindowBits,
	}
}

func (o *CompressOptions) validate() error {
	if o.WindowBits < MinWindowBits || o.WindowBits > MaxWindowBits {
		return fmt.Errorf("%w: %d, want %d..%d", ErrInvalidWindowBits, o.WindowBits, MinWindowBits, MaxWindowBits)
	}

	if o.Level < flate.HuffmanOnly || o.Level > flate.BestCompression {
		return fmt.Errorf("inflate: compression level %d out of range", o.Level)
	}

	return nil
}

// LevelIgnored reports whether the narrowed window forces the custom-window
// encoder, which has a single compression level. Stored and Huffman-only
// output never refers back, so those levels fit any window.
func (o *CompressOptions) LevelIgnored() bool {
	if o.WindowBits >= MaxWindowBits {
		return false
	}

	return o.Level != flate.NoCompression && o.Level != flate.HuffmanOnly
}

// NewCompressWriter returns a writer that compresses to raw DEFLATE on w.
// Options nil means DefaultCompressOptions(). The caller must Close it.
func NewCompressWriter(w io.Writer, opts *CompressOptions) (io.WriteCloser, error) {
	if opts == nil {
		opts = DefaultCompressOptions()
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	var (
		fw  *flate.Writer
		err error
	)

	if opts.LevelIgnored() {
		fw, err = flate.NewWriterWindow(w, 1<<opts.WindowBits)
	} else {
		fw, err = flate.NewWriter(w, opts.Level)
	}

	if err != nil {
		return nil, fmt.Errorf("inflate: flate writer: %w", err)
	}

	return fw, nil
}

// Compress compresses src to raw DEFLATE.
func Compress(src []byte, opts *CompressOptions) ([]byte, error) {
	var buf bytes.Buffer

	w, err := NewCompressWriter(&buf, opts)
	if err != nil {
		return nil, err
	}

	return finish(&buf, w, src)
}

// CompressZlib compresses src into a zlib stream.
func CompressZlib(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("inflate: zlib writer: %w", err)
	}

	return finish(&buf, w, src)
}

// CompressGzip compresses src into a single gzip member.
func CompressGzip(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("inflate: gzip writer: %w", err)
	}

	return finish(&buf, w, src)
}

func finish(buf *bytes.Buffer, w io.WriteCloser, src []byte) ([]byte, error) {
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("inflate: compress: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("inflate: compress: %w", err)
	}

	return buf.Bytes(), nil
}
