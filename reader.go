package inflate

import (
	"bufio"
	"fmt"
	"io"
)

// Stats counts the bytes a Decode call consumed and produced.
type Stats struct {
	In  int64
	Out int64
}

// countingByteReader reads from a byte reader and counts the bytes read.
type countingByteReader struct {
	base  io.ByteReader
	count int64
}

func (r *countingByteReader) ReadByte() (byte, error) {
	b, err := r.base.ReadByte()
	if err != nil {
		return 0, err
	}

	r.count++

	return b, nil
}

// countingByteWriter writes to a byte writer and counts the bytes written.
type countingByteWriter struct {
	base  io.ByteWriter
	count int64
}

func (w *countingByteWriter) WriteByte(b byte) error {
	if err := w.base.WriteByte(b); err != nil {
		return err
	}

	w.count++

	return nil
}

// Decode streams the raw DEFLATE data in in to out through
// StreamUncompress. Output decoded before an error is still flushed to out.
func Decode(in io.Reader, out io.Writer, opts *StreamOptions) (Stats, error) {
	var byteReader io.ByteReader
	if existing, ok := in.(io.ByteReader); ok {
		byteReader = existing
	} else {
		byteReader = bufio.NewReader(in)
	}

	bw := bufio.NewWriter(out)
	cr := &countingByteReader{base: byteReader}
	cw := &countingByteWriter{base: bw}

	err := StreamUncompress(cr.ReadByte, cw.WriteByte, opts)
	stats := Stats{In: cr.count, Out: cw.count}

	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("%w: flush: %w", ErrBuffer, flushErr)
	}

	return stats, err
}
