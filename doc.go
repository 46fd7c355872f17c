/*
Package inflate implements a DEFLATE (RFC 1951) decompressor with two output
disciplines sharing one decoding engine.

Buffer mode decodes from one slice into another and never writes past the
destination:

	n, err := inflate.Uncompress(dst, src)
	if errors.Is(err, inflate.ErrBuffer) {
		// dst is too small
	}

Stream mode pulls compressed bytes and pushes decoded bytes one at a time.
Back-references are resolved against a ring of 1<<WindowBits bytes instead of
the whole output, so memory stays bounded; a stream that reaches further back
fails with ErrWindowTooSmall:

	in := bufio.NewReader(f)
	out := bufio.NewWriter(os.Stdout)
	err := inflate.StreamUncompress(in.ReadByte, out.WriteByte, &inflate.StreamOptions{WindowBits: 9})

Decode wraps stream mode for an io.Reader and io.Writer. ZlibUncompress and
GzipUncompress validate the zlib and gzip containers around buffer mode.
Compress and NewCompressWriter produce compatible raw DEFLATE data with
github.com/klauspost/compress.

Every decode error wraps ErrData, ErrBuffer or ErrWindowTooSmall.
*/
package inflate
