package inflate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	gzipHeaderLen  = 10
	gzipTrailerLen = 8
	gzipID1        = 0x1F
	gzipID2        = 0x8B
	gzipDeflate    = 8
)

// gzip header flags.
const (
	gzipFlagText     = 1 << 0
	gzipFlagHCRC     = 1 << 1
	gzipFlagExtra    = 1 << 2
	gzipFlagName     = 1 << 3
	gzipFlagComment  = 1 << 4
	gzipFlagReserved = 0xE0
)

// GzipSize returns the uncompressed size recorded in the trailer of a gzip
// member, modulo 2^32. Use it to size dst for GzipUncompress.
func GzipSize(src []byte) (uint32, error) {
	if len(src) < gzipHeaderLen+gzipTrailerLen {
		return 0, fmt.Errorf("%w: gzip member of %d bytes is too short", ErrData, len(src))
	}

	return binary.LittleEndian.Uint32(src[len(src)-4:]), nil
}

// GzipUncompress decodes a single gzip (RFC 1952) member from src into dst
// and returns the number of bytes written.
func GzipUncompress(dst, src []byte) (int, error) {
	dlen, err := GzipSize(src)
	if err != nil {
		return 0, err
	}

	if src[0] != gzipID1 || src[1] != gzipID2 {
		return 0, fmt.Errorf("%w: not a gzip member", ErrData)
	}

	if src[2] != gzipDeflate {
		return 0, fmt.Errorf("%w: gzip compression method %d", ErrData, src[2])
	}

	flg := src[3]
	if flg&gzipFlagReserved != 0 {
		return 0, fmt.Errorf("%w: gzip reserved flags %#02x", ErrData, flg&gzipFlagReserved)
	}

	start, err := gzipPayloadStart(src, flg)
	if err != nil {
		return 0, err
	}

	if uint64(dlen) > uint64(len(dst)) {
		return 0, fmt.Errorf("%w: gzip member holds %d bytes, dst has room for %d", ErrBuffer, dlen, len(dst))
	}

	want := binary.LittleEndian.Uint32(src[len(src)-8:])

	if len(src)-start < gzipTrailerLen {
		return 0, fmt.Errorf("%w: gzip header overlaps trailer", ErrData)
	}

	n, err := Uncompress(dst, src[start:len(src)-gzipTrailerLen])
	if err != nil {
		return 0, fmt.Errorf("gzip: %w", err)
	}

	if uint64(n) != uint64(dlen) {
		return 0, fmt.Errorf("%w: gzip size mismatch: got=%d expected=%d", ErrData, n, dlen)
	}

	if got := crc32.ChecksumIEEE(dst[:n]); got != want {
		return 0, fmt.Errorf("%w: crc-32 mismatch: got=%#08x expected=%#08x", ErrData, got, want)
	}

	return n, nil
}

// gzipPayloadStart skips the optional header fields selected by flg and
// returns the offset of the DEFLATE data.
func gzipPayloadStart(src []byte, flg byte) (int, error) {
	start := gzipHeaderLen

	if flg&gzipFlagExtra != 0 {
		if len(src)-start < 2 {
			return 0, fmt.Errorf("%w: truncated gzip extra field", ErrData)
		}

		xlen := int(binary.LittleEndian.Uint16(src[start:]))
		if xlen > len(src)-start-2 {
			return 0, fmt.Errorf("%w: gzip extra field of %d bytes overruns input", ErrData, xlen)
		}

		start += 2 + xlen
	}

	for _, field := range []struct {
		flag byte
		name string
	}{
		{gzipFlagName, "file name"},
		{gzipFlagComment, "comment"},
	} {
		if flg&field.flag == 0 {
			continue
		}

		end := bytes.IndexByte(src[start:], 0)
		if end < 0 {
			return 0, fmt.Errorf("%w: unterminated gzip %s", ErrData, field.name)
		}

		start += end + 1
	}

	if flg&gzipFlagHCRC != 0 {
		if len(src)-start < 2 {
			return 0, fmt.Errorf("%w: truncated gzip header crc", ErrData)
		}

		want := binary.LittleEndian.Uint16(src[start:])
		if got := uint16(crc32.ChecksumIEEE(src[:start])); got != want {
			return 0, fmt.Errorf("%w: gzip header crc mismatch: got=%#04x expected=%#04x", ErrData, got, want)
		}

		start += 2
	}

	return start, nil
}
