package inflate

import (
	"encoding/binary"
	"fmt"
	"hash/adler32"
)

const (
	zlibHeaderLen  = 2
	zlibTrailerLen = 4
	zlibDeflate    = 8
	zlibMaxCInfo   = 7
	zlibPresetDict = 0x20
)

// ZlibUncompress decodes a zlib (RFC 1950) stream from src into dst and
// returns the number of bytes written. Streams with a preset dictionary are
// rejected.
func ZlibUncompress(dst, src []byte) (int, error) {
	if len(src) < zlibHeaderLen+zlibTrailerLen {
		return 0, fmt.Errorf("%w: zlib stream of %d bytes is too short", ErrData, len(src))
	}

	cmf, flg := src[0], src[1]

	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return 0, fmt.Errorf("%w: zlib header check bits", ErrData)
	}

	if cmf&0x0F != zlibDeflate {
		return 0, fmt.Errorf("%w: zlib compression method %d", ErrData, cmf&0x0F)
	}

	if cmf>>4 > zlibMaxCInfo {
		return 0, fmt.Errorf("%w: zlib window size %d", ErrData, cmf>>4)
	}

	if flg&zlibPresetDict != 0 {
		return 0, fmt.Errorf("%w: zlib preset dictionary", ErrData)
	}

	want := binary.BigEndian.Uint32(src[len(src)-zlibTrailerLen:])

	n, err := Uncompress(dst, src[zlibHeaderLen:len(src)-zlibTrailerLen])
	if err != nil {
		return 0, fmt.Errorf("zlib: %w", err)
	}

	if got := adler32.Checksum(dst[:n]); got != want {
		return 0, fmt.Errorf("%w: adler-32 mismatch: got=%#08x expected=%#08x", ErrData, got, want)
	}

	return n, nil
}
