package inflate

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// zlibHeader returns cmf and flg with FCHECK set so the header is valid.
func zlibHeader(cmf, flg byte) []byte {
	flg &^= 0x1F
	if rem := (uint16(cmf)<<8 | uint16(flg)) % 31; rem != 0 {
		flg += byte(31 - rem)
	}

	return []byte{cmf, flg}
}

func TestZlibRoundTrip(t *testing.T) {
	r := require.New(t)

	input := sampleText(11, 30_000)

	for _, level := range []int{0, 1, 6, 9} {
		t.Run(fmt.Sprintf("level%d", level), func(t *testing.T) {
			enc, err := CompressZlib(input, level)
			r.NoError(err)

			dst := make([]byte, len(input))
			n, err := ZlibUncompress(dst, enc)
			r.NoError(err)
			r.Equal(len(input), n)
			r.True(bytes.Equal(input, dst))
		})
	}
}

func TestZlibUncompress(t *testing.T) {
	r := require.New(t)

	input := []byte("hello world\n")
	valid, err := CompressZlib(input, 6)
	r.NoError(err)

	withHeader := func(hdr []byte) []byte {
		return append(hdr, valid[2:]...)
	}

	testCases := []struct {
		name string

		src    []byte
		dstLen int

		checkErr func(err error, msgAndArgs ...interface{})
	}{
		{
			name:     "valid",
			src:      valid,
			dstLen:   len(input),
			checkErr: r.NoError,
		},
		{
			name:     "hand_built_header",
			src:      withHeader(zlibHeader(0x78, 0x00)),
			dstLen:   len(input),
			checkErr: r.NoError,
		},
		{
			name:     "too_short",
			src:      valid[:5],
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "bad_check_bits",
			src:      withHeader([]byte{0x78, 0x00}),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "bad_method",
			src:      withHeader(zlibHeader(0x77, 0x00)),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "bad_window",
			src:      withHeader(zlibHeader(0x88, 0x00)),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "preset_dictionary",
			src:      withHeader(zlibHeader(0x78, zlibPresetDict)),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name: "adler_mismatch",
			src: func() []byte {
				src := bytes.Clone(valid)
				src[len(src)-1] ^= 0xFF
				return src
			}(),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "dst_too_small",
			src:      valid,
			dstLen:   len(input) - 1,
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrBuffer) },
		},
		{
			name:     "invalid_payload",
			src:      append(zlibHeader(0x78, 0x00), 0xFF, 0, 0, 0, 0),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]byte, tc.dstLen)

			n, err := ZlibUncompress(dst, tc.src)
			tc.checkErr(err)

			if err == nil {
				r.Equal(string(input), string(dst[:n]))
			}
		})
	}
}
