package inflate

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"
)

type gzipMember struct {
	flg     byte
	extra   []byte
	name    string
	comment string
	badHCRC bool
}

// build assembles a gzip member around the raw DEFLATE data of input.
func (m gzipMember) build(t *testing.T, input []byte) []byte {
	t.Helper()

	src := []byte{gzipID1, gzipID2, gzipDeflate, m.flg, 0, 0, 0, 0, 0, 0xFF}

	if m.flg&gzipFlagExtra != 0 {
		src = binary.LittleEndian.AppendUint16(src, uint16(len(m.extra)))
		src = append(src, m.extra...)
	}

	if m.flg&gzipFlagName != 0 {
		src = append(append(src, m.name...), 0)
	}

	if m.flg&gzipFlagComment != 0 {
		src = append(append(src, m.comment...), 0)
	}

	if m.flg&gzipFlagHCRC != 0 {
		hcrc := uint16(crc32.ChecksumIEEE(src))
		if m.badHCRC {
			hcrc++
		}

		src = binary.LittleEndian.AppendUint16(src, hcrc)
	}

	enc, err := Compress(input, nil)
	require.NoError(t, err)

	src = append(src, enc...)
	src = binary.LittleEndian.AppendUint32(src, crc32.ChecksumIEEE(input))

	return binary.LittleEndian.AppendUint32(src, uint32(len(input)))
}

func TestGzipRoundTrip(t *testing.T) {
	r := require.New(t)

	input := sampleText(12, 50_000)

	enc, err := CompressGzip(input, 9)
	r.NoError(err)

	size, err := GzipSize(enc)
	r.NoError(err)
	r.EqualValues(len(input), size)

	dst := make([]byte, size)
	n, err := GzipUncompress(dst, enc)
	r.NoError(err)
	r.Equal(len(input), n)
	r.True(bytes.Equal(input, dst))
}

func TestGzipUncompress(t *testing.T) {
	r := require.New(t)

	input := []byte("Hello world, how are you doing today today?")
	allFields := gzipFlagText | gzipFlagExtra | gzipFlagName | gzipFlagComment | gzipFlagHCRC

	valid := gzipMember{}.build(t, input)

	patch := func(src []byte, fn func(p []byte)) []byte {
		p := bytes.Clone(src)
		fn(p)

		return p
	}

	testCases := []struct {
		name string

		src    []byte
		dstLen int

		checkErr func(err error, msgAndArgs ...interface{})
	}{
		{
			name:     "minimal_header",
			src:      valid,
			dstLen:   len(input),
			checkErr: r.NoError,
		},
		{
			name: "all_optional_fields",
			src: gzipMember{
				flg:     byte(allFields),
				extra:   []byte{'A', 'B', 2, 0, 0xCA, 0xFE},
				name:    "today.txt",
				comment: "greeting",
			}.build(t, input),
			dstLen:   len(input),
			checkErr: r.NoError,
		},
		{
			name: "header_crc_mismatch",
			src: gzipMember{
				flg:     gzipFlagName | gzipFlagHCRC,
				name:    "today.txt",
				badHCRC: true,
			}.build(t, input),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "too_short",
			src:      valid[:gzipHeaderLen+gzipTrailerLen-1],
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "bad_magic",
			src:      patch(valid, func(p []byte) { p[1] = 0x8C }),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "bad_method",
			src:      patch(valid, func(p []byte) { p[2] = 7 }),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "reserved_flags",
			src:      patch(valid, func(p []byte) { p[3] = 0x20 }),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name: "extra_field_overrun",
			src: patch(gzipMember{flg: gzipFlagExtra, extra: []byte{1, 2}}.build(t, input), func(p []byte) {
				binary.LittleEndian.PutUint16(p[gzipHeaderLen:], 0xFFFF)
			}),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "crc_mismatch",
			src:      patch(valid, func(p []byte) { p[len(p)-8] ^= 0x01 }),
			dstLen:   len(input),
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name: "size_mismatch",
			src: patch(valid, func(p []byte) {
				binary.LittleEndian.PutUint32(p[len(p)-4:], uint32(len(input)-1))
			}),
			dstLen:   len(input) + 16,
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrData) },
		},
		{
			name:     "dst_too_small",
			src:      valid,
			dstLen:   len(input) - 1,
			checkErr: func(err error, _ ...interface{}) { r.ErrorIs(err, ErrBuffer) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]byte, tc.dstLen)

			n, err := GzipUncompress(dst, tc.src)
			tc.checkErr(err)

			if err == nil {
				r.Equal(string(input), string(dst[:n]))
			}
		})
	}
}

func TestGzipSizeFullRange(t *testing.T) {
	r := require.New(t)

	src := gzipMember{}.build(t, []byte("hello"))
	binary.LittleEndian.PutUint32(src[len(src)-4:], 0xFFFFFFFF)

	size, err := GzipSize(src)
	r.NoError(err)
	r.Equal(uint32(0xFFFFFFFF), size)

	_, err = GzipUncompress(make([]byte, 16), src)
	r.ErrorIs(err, ErrBuffer)
}
