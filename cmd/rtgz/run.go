package main

import (
	"bytes"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kulaginds/inflate"
	"github.com/kulaginds/inflate/internal/config"
)

// Exit codes.
const (
	exitOK          = 0
	exitDataError   = -3
	exitUsage       = -5
	exitBufferError = -5
	exitBadWindow   = -6
	exitOpenInput   = -7
	exitOpenOutput  = -8
	exitWindowError = -8
	exitWriteError  = -12
	exitReadError   = -13
)

const initialZlibBuffer = 64 << 10

var (
	errOpenInput  = errors.New("can't open in file")
	errOpenOutput = errors.New("can't open out file")
	errRead       = errors.New("read failure on in file")
	errWrite      = errors.New("error writing output")
)

func usageExitCode(err error) int {
	if errors.Is(err, config.ErrInvalidWindowBits) {
		return exitBadWindow
	}

	return exitUsage
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, inflate.ErrWindowTooSmall):
		return exitWindowError
	case errors.Is(err, inflate.ErrData):
		return exitDataError
	case errors.Is(err, inflate.ErrBuffer):
		return exitBufferError
	case errors.Is(err, errOpenInput):
		return exitOpenInput
	case errors.Is(err, errOpenOutput):
		return exitOpenOutput
	case errors.Is(err, errRead):
		return exitReadError
	default:
		return exitWriteError
	}
}

// run executes one compress or decompress pass and returns the exit code.
func run(cli *config.CLI, stdin io.Reader, stdout io.Writer) int {
	log := logrus.WithFields(logrus.Fields{
		"compress":    cli.Compress,
		"format":      cli.Format,
		"window_bits": cli.WindowBits,
	})

	stats, err := execute(cli, stdin, stdout)
	if err != nil {
		log.Errorf("Error: %s", err)
		return exitCode(err)
	}

	if cli.Verbose {
		reportStats(cli, stats)
	}

	log.Debugf("done: %d bytes in, %d bytes out", stats.In, stats.Out)

	return exitOK
}

func execute(cli *config.CLI, stdin io.Reader, stdout io.Writer) (inflate.Stats, error) {
	in := stdin
	if cli.Input != "" {
		f, err := os.Open(cli.Input)
		if err != nil {
			return inflate.Stats{}, errors.Wrapf(errOpenInput, "%s: %s", cli.Input, err)
		}
		defer f.Close()

		in = f
	}

	out := stdout
	if cli.Output != "" {
		f, err := os.Create(cli.Output)
		if err != nil {
			return inflate.Stats{}, errors.Wrapf(errOpenOutput, "%s: %s", cli.Output, err)
		}
		defer f.Close()

		out = f
	}

	if cli.Compress {
		return compress(cli, in, out)
	}

	switch cli.Format {
	case config.FormatGzip:
		return decompressGzip(cli, in, out)
	case config.FormatZlib:
		return decompressZlib(cli, in, out)
	default:
		return decompressRaw(cli, in, out)
	}
}

// taggedReader marks errors from the input side so io.Copy failures can be
// told apart from output failures.
type taggedReader struct {
	r io.Reader
}

func (t taggedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		err = errors.Wrapf(errRead, "%s", err)
	}

	return n, err
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += int64(n)

	return n, err
}

func compress(cli *config.CLI, in io.Reader, out io.Writer) (inflate.Stats, error) {
	cw := &countingWriter{w: out}

	opts := &inflate.CompressOptions{
		Level:      cli.Level,
		WindowBits: cli.WindowBits,
	}

	if opts.LevelIgnored() {
		logrus.Warnf("compression level %d is not applied with w_bits = %d, only 0 and -2 are; use -w %d for other levels",
			cli.Level, cli.WindowBits, inflate.MaxWindowBits)
	}

	w, err := inflate.NewCompressWriter(cw, opts)
	if err != nil {
		return inflate.Stats{}, errors.Wrap(err, "error creating compressor")
	}

	n, err := io.Copy(w, taggedReader{r: in})
	if err != nil {
		if errors.Is(err, errRead) {
			return inflate.Stats{}, err
		}

		return inflate.Stats{}, errors.Wrapf(errWrite, "error writing compressed data: %s", err)
	}

	if err := w.Close(); err != nil {
		return inflate.Stats{}, errors.Wrapf(errWrite, "%s", err)
	}

	return inflate.Stats{In: n, Out: cw.count}, nil
}

func decompressRaw(cli *config.CLI, in io.Reader, out io.Writer) (inflate.Stats, error) {
	stats, err := inflate.Decode(in, out, &inflate.StreamOptions{WindowBits: cli.WindowBits})
	if err != nil {
		return stats, errors.Wrapf(err, "decompression failed after %d bytes", stats.Out)
	}

	return stats, nil
}

func decompressGzip(cli *config.CLI, in io.Reader, out io.Writer) (inflate.Stats, error) {
	src, err := io.ReadAll(in)
	if err != nil {
		return inflate.Stats{}, errors.Wrapf(errRead, "%s", err)
	}

	size, err := inflate.GzipSize(src)
	if err != nil {
		return inflate.Stats{}, err
	}

	if int64(size) > cli.MaxSize || uint64(size) > math.MaxInt {
		return inflate.Stats{}, errors.Wrapf(inflate.ErrBuffer, "gzip member holds %d bytes, max size is %d", size, cli.MaxSize)
	}

	dst := make([]byte, size)

	n, err := inflate.GzipUncompress(dst, src)
	if err != nil {
		return inflate.Stats{}, err
	}

	return writeAll(out, src, dst[:n])
}

// decompressZlib grows the destination until the stream fits or maxSize is
// reached; zlib streams do not record their decoded size.
func decompressZlib(cli *config.CLI, in io.Reader, out io.Writer) (inflate.Stats, error) {
	src, err := io.ReadAll(in)
	if err != nil {
		return inflate.Stats{}, errors.Wrapf(errRead, "%s", err)
	}

	size := int64(max(initialZlibBuffer, 4*len(src)))

	for {
		size = min(size, cli.MaxSize)
		dst := make([]byte, size)

		n, err := inflate.ZlibUncompress(dst, src)
		if err == nil {
			return writeAll(out, src, dst[:n])
		}

		if !errors.Is(err, inflate.ErrBuffer) || size == cli.MaxSize {
			return inflate.Stats{}, err
		}

		logrus.Debugf("zlib output exceeds %d bytes, retrying", size)

		size *= 2
	}
}

func writeAll(out io.Writer, src, decoded []byte) (inflate.Stats, error) {
	if _, err := io.Copy(out, bytes.NewReader(decoded)); err != nil {
		return inflate.Stats{}, errors.Wrapf(errWrite, "%s", err)
	}

	return inflate.Stats{In: int64(len(src)), Out: int64(len(decoded))}, nil
}

func reportStats(cli *config.CLI, stats inflate.Stats) {
	if cli.Compress {
		ratio := 0.0
		if stats.In > 0 {
			ratio = 100.0 * float64(stats.Out) / float64(stats.In)
		}

		logrus.Infof("Compression: %d / %d (%.2f%%) (w_bits = %d)", stats.In, stats.Out, ratio, cli.WindowBits)

		return
	}

	ratio := 0.0
	if stats.Out > 0 {
		ratio = 100.0 * float64(stats.In) / float64(stats.Out)
	}

	logrus.Infof("Decompression: %d -> %d (Was %.2f%%) (w_bits: %d)", stats.In, stats.Out, ratio, cli.WindowBits)
}
