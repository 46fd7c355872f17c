package inflate

import "fmt"

// Extra bits and bases for length codes 257..285.
var (
	lengthBits = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
		1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
		4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
		15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
		67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
)

// Extra bits and bases for distance codes 0..29.
var (
	distBits = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
		4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
		9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
		33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
		1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
)

// Block types.
const (
	blockStored  = 0
	blockFixed   = 1
	blockDynamic = 2
)

// decoder is the state of one decode call.
type decoder struct {
	br  bitReader
	out sink

	ltree huffmanTree
	dtree huffmanTree
}

func newDecoder(out sink) *decoder {
	return &decoder{
		br:  newBitReader(out),
		out: out,
	}
}

// run decodes blocks until the final one. The first error ends the decode.
func (d *decoder) run() error {
	for {
		final, err := d.br.getBits(1)
		if err != nil {
			return err
		}

		btype, err := d.br.getBits(2)
		if err != nil {
			return err
		}

		switch btype {
		case blockStored:
			err = d.inflateStoredBlock()
		case blockFixed:
			err = d.inflateFixedBlock()
		case blockDynamic:
			err = d.inflateDynamicBlock()
		default:
			err = fmt.Errorf("%w: invalid block type %d", ErrData, btype)
		}

		if err != nil {
			return err
		}

		if final == 1 {
			break
		}
	}

	return d.br.Err()
}

func (d *decoder) inflateStoredBlock() error {
	d.br.alignToByte()

	length, err := d.br.getBits(16)
	if err != nil {
		return err
	}

	invLength, err := d.br.getBits(16)
	if err != nil {
		return err
	}

	if length != ^invLength&0xFFFF {
		return fmt.Errorf("%w: stored block length %#04x does not match complement %#04x", ErrData, length, invLength)
	}

	if err := d.out.stored(length); err != nil {
		return err
	}

	// The next block starts on a byte boundary.
	d.br.reset()

	return nil
}

func (d *decoder) inflateFixedBlock() error {
	buildFixedTrees(&d.ltree, &d.dtree)

	return d.inflateBlockData()
}

func (d *decoder) inflateDynamicBlock() error {
	if err := d.decodeTrees(); err != nil {
		return err
	}

	return d.inflateBlockData()
}

// inflateBlockData runs the literal/match loop until end of block.
func (d *decoder) inflateBlockData() error {
	lt, dt := &d.ltree, &d.dtree

	for {
		sym, err := lt.decode(&d.br)
		if err != nil {
			return err
		}

		if sym < endOfBlock {
			if err := d.out.literal(byte(sym)); err != nil {
				return err
			}

			continue
		}

		if sym == endOfBlock {
			return nil
		}

		if sym > lt.maxSym || sym-257 > 28 || dt.maxSym == -1 {
			return fmt.Errorf("%w: invalid length symbol %d", ErrData, sym)
		}

		sym -= 257

		length, err := d.br.getBitsBase(uint(lengthBits[sym]), uint32(lengthBase[sym]))
		if err != nil {
			return err
		}

		dsym, err := dt.decode(&d.br)
		if err != nil {
			return err
		}

		if dsym > dt.maxSym || dsym > 29 {
			return fmt.Errorf("%w: invalid distance symbol %d", ErrData, dsym)
		}

		dist, err := d.br.getBitsBase(uint(distBits[dsym]), uint32(distBase[dsym]))
		if err != nil {
			return err
		}

		if err := d.out.match(dist, length); err != nil {
			return err
		}
	}
}

// Uncompress decodes the raw DEFLATE stream in src into dst and returns the
// number of bytes written. It never writes past len(dst); a dst too small for
// the output yields ErrBuffer.
func Uncompress(dst, src []byte) (int, error) {
	out := &bufferSink{src: src, dst: dst}

	if err := newDecoder(out).run(); err != nil {
		return 0, err
	}

	return out.dstPos, nil
}
