package inflate

import "fmt"

const (
	maxLitLenCodes     = 286
	maxDistCodes       = 30
	numCodeLengthCodes = 19
	endOfBlock         = 256
)

// codeLengthOrder is the order in which code length code lengths are sent.
var codeLengthOrder = [numCodeLengthCodes]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// decodeTrees reads a dynamic block header and builds d.ltree and d.dtree.
func (d *decoder) decodeTrees() error {
	var lengths [maxLitLenCodes + maxDistCodes]uint8

	hlit, err := d.br.getBitsBase(5, 257)
	if err != nil {
		return err
	}

	hdist, err := d.br.getBitsBase(5, 1)
	if err != nil {
		return err
	}

	hclen, err := d.br.getBitsBase(4, 4)
	if err != nil {
		return err
	}

	// HDIST may encode 31 and 32 but distance codes 30 and 31 never occur.
	if hlit > maxLitLenCodes || hdist > maxDistCodes {
		return fmt.Errorf("%w: HLIT %d HDIST %d out of range", ErrData, hlit, hdist)
	}

	for i := uint32(0); i < hclen; i++ {
		clen, err := d.br.getBits(3)
		if err != nil {
			return err
		}

		lengths[codeLengthOrder[i]] = uint8(clen)
	}

	// The literal/length tree doubles as the code length tree.
	clTree := &d.ltree
	if err := clTree.build(lengths[:numCodeLengthCodes]); err != nil {
		return fmt.Errorf("code length tree: %w", err)
	}

	if clTree.maxSym == -1 {
		return fmt.Errorf("%w: empty code length tree", ErrData)
	}

	total := hlit + hdist

	for num := uint32(0); num < total; {
		sym, err := clTree.decode(&d.br)
		if err != nil {
			return err
		}

		if sym > clTree.maxSym {
			return fmt.Errorf("%w: code length symbol %d out of range", ErrData, sym)
		}

		var (
			fill uint8
			run  uint32
		)

		switch sym {
		case 16:
			if num == 0 {
				return fmt.Errorf("%w: repeat code with no previous length", ErrData)
			}

			fill = lengths[num-1]
			run, err = d.br.getBitsBase(2, 3)
		case 17:
			run, err = d.br.getBitsBase(3, 3)
		case 18:
			run, err = d.br.getBitsBase(7, 11)
		default:
			fill = uint8(sym)
			run = 1
		}

		if err != nil {
			return err
		}

		if run > total-num {
			return fmt.Errorf("%w: code length run of %d overflows %d slots", ErrData, run, total-num)
		}

		for ; run > 0; run-- {
			lengths[num] = fill
			num++
		}
	}

	if lengths[endOfBlock] == 0 {
		return fmt.Errorf("%w: missing end-of-block code", ErrData)
	}

	if err := d.ltree.build(lengths[:hlit]); err != nil {
		return fmt.Errorf("literal/length tree: %w", err)
	}

	if err := d.dtree.build(lengths[hlit:total]); err != nil {
		return fmt.Errorf("distance tree: %w", err)
	}

	return nil
}
