package workbook

import (
	"errors"

	"github.com/nochso/xlsbiff/biff"
)

// parseSheet decodes one sheet's substream, starting at the BOF record
// located at bofOffset, into a populated Sheet.
func parseSheet(buf []byte, biffVersion uint16, sst []sstString, name string, hidden bool, bofOffset int64) (*Sheet, error) {
	recs, err := collectSubstream(buf, bofOffset)
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name, Hidden: hidden, Grid: make(map[CellRef]Cell)}

	var pendingFormulaRow, pendingFormulaCol uint16
	havePendingFormula := false

	for i := 0; i < len(recs); i++ {
		r := recs[i]
		switch r.Sid {
		case biff.SidNumber:
			row, col, _, err := cellPrefix(r.Data)
			if err != nil {
				return nil, err
			}
			v, err := biff.F64LE(r.Data, 6)
			if err != nil {
				return nil, err
			}
			sheet.place(row, col, Number(v))

		case biff.SidRK:
			row, col, _, err := cellPrefix(r.Data)
			if err != nil {
				return nil, err
			}
			rk, err := biff.U32LE(r.Data, 6)
			if err != nil {
				return nil, err
			}
			sheet.place(row, col, Number(biff.DecodeRK(rk)))

		case biff.SidMulRK:
			if err := parseMulRK(sheet, r.Data); err != nil {
				return nil, err
			}

		case biff.SidLabel:
			row, col, _, err := cellPrefix(r.Data)
			if err != nil {
				return nil, err
			}
			var s string
			if biffVersion >= 0x0600 {
				s, _, err = decodeUnicodeString(r.Data[6:])
			} else {
				s, _, err = decodeShortString(r.Data[6:])
			}
			if err != nil {
				return nil, err
			}
			sheet.place(row, col, Text(s))

		case biff.SidLabelSST:
			row, col, _, err := cellPrefix(r.Data)
			if err != nil {
				return nil, err
			}
			idx, err := biff.U32LE(r.Data, 6)
			if err != nil {
				return nil, err
			}
			if int(idx) < len(sst) {
				// an out-of-range index is skipped, not an error
				sheet.place(row, col, Text(sst[idx].text))
			}

		case biff.SidBoolErr:
			row, col, _, err := cellPrefix(r.Data)
			if err != nil {
				return nil, err
			}
			val, errCode, err := decodeBoolErr(r.Data)
			if err != nil {
				return nil, err
			}
			if errCode != "" {
				sheet.place(row, col, Err(errCode))
			} else {
				sheet.place(row, col, Bool(val))
			}

		case biff.SidFormula:
			row, col, _, err := cellPrefix(r.Data)
			if err != nil {
				return nil, err
			}
			cv, pending, err := decodeFormulaResult(r.Data)
			if err != nil {
				return nil, err
			}
			if pending {
				pendingFormulaRow, pendingFormulaCol = row, col
				havePendingFormula = true
			} else {
				sheet.place(row, col, cv)
			}

		case biff.SidString:
			if havePendingFormula {
				s, err := decodeFormulaString(r.Data)
				if err != nil {
					return nil, err
				}
				sheet.place(pendingFormulaRow, pendingFormulaCol, Text(s))
				havePendingFormula = false
			}
		}
	}
	return sheet, nil
}

func cellPrefix(data []byte) (row, col, xf uint16, err error) {
	row, err = biff.U16LE(data, 0)
	if err != nil {
		return
	}
	col, err = biff.U16LE(data, 2)
	if err != nil {
		return
	}
	xf, err = biff.U16LE(data, 4)
	return
}

// parseMulRK decodes MULRK: row | firstCol | {xf(u16) rk(u32)}* |
// lastCol(u16), with one cell emitted per pair.
func parseMulRK(sheet *Sheet, data []byte) error {
	row, err := biff.U16LE(data, 0)
	if err != nil {
		return err
	}
	firstCol, err := biff.U16LE(data, 2)
	if err != nil {
		return err
	}
	if len(data) < 6 {
		return biff.ErrShortBuffer
	}
	pairsLen := len(data) - 4 - 2 // minus row/firstCol prefix and lastCol suffix
	if pairsLen < 0 || pairsLen%6 != 0 {
		return errors.New("workbook: malformed MULRK record")
	}
	n := pairsLen / 6
	for i := 0; i < n; i++ {
		off := 4 + i*6
		rk, err := biff.U32LE(data, off+2)
		if err != nil {
			return err
		}
		sheet.place(row, firstCol+uint16(i), Number(biff.DecodeRK(rk)))
	}
	return nil
}

var berrLookup = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
	0x2B: "#GETTING_DATA",
}

// decodeBoolErr decodes a BoolErr cell payload: row|col|xf|value(1
// byte)|isError(1 byte).
func decodeBoolErr(data []byte) (boolVal bool, errCode string, err error) {
	fVal, err := biff.U8(data, 6)
	if err != nil {
		return
	}
	isErr, err := biff.U8(data, 7)
	if err != nil {
		return
	}
	if isErr == 0 {
		return fVal != 0, "", nil
	}
	if s, ok := berrLookup[fVal]; ok {
		return false, s, nil
	}
	return false, "<unknown error>", nil
}

// decodeFormulaResult decodes a FORMULA record's 8-byte cached result.
// pending is true when the cached result is a deferred string, which
// arrives in the immediately following STRING record.
func decodeFormulaResult(data []byte) (cv CellValue, pending bool, err error) {
	if len(data) < 14 {
		err = biff.ErrShortBuffer
		return
	}
	b6, err := biff.U8(data, 6+6)
	if err != nil {
		return
	}
	b7, err := biff.U8(data, 6+7)
	if err != nil {
		return
	}
	if b6 != 0xFF || b7 != 0xFF {
		var v float64
		v, err = biff.F64LE(data, 6)
		if err != nil {
			return
		}
		cv = Number(v)
		return
	}
	discriminant, err := biff.U8(data, 6)
	if err != nil {
		return
	}
	switch discriminant {
	case 0:
		pending = true
	case 1:
		b, err2 := biff.U8(data, 8)
		if err2 != nil {
			return cv, false, err2
		}
		cv = Bool(b != 0)
	case 2:
		code, err2 := biff.U8(data, 8)
		if err2 != nil {
			return cv, false, err2
		}
		if s, ok := berrLookup[code]; ok {
			cv = Err(s)
		} else {
			cv = Err("<unknown error>")
		}
	case 3:
		cv = Text("")
	default:
		err = errors.New("workbook: unknown formula cached-result discriminant")
	}
	return
}

func decodeFormulaString(data []byte) (string, error) {
	s, _, err := decodeUnicodeString(data)
	return s, err
}
