package workbook

import (
	"unicode/utf16"

	"github.com/nochso/xlsbiff/biff"
)

// decodeShortString decodes the BIFF5 BOUNDSHEET name encoding: an 8-bit
// length prefix followed by that many 8-bit (Windows-1252) characters.
// Each byte is mapped to the code point of the same value (Latin-1), so
// the Windows-1252 characters in 0x80-0x9F are not translated.
// Returns the string and the number of bytes consumed.
func decodeShortString(raw []byte) (string, int, error) {
	cch, err := biff.U8(raw, 0)
	if err != nil {
		return "", 0, err
	}
	n := int(cch)
	if len(raw) < 1+n {
		return "", 0, biff.ErrShortBuffer
	}
	return string(latin1ToRunes(raw[1 : 1+n])), 1 + n, nil
}

// decodeUnicodeString decodes the BIFF8 string encoding used by
// BOUNDSHEET names and LABEL cells: a 16-bit length, an 8-bit flags
// byte (bit0 = UTF-16LE vs 8-bit compressed), followed by cch code
// units.
func decodeUnicodeString(raw []byte) (string, int, error) {
	cch, err := biff.U16LE(raw, 0)
	if err != nil {
		return "", 0, err
	}
	flags, err := biff.U8(raw, 2)
	if err != nil {
		return "", 0, err
	}
	n := int(cch)
	width := 1
	if flags&0x1 != 0 {
		width = 2
	}
	if len(raw) < 3+n*width {
		return "", 0, biff.ErrShortBuffer
	}
	body := raw[3 : 3+n*width]
	if width == 1 {
		return string(latin1ToRunes(body)), 3 + n, nil
	}
	u16 := make([]uint16, n)
	for i := 0; i < n; i++ {
		u16[i] = uint16(body[2*i]) | uint16(body[2*i+1])<<8
	}
	return string(utf16.Decode(u16)), 3 + n*2, nil
}

func latin1ToRunes(b []byte) []rune {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return r
}

// sstString is one decoded entry of the Shared String Table.
type sstString struct {
	text string
}

// decodeSST decodes the SST record's payload after it has already been
// stitched with any following CONTINUE records into one contiguous
// buffer.
//
// continuationOffsets lists the byte offsets within buf where each
// CONTINUE record's data starts; it lets decodeSST reconstruct the
// original record boundaries (and read the replacement "compression"
// flag byte a mid-string boundary begins with) without re-threading the
// raw record list through every call site.
func decodeSST(buf []byte, continuationOffsets []int) ([]sstString, error) {
	totalRefs, err := biff.U32LE(buf, 0)
	_ = totalRefs
	if err != nil {
		return nil, err
	}
	uniqueCount, err := biff.U32LE(buf, 4)
	if err != nil {
		return nil, err
	}

	pos := 8
	out := make([]sstString, 0, uniqueCount)
	nextContinueIdx := 0
	currentFlagsOverride := -1

	for i := 0; i < int(uniqueCount); i++ {
		s, n, err := decodeSSTOneString(buf, pos, continuationOffsets, &nextContinueIdx, &currentFlagsOverride)
		if err != nil {
			return nil, err
		}
		out = append(out, sstString{text: s})
		pos += n
	}
	return out, nil
}

// decodeSSTOneString decodes a single XLUnicodeRichExtendedString that
// may spill across one or more CONTINUE boundaries recorded in
// continuationOffsets (absolute offsets into buf where a new record's
// data - and thus a fresh flags byte - begins).
func decodeSSTOneString(buf []byte, pos int, continuationOffsets []int, nextContinueIdx *int, _ *int) (string, int, error) {
	start := pos
	cch, err := biff.U16LE(buf, pos)
	if err != nil {
		return "", 0, err
	}
	pos += 2
	flags, err := biff.U8(buf, pos)
	if err != nil {
		return "", 0, err
	}
	pos++

	var cRun uint16
	if flags&0x8 != 0 {
		cRun, err = biff.U16LE(buf, pos)
		if err != nil {
			return "", 0, err
		}
		pos += 2
	}
	var cbExt uint32
	if flags&0x4 != 0 {
		cbExt, err = biff.U32LE(buf, pos)
		if err != nil {
			return "", 0, err
		}
		pos += 4
	}

	isUnicode := flags&0x1 != 0
	var chars []uint16
	for len(chars) < int(cch) {
		// boundaries already behind pos (between strings, or inside the
		// rich/ext data of an earlier string) carry no flags byte.
		for *nextContinueIdx < len(continuationOffsets) && continuationOffsets[*nextContinueIdx] < pos {
			*nextContinueIdx++
		}
		// advance past any CONTINUE boundary that starts exactly here,
		// which resets the character width per a fresh flags byte.
		for *nextContinueIdx < len(continuationOffsets) && continuationOffsets[*nextContinueIdx] == pos {
			newFlags, err := biff.U8(buf, pos)
			if err != nil {
				return "", 0, err
			}
			isUnicode = newFlags&0x1 != 0
			pos++
			*nextContinueIdx++
		}
		if isUnicode {
			v, err := biff.U16LE(buf, pos)
			if err != nil {
				return "", 0, err
			}
			chars = append(chars, v)
			pos += 2
		} else {
			v, err := biff.U8(buf, pos)
			if err != nil {
				return "", 0, err
			}
			chars = append(chars, uint16(v))
			pos++
		}
	}

	pos += int(cRun) * 4
	pos += int(cbExt)

	return string(utf16.Decode(chars)), pos - start, nil
}
