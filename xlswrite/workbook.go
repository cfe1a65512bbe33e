package xlswrite

import "github.com/nochso/xlsbiff/biff"

const codePage1252 = 0x04E4

// BuildWorkbook emits a complete BIFF5 workbook stream: the globals
// substream followed by the one worksheet substream, with the globals'
// BOUNDSHEET offset field patched to point at the worksheet's BOF once
// its position is known.
func BuildWorkbook(sheet Sheet) []byte {
	worksheet := buildWorksheet(sheet.Headers, sheet.Rows)

	globals, boundSheetOffsetFieldPos := buildGlobalsUpToBoundSheetPlaceholder(sheet.Name)
	globals = append(globals, eofRecord()...)

	sheetBOFOffset := uint32(len(globals))
	out := append(globals, worksheet...)

	biff.PutU32LE(out, boundSheetOffsetFieldPos, sheetBOFOffset)
	return out
}

// buildGlobalsUpToBoundSheetPlaceholder emits every globals record up
// to (but not including) the terminating EOF, and returns the absolute
// byte offset of the BOUNDSHEET record's 4-byte offset field so the
// caller can patch it once the worksheet has been appended.
func buildGlobalsUpToBoundSheetPlaceholder(sheetName string) (buf []byte, offsetFieldPos int) {
	buf = append(buf, bofRecord(docTypeWorkbook)...)
	buf = append(buf, codePageRecord()...)
	buf = append(buf, window1Record()...)
	buf = append(buf, fontRecord("Arial", 200, 400)...)
	buf = append(buf, xfRecord()...)

	boundSheetRecordStart := len(buf)
	buf = append(buf, boundSheetPlaceholder(sheetName)...)
	offsetFieldPos = boundSheetRecordStart + 4 // +4 to skip the sid/length header

	return buf, offsetFieldPos
}

func codePageRecord() []byte {
	payload := make([]byte, 2)
	biff.PutU16LE(payload, 0, codePage1252)
	return biff.AppendRecord(nil, biff.SidCodePage, payload)
}

// window1Record emits WINDOW1 with fixed default window coordinates,
// one selected tab, and the conventional 600 (60%) tab-bar ratio.
func window1Record() []byte {
	payload := make([]byte, 18)
	biff.PutU16LE(payload, 0, 0x0078)  // xWn
	biff.PutU16LE(payload, 2, 0x0078)  // yWn
	biff.PutU16LE(payload, 4, 0x3A5C)  // dxWn
	biff.PutU16LE(payload, 6, 0x2238)  // dyWn
	biff.PutU16LE(payload, 8, 0x0038)  // grbit: visible, selected tab shown
	biff.PutU16LE(payload, 10, 0)      // iTabCur
	biff.PutU16LE(payload, 12, 0)      // iTabFirst
	biff.PutU16LE(payload, 14, 1)      // ctabsel: selectedTabs=1
	biff.PutU16LE(payload, 16, 600)    // wTabRatio
	return biff.AppendRecord(nil, biff.SidWindow1, payload)
}

// fontRecord emits a FONT record using the BIFF5 8-bit short-string
// name encoding: the same cch(u8)+bytes(cch) form BIFF5 uses for
// BOUNDSHEET names also applies to font names.
func fontRecord(name string, dyHeightTwips uint16, weight uint16) []byte {
	nameBytes := []byte(name)
	if len(nameBytes) > 255 {
		nameBytes = nameBytes[:255]
	}
	payload := make([]byte, 14+1+len(nameBytes))
	biff.PutU16LE(payload, 0, dyHeightTwips)
	biff.PutU16LE(payload, 2, 0)      // grbit
	biff.PutU16LE(payload, 4, 0x7FFF) // icv: automatic color
	biff.PutU16LE(payload, 6, weight)
	biff.PutU16LE(payload, 8, 0) // sss: no sub/superscript
	biff.PutU8(payload, 10, 0)  // uls: no underline
	biff.PutU8(payload, 11, 0)  // bFamily
	biff.PutU8(payload, 12, 0)  // bCharSet
	biff.PutU8(payload, 13, 0)  // reserved
	biff.PutU8(payload, 14, byte(len(nameBytes)))
	copy(payload[15:], nameBytes)
	return biff.AppendRecord(nil, biff.SidFont, payload)
}

// xfRecord emits the single default Cell Extended Format record this
// core ever writes.
func xfRecord() []byte {
	payload := make([]byte, 16)
	biff.PutU16LE(payload, 0, 0) // ifnt: font index 0 (the FONT record above)
	biff.PutU16LE(payload, 2, 0) // ifmt: general number format
	// remaining flags/alignment/border/pattern fields stay zero
	// (general alignment, no borders, no fill), matching the "single
	// default cell format" this core supports.
	return biff.AppendRecord(nil, biff.SidXF, payload)
}

func boundSheetPlaceholder(name string) []byte {
	trimmed := []byte(name)
	if len(trimmed) > 31 {
		trimmed = trimmed[:31]
	}
	payload := make([]byte, 4+1+1+1+len(trimmed))
	biff.PutU32LE(payload, 0, 0) // offset placeholder, patched by BuildWorkbook
	biff.PutU8(payload, 4, 0)    // state: visible
	biff.PutU8(payload, 5, 0)    // type: worksheet
	biff.PutU8(payload, 6, byte(len(trimmed)))
	copy(payload[7:], trimmed)
	return biff.AppendRecord(nil, biff.SidBoundSheet, payload)
}
