// Package xlswrite emits a single-sheet BIFF5 workbook byte stream from
// a tabular input. It is the write-side counterpart to the workbook
// package; neither package depends on the other.
package xlswrite

import (
	"math"
	"strconv"
	"strings"

	"github.com/nochso/xlsbiff/biff"
	"github.com/nochso/xlsbiff/internal/codepage"
)

const (
	docTypeWorkbook  = 0x0005
	docTypeWorksheet = 0x0010
	biff5Version     = 0x0500
	rupYear1995      = 0x07CC
)

// Sheet is the immutable input descriptor the facade validates and
// passes to BuildWorkbook.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

func bofRecord(docType uint16) []byte {
	payload := make([]byte, 16)
	biff.PutU16LE(payload, 0, biff5Version)
	biff.PutU16LE(payload, 2, docType)
	biff.PutU16LE(payload, 4, 0) // RupBuild, unused
	biff.PutU16LE(payload, 6, rupYear1995)
	// remaining 8 bytes (MiscBits) stay zero.
	return biff.AppendRecord(nil, biff.SidBOF, payload)
}

func eofRecord() []byte {
	return biff.AppendRecord(nil, biff.SidEOF, nil)
}

// buildWorksheet emits the per-sheet substream: BOF, DIMENSIONS, one ROW
// record and its cells per row, then EOF. headers form row 0; rows form
// rows 1..len(rows).
func buildWorksheet(headers []string, rows [][]string) []byte {
	width := len(headers)
	numRows := 1 + len(rows)

	var out []byte
	out = append(out, bofRecord(docTypeWorksheet)...)
	out = append(out, dimensionsRecord(numRows, width)...)

	out = append(out, rowAndCells(0, headers)...)
	for i, row := range rows {
		out = append(out, rowAndCells(i+1, row)...)
	}

	out = append(out, eofRecord()...)
	return out
}

func dimensionsRecord(numRows, width int) []byte {
	payload := make([]byte, 12) // row bounds as u32, column bounds as u16; no trailing reserved field is written
	biff.PutU32LE(payload, 0, 0)
	biff.PutU32LE(payload, 4, uint32(numRows))
	biff.PutU16LE(payload, 8, 0)
	biff.PutU16LE(payload, 10, uint16(width))
	return biff.AppendRecord(nil, biff.SidDimensions, payload)
}

func rowAndCells(rowIndex int, values []string) []byte {
	var out []byte
	out = append(out, rowRecord(rowIndex, len(values))...)
	for col, v := range values {
		out = append(out, cellRecord(rowIndex, col, v)...)
	}
	return out
}

func rowRecord(rowIndex, width int) []byte {
	payload := make([]byte, 16)
	biff.PutU16LE(payload, 0, uint16(rowIndex))
	biff.PutU16LE(payload, 2, 0)
	biff.PutU16LE(payload, 4, uint16(width))
	biff.PutU16LE(payload, 6, 0x00FF) // default row height
	biff.PutU32LE(payload, 8, 0)
	biff.PutU32LE(payload, 12, 0) // flags
	return biff.AppendRecord(nil, biff.SidRow, payload)
}

// cellRecord applies the cell encoding policy: a trimmed value that
// parses as a finite double (accepting ',' as a decimal separator) is
// written as NUMBER; everything else is written as LABEL in
// Windows-1252.
func cellRecord(row, col int, value string) []byte {
	trimmed := strings.TrimSpace(value)
	if f, ok := parseNumber(trimmed); ok {
		payload := make([]byte, 14)
		biff.PutU16LE(payload, 0, uint16(row))
		biff.PutU16LE(payload, 2, uint16(col))
		biff.PutU16LE(payload, 4, 0) // xf: the one default format
		biff.PutF64LE(payload, 6, f)
		return biff.AppendRecord(nil, biff.SidNumber, payload)
	}

	enc := codepage.EncodeCP1252(value, 255)
	payload := make([]byte, 6+1+len(enc))
	biff.PutU16LE(payload, 0, uint16(row))
	biff.PutU16LE(payload, 2, uint16(col))
	biff.PutU16LE(payload, 4, 0)
	biff.PutU8(payload, 6, byte(len(enc)))
	copy(payload[7:], enc)
	return biff.AppendRecord(nil, biff.SidLabel, payload)
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	normalized := strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
