// Package xlsbiff reads and writes legacy Excel 97-2003 binary
// spreadsheet files: an OLE2 Compound File container wrapping a BIFF
// record stream. It has no dependency on a host spreadsheet
// application, runtime, or external binary.
package xlsbiff

import (
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nochso/xlsbiff/cfb"
	"github.com/nochso/xlsbiff/workbook"
	"github.com/nochso/xlsbiff/xlswrite"
)

// Debug gates verbose logging of the read/write path.
var Debug bool

// Workbook is the parsed in-memory model.
type Workbook = workbook.Workbook

// Sheet is one sheet's name plus sparse grid.
type Sheet = workbook.Sheet

// CellValue is a tagged Text/Number/Date/Bool/Error variant.
type CellValue = workbook.CellValue

// CellRef identifies one cell's position within a Sheet's Grid.
type CellRef = workbook.CellRef

// Cell is a single addressed value, as stored in a Sheet's Grid.
type Cell = workbook.Cell

// Cell value kind tags, re-exported for callers inspecting CellValue.Kind.
const (
	KindText   = workbook.KindText
	KindNumber = workbook.KindNumber
	KindDate   = workbook.KindDate
	KindBool   = workbook.KindBool
	KindError  = workbook.KindError
)

// SheetInput describes a single sheet to be written by Write.
type SheetInput struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Read parses path as an Excel 97-2003 binary workbook.
func Read(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadBytes(data)
}

// ReadBytes parses an already-loaded CFB file buffer. Exposed
// separately from Read so callers that already hold the bytes (e.g. an
// HTTP upload) don't need a round trip through the filesystem.
func ReadBytes(data []byte) (*Workbook, error) {
	doc, err := cfb.Open(data)
	if err != nil {
		if Debug {
			log.Println("xlsbiff: not a compound file:", err)
		}
		return nil, wrapErr(ErrNotXLS, err)
	}

	streamBytes, err := doc.WorkbookStream()
	if err != nil {
		return nil, ErrWorkbookStreamMissing
	}

	wb, err := workbook.ParseStream(streamBytes)
	if err != nil {
		return nil, newParseError("workbook stream", err)
	}
	return wb, nil
}

// Write validates sheet and emits a single-sheet BIFF5 workbook at
// path, atomically.
func Write(sheet SheetInput, path string) error {
	if sheet.Name == "" {
		return ErrEmptySheetName
	}
	for i, row := range sheet.Rows {
		if len(row) != len(sheet.Headers) {
			return &InvalidGridError{ExpectedWidth: len(sheet.Headers), RowIndex: i, GotWidth: len(row)}
		}
	}

	workbookBytes := xlswrite.BuildWorkbook(xlswrite.Sheet{
		Name:    sheet.Name,
		Headers: sheet.Headers,
		Rows:    sheet.Rows,
	})
	fileBytes := cfb.WriteStream("Book", workbookBytes)

	return atomicWriteFile(path, fileBytes)
}

// atomicWriteFile writes data to a temporary file alongside path and
// renames it into place, so a crash mid-write never leaves a torn
// target file.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, filepath.Base(path)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
