// Package workbook decodes the BIFF workbook globals substream and
// per-sheet substreams into an in-memory Workbook model. It is the
// read-side counterpart to xlswrite.
package workbook

import "time"

// Workbook is an ordered sequence of sheets.
type Workbook struct {
	Sheets []*Sheet
}

// VisibleSheets returns the names of sheets whose BOUNDSHEET hidden
// state is 0 ("visible").
func (w *Workbook) VisibleSheets() []string {
	var out []string
	for _, s := range w.Sheets {
		if !s.Hidden {
			out = append(out, s.Name)
		}
	}
	return out
}

// HiddenSheets returns the names of sheets BOUNDSHEET marked hidden or
// very-hidden.
func (w *Workbook) HiddenSheets() []string {
	var out []string
	for _, s := range w.Sheets {
		if s.Hidden {
			out = append(out, s.Name)
		}
	}
	return out
}

// Sheet is a named sparse grid of cells.
type Sheet struct {
	Name   string
	Hidden bool
	Grid   map[CellRef]Cell
}

// CellRef identifies one cell's position.
type CellRef struct {
	Row, Col uint16
}

// Cell is a single addressed value.
type Cell struct {
	Row, Col uint16
	Value    CellValue
}

// CellValueKind tags which variant a CellValue holds.
type CellValueKind int

// CellValueKind values.
const (
	KindText CellValueKind = iota
	KindNumber
	KindDate
	KindBool
	KindError
)

// CellValue is a tagged variant: Text, Number, Date, Bool, or Error.
// The reader never produces Date: number-format metadata is not
// interpreted by this core, so dates remain plain numeric serials.
type CellValue struct {
	Kind CellValueKind
	Text string
	Num  float64
	Time time.Time
	Bool bool
}

// Text constructs a text cell value.
func Text(s string) CellValue { return CellValue{Kind: KindText, Text: s} }

// Number constructs a numeric cell value.
func Number(f float64) CellValue { return CellValue{Kind: KindNumber, Num: f} }

// Date constructs a date cell value.
func Date(t time.Time) CellValue { return CellValue{Kind: KindDate, Time: t} }

// Bool constructs a boolean cell value.
func Bool(b bool) CellValue { return CellValue{Kind: KindBool, Bool: b} }

// Err constructs an error-string cell value (e.g. "#DIV/0!").
func Err(s string) CellValue { return CellValue{Kind: KindError, Text: s} }

func (s *Sheet) place(row, col uint16, v CellValue) {
	if s.Grid == nil {
		s.Grid = make(map[CellRef]Cell)
	}
	s.Grid[CellRef{row, col}] = Cell{Row: row, Col: col, Value: v}
}
