package xlsbiff

import (
	"errors"
	"fmt"
)

// ErrNotXLS is returned when the input file's CFB header (or absence of
// one) does not match the Excel 97-2003 container format at all.
var ErrNotXLS = errors.New("xlsbiff: file is not in Excel 97-2003 (CFB/BIFF) format")

// ErrWorkbookStreamMissing is returned when a CFB container was parsed
// successfully but contains neither a "Workbook" nor a "Book" stream.
var ErrWorkbookStreamMissing = errors.New("xlsbiff: no Workbook or Book stream found")

// ErrEmptySheetName is returned by Write when the sheet name is empty.
var ErrEmptySheetName = errors.New("xlsbiff: sheet name must not be empty")

// ParseError describes structural corruption encountered while decoding
// a CFB or BIFF byte stream: truncated records, chain cycles, or
// out-of-range offsets. The Locus is a short human-readable description
// of where in the stream the failure occurred.
type ParseError struct {
	Locus string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xlsbiff: parse error at %s: %v", e.Locus, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(locus string, err error) *ParseError {
	return &ParseError{Locus: locus, Err: err}
}

// InvalidGridError is returned by Write when a data row's column count
// does not match the header row's column count.
type InvalidGridError struct {
	ExpectedWidth int
	RowIndex      int
	GotWidth      int
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("xlsbiff: row %d has %d columns, expected %d", e.RowIndex, e.GotWidth, e.ExpectedWidth)
}

// errx wraps multiple errors while keeping the first as the primary
// message and exposing every one of them via Unwrap, for layered
// causes.
type errx struct {
	errs []error
}

func (e errx) Error() string {
	return e.errs[0].Error()
}

func (e errx) Unwrap() []error {
	return e.errs
}

// wrapErr chains a set of errors, surfacing the first as the primary
// message while preserving all of them for errors.Is/As traversal.
func wrapErr(e ...error) error {
	if len(e) == 1 {
		return e[0]
	}
	return errx{errs: e}
}
