package xlsbiff

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xls")

	sheet := SheetInput{
		Name:    "S1",
		Headers: []string{"A", "B"},
		Rows: [][]string{
			{"hi", "42"},
			{"x", "3,14"},
		},
	}
	if err := Write(sheet, path); err != nil {
		t.Fatal(err)
	}

	wb, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(wb.Sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(wb.Sheets))
	}
	s := wb.Sheets[0]
	if s.Name != "S1" {
		t.Errorf("sheet name = %q", s.Name)
	}

	want := map[CellRef]CellValue{
		{Row: 0, Col: 0}: workbookText("A"),
		{Row: 0, Col: 1}: workbookText("B"),
		{Row: 1, Col: 0}: workbookText("hi"),
		{Row: 1, Col: 1}: workbookNumber(42.0),
		{Row: 2, Col: 0}: workbookText("x"),
		{Row: 2, Col: 1}: workbookNumber(3.14),
	}
	for ref, wantVal := range want {
		cell, ok := s.Grid[ref]
		if !ok {
			t.Fatalf("missing cell %+v", ref)
		}
		if cell.Value.Kind != wantVal.Kind {
			t.Fatalf("cell %+v kind = %v, want %v", ref, cell.Value.Kind, wantVal.Kind)
		}
		switch wantVal.Kind {
		case KindText:
			if cell.Value.Text != wantVal.Text {
				t.Errorf("cell %+v text = %q, want %q", ref, cell.Value.Text, wantVal.Text)
			}
		case KindNumber:
			if cell.Value.Num != wantVal.Num {
				t.Errorf("cell %+v num = %v, want %v", ref, cell.Value.Num, wantVal.Num)
			}
		}
	}
}

func workbookText(s string) CellValue   { return CellValue{Kind: KindText, Text: s} }
func workbookNumber(f float64) CellValue { return CellValue{Kind: KindNumber, Num: f} }

func TestWriteRejectsEmptySheetName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xls")
	err := Write(SheetInput{Name: "", Headers: []string{"A"}, Rows: nil}, path)
	if err != ErrEmptySheetName {
		t.Fatalf("got %v, want ErrEmptySheetName", err)
	}
}

func TestWriteRejectsMismatchedRowWidth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xls")
	err := Write(SheetInput{
		Name:    "S1",
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"only one"}},
	}, path)
	ige, ok := err.(*InvalidGridError)
	if !ok {
		t.Fatalf("got %T (%v), want *InvalidGridError", err, err)
	}
	if ige.RowIndex != 0 || ige.ExpectedWidth != 2 || ige.GotWidth != 1 {
		t.Fatalf("got %+v", ige)
	}
}

func TestReadRejectsNonCFBFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xls")
	if err := os.WriteFile(path, []byte("not a compound file"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Read(path)
	if err == nil {
		t.Fatal("expected an error reading a non-CFB file")
	}
	if !errors.Is(err, ErrNotXLS) {
		t.Fatalf("errors.Is(err, ErrNotXLS) = false, want true (err: %v)", err)
	}
}
