package workbook

import (
	"testing"

	"github.com/nochso/xlsbiff/biff"
)

func bofPayload(version uint16) []byte {
	p := make([]byte, 16)
	biff.PutU16LE(p, 0, version)
	biff.PutU16LE(p, 2, 0x0005) // workbook globals
	return p
}

func boundSheetPayloadBIFF8(offset uint32, name string) []byte {
	nameBytes := []byte(name)
	p := make([]byte, 6+3+len(nameBytes))
	biff.PutU32LE(p, 0, offset)
	biff.PutU8(p, 4, 0) // visible
	p[5] = 0            // type: worksheet
	biff.PutU16LE(p, 6, uint16(len(nameBytes)))
	biff.PutU8(p, 8, 0) // flags: compressed 8-bit
	copy(p[9:], nameBytes)
	return p
}

func TestParseGlobalsDecodesBoundSheetsBIFF8(t *testing.T) {
	var buf []byte
	buf = biff.AppendRecord(buf, biff.SidBOF, bofPayload(0x0600))
	buf = biff.AppendRecord(buf, biff.SidBoundSheet, boundSheetPayloadBIFF8(999, "Sheet1"))
	buf = biff.AppendRecord(buf, biff.SidBoundSheet, boundSheetPayloadBIFF8(1000, "Sheet2"))
	buf = biff.AppendRecord(buf, biff.SidEOF, nil)

	g, err := parseGlobals(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.boundSheets) != 2 {
		t.Fatalf("got %d bound sheets, want 2", len(g.boundSheets))
	}
	if g.boundSheets[0].Name != "Sheet1" || g.boundSheets[0].Offset != 999 {
		t.Errorf("got %+v", g.boundSheets[0])
	}
	if g.boundSheets[1].Name != "Sheet2" || g.boundSheets[1].Offset != 1000 {
		t.Errorf("got %+v", g.boundSheets[1])
	}
}

func TestParseGlobalsDecodesBoundSheetBIFF5ShortString(t *testing.T) {
	name := "Data"
	p := make([]byte, 6+1+len(name))
	biff.PutU32LE(p, 0, 42)
	p[4] = 0
	p[5] = 0
	p[6] = byte(len(name))
	copy(p[7:], name)

	var buf []byte
	buf = biff.AppendRecord(buf, biff.SidBOF, bofPayload(0x0500))
	buf = biff.AppendRecord(buf, biff.SidBoundSheet, p)
	buf = biff.AppendRecord(buf, biff.SidEOF, nil)

	g, err := parseGlobals(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.boundSheets) != 1 || g.boundSheets[0].Name != "Data" {
		t.Fatalf("got %+v", g.boundSheets)
	}
}

func TestParseGlobalsSkipsNestedSubstream(t *testing.T) {
	var buf []byte
	buf = biff.AppendRecord(buf, biff.SidBOF, bofPayload(0x0600))
	buf = biff.AppendRecord(buf, biff.SidBOF, bofPayload(0x0020)) // nested chart-like substream
	buf = biff.AppendRecord(buf, biff.SidEOF, nil)
	buf = biff.AppendRecord(buf, biff.SidBoundSheet, boundSheetPayloadBIFF8(5, "Real"))
	buf = biff.AppendRecord(buf, biff.SidEOF, nil)

	g, err := parseGlobals(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.boundSheets) != 1 || g.boundSheets[0].Name != "Real" {
		t.Fatalf("got %+v", g.boundSheets)
	}
}

func sstPayload(strs []string) []byte {
	p := make([]byte, 8)
	biff.PutU32LE(p, 0, uint32(len(strs)))
	biff.PutU32LE(p, 4, uint32(len(strs)))
	for _, s := range strs {
		b := []byte(s)
		entry := make([]byte, 3+len(b))
		biff.PutU16LE(entry, 0, uint16(len(b)))
		entry[2] = 0 // compressed 8-bit, no rich/ext runs
		copy(entry[3:], b)
		p = append(p, entry...)
	}
	return p
}

func TestSSTDecodeWithoutContinuation(t *testing.T) {
	var buf []byte
	buf = biff.AppendRecord(buf, biff.SidBOF, bofPayload(0x0600))
	buf = biff.AppendRecord(buf, biff.SidSST, sstPayload([]string{"alpha", "beta"}))
	buf = biff.AppendRecord(buf, biff.SidEOF, nil)

	g, err := parseGlobals(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.sst) != 2 || g.sst[0].text != "alpha" || g.sst[1].text != "beta" {
		t.Fatalf("got %+v", g.sst)
	}
}

func TestSSTDecodeWithContinueSpillMidString(t *testing.T) {
	// One unique string whose character data is split by a CONTINUE
	// boundary in the middle of the character array, forcing the
	// decoder to re-read a fresh flags byte at the split point.
	first := []byte("hel")
	second := []byte("lo")

	head := make([]byte, 8)
	biff.PutU32LE(head, 0, 1)
	biff.PutU32LE(head, 4, 1)
	strHeader := make([]byte, 3)
	biff.PutU16LE(strHeader, 0, uint16(len(first)+len(second)))
	strHeader[2] = 0 // compressed 8-bit
	head = append(head, strHeader...)
	head = append(head, first...)

	continuePayload := append([]byte{0}, second...) // fresh flags byte + rest of chars

	var buf []byte
	buf = biff.AppendRecord(buf, biff.SidBOF, bofPayload(0x0600))
	buf = biff.AppendRecord(buf, biff.SidSST, head)
	buf = biff.AppendRecord(buf, biff.SidContinue, continuePayload)
	buf = biff.AppendRecord(buf, biff.SidEOF, nil)

	g, err := parseGlobals(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.sst) != 1 || g.sst[0].text != "hello" {
		t.Fatalf("got %+v", g.sst)
	}
}
