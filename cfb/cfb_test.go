package cfb

import (
	"bytes"
	"testing"
)

func TestWriteStreamRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("hello world, "), 1000)
	file := WriteStream("Book", payload)

	r, err := Open(file)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Stream("Book")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(payload))
	}
}

func TestWriteStreamSmallPayloadStillAvoidsMiniFAT(t *testing.T) {
	// A stream below the mini-stream cutoff still gets padded to >= 4096
	// bytes, so it always lands in the regular FAT, never the MiniFAT.
	file := WriteStream("Book", []byte("tiny"))
	r, err := Open(file)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Stream("Book")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("tiny")) {
		t.Fatalf("got %q", got)
	}
}

func TestWriteStreamHeaderWellFormed(t *testing.T) {
	file := WriteStream("Book", []byte("x"))
	if !bytes.Equal(file[:8], signature[:]) {
		t.Fatalf("bad signature: % X", file[:8])
	}
	sectorShift := le16(file, 30)
	if sectorShift != 9 {
		t.Fatalf("sectorShift = %d, want 9 (512-byte sectors)", sectorShift)
	}
	numMiniFATSectors := le32(file, 64)
	if numMiniFATSectors != 0 {
		t.Fatalf("numMiniFATSectors = %d, want 0", numMiniFATSectors)
	}
}

func TestWriteStreamFATChainTerminates(t *testing.T) {
	file := WriteStream("Book", bytes.Repeat([]byte{0xAB}, 20000))
	r, err := Open(file)
	if err != nil {
		t.Fatal(err)
	}
	firstDirSID := le32(file, 48)
	sid := firstDirSID
	steps := 0
	for sid != secEndOfChain {
		if steps > r.maxChainSteps {
			t.Fatal("directory FAT chain never reached ENDOFCHAIN")
		}
		steps++
		sid = r.fat[sid]
	}
}

func TestOpenRejectsBadSignature(t *testing.T) {
	bad := make([]byte, 1024)
	if _, err := Open(bad); err != ErrNotCFB {
		t.Fatalf("got %v, want ErrNotCFB", err)
	}
}

func TestOpenRejectsShortFile(t *testing.T) {
	if _, err := Open([]byte{1, 2, 3}); err != ErrNotCFB {
		t.Fatalf("got %v, want ErrNotCFB", err)
	}
}

func TestStreamLookupIsCaseInsensitive(t *testing.T) {
	file := WriteStream("Book", []byte("payload"))
	r, err := Open(file)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Stream("BOOK"); err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if _, err := r.Stream("Workbook"); err != ErrStreamNotFound {
		t.Fatalf("got %v, want ErrStreamNotFound", err)
	}
}

func TestReadIdempotent(t *testing.T) {
	file := WriteStream("Book", bytes.Repeat([]byte{0x42}, 9000))
	r, err := Open(file)
	if err != nil {
		t.Fatal(err)
	}
	a, err := r.Stream("Book")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Stream("Book")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("reading the same stream twice produced different bytes")
	}
}
