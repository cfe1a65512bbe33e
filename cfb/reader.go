package cfb

import (
	"encoding/binary"
	"errors"
	"strings"
)

var (
	signature = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	// ErrNotCFB is returned when the header signature or sector shifts
	// do not match a compound file at all.
	ErrNotCFB = errors.New("cfb: not a compound file")

	// ErrStreamNotFound is returned by Reader.Stream when no directory
	// entry with the requested name and stream type exists.
	ErrStreamNotFound = errors.New("cfb: stream not found")
)

// ParseError reports structural corruption found while walking sector
// chains or the directory: truncated sectors, out-of-range offsets, or
// chain cycles.
type ParseError struct {
	Locus string
	Err   error
}

func (e *ParseError) Error() string { return "cfb: " + e.Locus + ": " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(locus string, err error) error {
	return &ParseError{Locus: locus, Err: err}
}

var errChainTooLong = errors.New("sector chain exceeds file bounds (cycle?)")
var errTruncatedSector = errors.New("sector offset past end of file")

// Reader is a parsed compound file, ready to have named streams
// extracted from it.
type Reader struct {
	data []byte

	sectorShift     uint16
	miniSectorShift uint16

	fat     []uint32
	minifat []uint32
	dirs    []directory

	miniStreamStart uint32
	miniStreamSize  uint64

	maxChainSteps int
}

// Open parses the CFB container held in data. The returned Reader keeps
// a reference to data; callers must not mutate it afterwards.
func Open(data []byte) (*Reader, error) {
	r := &Reader{data: data}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) load() error {
	if len(r.data) < headerLen {
		return ErrNotCFB
	}
	if !bytesEqual(r.data[:8], signature[:]) {
		return ErrNotCFB
	}

	sectorShift := le16(r.data, 30)
	miniSectorShift := le16(r.data, 32)
	if (sectorShift != 9 && sectorShift != 12) || miniSectorShift != 6 {
		return ErrNotCFB
	}
	r.sectorShift = sectorShift
	r.miniSectorShift = miniSectorShift

	mySectorSize := 1 << sectorShift
	r.maxChainSteps = len(r.data)/mySectorSize + 1

	numFATSectors := int32(le32(r.data, 44))
	firstDirSID := le32(r.data, 48)
	firstMiniFATSID := le32(r.data, 60)
	numMiniFATSectors := int32(le32(r.data, 64))
	firstDIFATSID := le32(r.data, 68)
	numDIFATSectors := int32(le32(r.data, 72))

	entriesPerSector := mySectorSize / 4

	// Step 1: build the FAT sector list from the inline DIFAT table,
	// then the DIFAT extension chain.
	fatSectors := make([]uint32, 0, 109+int(numDIFATSectors)*(entriesPerSector-1))
	for i := 0; i < numDIFATInlineSlots; i++ {
		sid := le32(r.data, 76+4*i)
		if sid == secFree {
			break
		}
		fatSectors = append(fatSectors, sid)
	}
	sid := firstDIFATSID
	steps := 0
	for sid != secEndOfChain && sid != secFree && numDIFATSectors > 0 {
		if steps > r.maxChainSteps {
			return parseErr("DIFAT chain", errChainTooLong)
		}
		steps++
		sector, err := r.sectorAt(sid)
		if err != nil {
			return parseErr("DIFAT sector", err)
		}
		for i := 0; i < entriesPerSector-1; i++ {
			v := binary.LittleEndian.Uint32(sector[4*i:])
			if v != secFree {
				fatSectors = append(fatSectors, v)
			}
		}
		sid = binary.LittleEndian.Uint32(sector[4*(entriesPerSector-1):])
	}
	_ = numFATSectors

	// Step 2: materialize the FAT itself from the FAT sectors.
	r.fat = make([]uint32, 0, len(fatSectors)*entriesPerSector)
	for _, fsid := range fatSectors {
		sector, err := r.sectorAt(fsid)
		if err != nil {
			return parseErr("FAT sector", err)
		}
		for i := 0; i < entriesPerSector; i++ {
			r.fat = append(r.fat, binary.LittleEndian.Uint32(sector[4*i:]))
		}
	}

	// Step 3: materialize the MiniFAT chain.
	if numMiniFATSectors > 0 {
		msid := firstMiniFATSID
		steps = 0
		for msid != secEndOfChain && msid != secFree {
			if steps > r.maxChainSteps {
				return parseErr("MiniFAT chain", errChainTooLong)
			}
			steps++
			sector, err := r.sectorAt(msid)
			if err != nil {
				return parseErr("MiniFAT sector", err)
			}
			for i := 0; i < entriesPerSector; i++ {
				r.minifat = append(r.minifat, binary.LittleEndian.Uint32(sector[4*i:]))
			}
			msid, err = r.fatNext(msid)
			if err != nil {
				return err
			}
		}
	}

	// Step 4: walk the directory chain and decode every 128-byte entry.
	dirBytes, err := r.readChain(firstDirSID, ^uint64(0))
	if err != nil {
		return parseErr("directory chain", err)
	}
	for off := 0; off+dirEntryLen <= len(dirBytes); off += dirEntryLen {
		entry := dirBytes[off : off+dirEntryLen]
		ot := objectType(entry[66])
		if ot == typeUnknown {
			continue
		}
		size := binary.LittleEndian.Uint64(entry[120:128])
		if sectorShift == 9 {
			size &= 0xFFFFFFFF
		}
		d := directory{
			name:        decodeDirName(entry[:66]),
			objType:     ot,
			startSector: binary.LittleEndian.Uint32(entry[116:120]),
			size:        size,
		}
		if ot == typeRootStorage {
			r.miniStreamStart = d.startSector
			r.miniStreamSize = d.size
		}
		r.dirs = append(r.dirs, d)
	}

	return nil
}

func (r *Reader) sectorAt(sid uint32) ([]byte, error) {
	mySectorSize := 1 << r.sectorShift
	offs := int64(1+sid) * int64(mySectorSize)
	if offs < 0 || offs+int64(mySectorSize) > int64(len(r.data)) {
		return nil, errTruncatedSector
	}
	return r.data[offs : offs+int64(mySectorSize)], nil
}

func (r *Reader) fatNext(sid uint32) (uint32, error) {
	if int(sid) >= len(r.fat) {
		return 0, parseErr("FAT lookup", errTruncatedSector)
	}
	return r.fat[sid], nil
}

// readChain walks the regular FAT chain starting at sid, concatenating
// full sectors and truncating to size bytes. A step counter bounds the
// walk so a cyclic chain cannot loop forever.
func (r *Reader) readChain(sid uint32, size uint64) ([]byte, error) {
	mySectorSize := 1 << r.sectorShift
	out := make([]byte, 0, size+uint64(mySectorSize))
	steps := 0
	for sid != secEndOfChain && sid != secFree {
		if steps > r.maxChainSteps {
			return nil, errChainTooLong
		}
		steps++
		sector, err := r.sectorAt(sid)
		if err != nil {
			return nil, err
		}
		out = append(out, sector...)
		var err2 error
		sid, err2 = r.fatNext(sid)
		if err2 != nil {
			return nil, err2
		}
	}
	if size != ^uint64(0) && uint64(len(out)) > size {
		out = out[:size]
	}
	return out, nil
}

// readMiniChain walks the MiniFAT chain, sourcing 64-byte mini-sectors
// from the root entry's mini-stream (itself stored via the regular FAT).
func (r *Reader) readMiniChain(sid uint32, size uint64) ([]byte, error) {
	ministream, err := r.readChain(r.miniStreamStart, r.miniStreamSize)
	if err != nil {
		return nil, parseErr("mini-stream", err)
	}
	out := make([]byte, 0, size+miniSectorSize)
	steps := 0
	for sid != secEndOfChain && sid != secFree {
		if steps > r.maxChainSteps {
			return nil, errChainTooLong
		}
		steps++
		offs := int(sid) * miniSectorSize
		if offs < 0 || offs+miniSectorSize > len(ministream) {
			return nil, errTruncatedSector
		}
		out = append(out, ministream[offs:offs+miniSectorSize]...)
		if int(sid) >= len(r.minifat) {
			return nil, errTruncatedSector
		}
		sid = r.minifat[sid]
	}
	if uint64(len(out)) > size {
		out = out[:size]
	}
	return out, nil
}

// Stream returns the bytes of the named stream. Lookup is
// case-insensitive, matching MS-CFB directory semantics.
func (r *Reader) Stream(name string) ([]byte, error) {
	for _, d := range r.dirs {
		if d.objType != typeStream {
			continue
		}
		if !strings.EqualFold(d.name, name) {
			continue
		}
		if d.size < miniStreamCutoff {
			return r.readMiniChain(d.startSector, d.size)
		}
		return r.readChain(d.startSector, d.size)
	}
	return nil, ErrStreamNotFound
}

// WorkbookStream returns the bytes of the "Workbook" stream, falling
// back to "Book" for files produced by older BIFF5 writers.
func (r *Reader) WorkbookStream() ([]byte, error) {
	if b, err := r.Stream("Workbook"); err == nil {
		return b, nil
	}
	return r.Stream("Book")
}

func le16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func le32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
