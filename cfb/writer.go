package cfb

import (
	"encoding/binary"
)

// WriteStream packs a single named stream into a complete, minimal
// compound file. The payload is always stored via the regular FAT
// (padded to at least the mini-stream cutoff), so the emitted file
// never needs a MiniFAT.
func WriteStream(name string, payload []byte) []byte {
	// Step 1: pad payload to >= 4096 bytes, then round up to a sector
	// multiple, so the stream always lands in regular FAT sectors.
	originalPaddedSize := len(payload)
	if originalPaddedSize < miniStreamCutoff {
		originalPaddedSize = miniStreamCutoff
	}
	padded := roundUp(originalPaddedSize, sectorSize)
	payloadSectors := padded / sectorSize

	data := make([]byte, padded)
	copy(data, payload)

	// Step 2: a single directory sector holds 512/128 = 4 entries: Root,
	// the one stream, and 2 blank (unallocated) padding entries.
	dirSectors := 1
	dir := make([]byte, sectorSize)
	writeRootDirEntry(dir[0:dirEntryLen], 1 /* child = stream entry index */)
	writeStreamDirEntry(dir[dirEntryLen:2*dirEntryLen], name, uint32(originalPaddedSize))
	// remaining 2 entries stay zeroed (objType = typeUnknown).

	// Step 3: choose the minimal FAT sector count F such that every
	// sector (payload + directory + FAT itself) is addressable by the F
	// FAT sectors we emit: P+D+F <= F * entriesPerFATSector.
	entriesPerFATSector := sectorSize / 4
	total := payloadSectors + dirSectors
	fatSectors := 1
	for total+fatSectors > fatSectors*entriesPerFATSector {
		fatSectors++
	}

	firstDirSID := uint32(payloadSectors)
	firstFATSID := uint32(payloadSectors + dirSectors)

	// Step 4: populate the FAT.
	fat := make([]uint32, fatSectors*entriesPerFATSector)
	for i := range fat {
		fat[i] = secFree
	}
	for i := 0; i < payloadSectors; i++ {
		if i == payloadSectors-1 {
			fat[i] = secEndOfChain
		} else {
			fat[i] = uint32(i + 1)
		}
	}
	for i := 0; i < dirSectors; i++ {
		sid := int(firstDirSID) + i
		if i == dirSectors-1 {
			fat[sid] = secEndOfChain
		} else {
			fat[sid] = uint32(sid + 1)
		}
	}
	for i := 0; i < fatSectors; i++ {
		fat[int(firstFATSID)+i] = secFAT
	}

	fatBytes := make([]byte, fatSectors*sectorSize)
	for i, v := range fat {
		binary.LittleEndian.PutUint32(fatBytes[4*i:], v)
	}

	// Step 5: emit the header.
	header := make([]byte, headerLen)
	copy(header[0:8], signature[:])
	// ClassID [16]byte stays zero.
	binary.LittleEndian.PutUint16(header[24:26], 0x003E) // MinorVersion
	binary.LittleEndian.PutUint16(header[26:28], 3)       // MajorVersion
	binary.LittleEndian.PutUint16(header[28:30], 0xFFFE)  // ByteOrder
	binary.LittleEndian.PutUint16(header[30:32], 9)       // SectorShift
	binary.LittleEndian.PutUint16(header[32:34], 6)       // MiniSectorShift
	// Reserved1 [6]byte stays zero.
	binary.LittleEndian.PutUint32(header[40:44], 0) // NumDirectorySectors (v3 MUST be 0)
	binary.LittleEndian.PutUint32(header[44:48], uint32(fatSectors))
	binary.LittleEndian.PutUint32(header[48:52], firstDirSID)
	// TransactionSignature stays zero.
	binary.LittleEndian.PutUint32(header[56:60], miniStreamCutoff)
	binary.LittleEndian.PutUint32(header[60:64], secEndOfChain) // FirstMiniFATSectorLocation
	binary.LittleEndian.PutUint32(header[64:68], 0)             // NumMiniFATSectors
	binary.LittleEndian.PutUint32(header[68:72], secEndOfChain) // FirstDIFATSectorLocation
	binary.LittleEndian.PutUint32(header[72:76], 0)             // NumDIFATSectors
	for i := 0; i < numDIFATInlineSlots; i++ {
		off := 76 + 4*i
		if i < fatSectors {
			binary.LittleEndian.PutUint32(header[off:], firstFATSID+uint32(i))
		} else {
			binary.LittleEndian.PutUint32(header[off:], secFree)
		}
	}

	out := make([]byte, 0, headerLen+len(data)+len(dir)+len(fatBytes))
	out = append(out, header...)
	out = append(out, data...)
	out = append(out, dir...)
	out = append(out, fatBytes...)
	return out
}

func writeRootDirEntry(entry []byte, childSID uint32) {
	writeDirName(entry, "Root Entry")
	entry[66] = byte(typeRootStorage)
	entry[67] = 1 // black
	binary.LittleEndian.PutUint32(entry[68:72], secFree)  // left sibling
	binary.LittleEndian.PutUint32(entry[72:76], secFree)  // right sibling
	binary.LittleEndian.PutUint32(entry[76:80], childSID) // child
	binary.LittleEndian.PutUint32(entry[116:120], secEndOfChain)
	// StreamSize (size=0) stays zero.
}

func writeStreamDirEntry(entry []byte, name string, size uint32) {
	writeDirName(entry, name)
	entry[66] = byte(typeStream)
	entry[67] = 1 // black
	binary.LittleEndian.PutUint32(entry[68:72], secFree) // left sibling
	binary.LittleEndian.PutUint32(entry[72:76], secFree) // right sibling
	binary.LittleEndian.PutUint32(entry[76:80], secFree) // child
	binary.LittleEndian.PutUint32(entry[116:120], 0)     // starting sector (0 = first payload sector)
	binary.LittleEndian.PutUint64(entry[120:128], uint64(size))
}

func writeDirName(entry []byte, name string) {
	u16 := utf16Encode(name)
	if len(u16) > 31 {
		u16 = u16[:31]
	}
	for i, r := range u16 {
		binary.LittleEndian.PutUint16(entry[2*i:], r)
	}
	byteLen := (len(u16) + 1) * 2 // + NUL terminator
	binary.LittleEndian.PutUint16(entry[64:66], uint16(byteLen))
}

func roundUp(n, multiple int) int {
	if n%multiple == 0 {
		return n
	}
	return n + (multiple - n%multiple)
}
