// Package biff implements the length-prefixed BIFF record stream used by
// both the workbook globals substream and per-sheet substreams, plus the
// little-endian byte codec the rest of this module reads and writes
// fixed-width fields with.
package biff

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned by the read helpers when the buffer does not
// contain enough bytes at the requested offset.
var ErrShortBuffer = errors.New("biff: short buffer")

// U8 reads a single byte at off.
func U8(b []byte, off int) (byte, error) {
	if off < 0 || off+1 > len(b) {
		return 0, ErrShortBuffer
	}
	return b[off], nil
}

// U16LE reads a little-endian uint16 at off.
func U16LE(b []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(b) {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint16(b[off : off+2]), nil
}

// U32LE reads a little-endian uint32 at off.
func U32LE(b []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(b) {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), nil
}

// I32LE reads a little-endian int32 at off.
func I32LE(b []byte, off int) (int32, error) {
	v, err := U32LE(b, off)
	return int32(v), err
}

// U64LE reads a little-endian uint64 at off.
func U64LE(b []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(b) {
		return 0, ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), nil
}

// F64LE reads a little-endian IEEE-754 double at off.
func F64LE(b []byte, off int) (float64, error) {
	v, err := U64LE(b, off)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// PutU8 writes a single byte at off, growing b if necessary is NOT done
// here: callers must pre-size the buffer, matching the fixed-layout
// emission style used throughout xlswrite.
func PutU8(b []byte, off int, v byte) {
	b[off] = v
}

// PutU16LE writes a little-endian uint16 at off.
func PutU16LE(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

// PutU32LE writes a little-endian uint32 at off.
func PutU32LE(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutF64LE writes a little-endian IEEE-754 double at off.
func PutF64LE(b []byte, off int, v float64) {
	binary.LittleEndian.PutUint64(b[off:off+8], math.Float64bits(v))
}
