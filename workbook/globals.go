package workbook

import (
	"errors"

	"github.com/nochso/xlsbiff/biff"
)

// boundSheetEntry is one decoded BOUNDSHEET record.
type boundSheetEntry struct {
	Name   string
	Offset uint32
	Hidden bool
}

// globals holds everything the globals substream parser extracts
// before the sheet cell parser can run.
type globals struct {
	biffVersion uint16
	boundSheets []boundSheetEntry
	sst         []sstString
}

var errUnexpectedEnd = errors.New("workbook: globals substream ended before EOF")

// parseGlobals walks the workbook stream from offset 0 until the first
// EOF, collecting BOUNDSHEET entries and the (at most one) SST table,
// stitching SST across CONTINUE records as it goes.
func parseGlobals(buf []byte) (*globals, error) {
	recs, err := collectSubstream(buf, 0)
	if err != nil {
		return nil, err
	}

	g := &globals{}
	if len(recs) == 0 || recs[0].Sid != biff.SidBOF {
		return nil, errors.New("workbook: globals substream does not start with BOF")
	}
	if v, err := biff.U16LE(recs[0].Data, 0); err == nil {
		g.biffVersion = v
	}

	for i := 0; i < len(recs); i++ {
		r := recs[i]
		switch r.Sid {
		case biff.SidBoundSheet:
			bs, err := decodeBoundSheet(r.Data, g.biffVersion)
			if err != nil {
				return nil, err
			}
			g.boundSheets = append(g.boundSheets, bs)

		case biff.SidSST:
			if g.sst != nil {
				continue // only the first SST record in the stream is kept
			}
			buf2, offsets := stitchContinuations(recs, &i)
			sst, err := decodeSST(buf2, offsets)
			if err != nil {
				return nil, err
			}
			g.sst = sst
		}
	}
	return g, nil
}

// collectSubstream materializes every record from startOffset up to and
// including the matching EOF. Nested BOF/EOF substreams - e.g. embedded
// chart content - are skipped over as one opaque block.
func collectSubstream(buf []byte, startOffset int64) ([]biff.Record, error) {
	cur := biff.NewCursor(buf)
	cur.Seek(startOffset)

	var out []biff.Record
	nested := 0
	for {
		rec, err := cur.Next()
		if err != nil {
			if out != nil && len(out) > 0 {
				return nil, errUnexpectedEnd
			}
			return nil, err
		}
		switch rec.Sid {
		case biff.SidBOF:
			if len(out) > 0 {
				nested++
			}
		case biff.SidEOF:
			if nested == 0 {
				return append(out, rec), nil
			}
			nested--
			continue
		}
		if nested == 0 {
			out = append(out, rec)
		}
	}
}

// stitchContinuations concatenates recs[*i].Data with every immediately
// following CONTINUE record's payload, advancing *i past them. It
// returns the concatenated buffer along with the byte offsets (within
// that buffer) where each CONTINUE record's data begins, so the SST
// string decoder can apply the flag-byte reset a CONTINUE boundary
// requires.
func stitchContinuations(recs []biff.Record, i *int) ([]byte, []int) {
	buf := append([]byte(nil), recs[*i].Data...)
	var offsets []int
	for *i+1 < len(recs) && recs[*i+1].Sid == biff.SidContinue {
		*i++
		offsets = append(offsets, len(buf))
		buf = append(buf, recs[*i].Data...)
	}
	return buf, offsets
}

func decodeBoundSheet(data []byte, biffVersion uint16) (boundSheetEntry, error) {
	offset, err := biff.U32LE(data, 0)
	if err != nil {
		return boundSheetEntry{}, err
	}
	state, err := biff.U8(data, 4)
	if err != nil {
		return boundSheetEntry{}, err
	}
	rest := data[6:]

	var name string
	if biffVersion >= 0x0600 {
		name, _, err = decodeUnicodeString(rest)
	} else {
		name, _, err = decodeShortString(rest)
	}
	if err != nil {
		return boundSheetEntry{}, err
	}
	return boundSheetEntry{Name: name, Offset: offset, Hidden: (state & 0x03) != 0}, nil
}
