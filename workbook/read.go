package workbook

// ParseStream decodes a complete BIFF workbook byte stream (the
// contents of the CFB "Workbook" or "Book" stream) into a Workbook
// model. This combines the globals parser and the per-sheet cell
// parser.
func ParseStream(buf []byte) (*Workbook, error) {
	g, err := parseGlobals(buf)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{}
	for _, bs := range g.boundSheets {
		sheet, err := parseSheet(buf, g.biffVersion, g.sst, bs.Name, bs.Hidden, int64(bs.Offset))
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}
