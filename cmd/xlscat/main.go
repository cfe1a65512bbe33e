// Command xlscat extracts the contents of .xls workbooks to
// tab-separated stdout, one file section per sheet.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nochso/xlsbiff"
)

var (
	logfile        string
	skipHidden     bool
	removeNewlines bool
)

func main() {
	root := &cobra.Command{
		Use:   "xlscat [file1.xls file2.xls ...]",
		Short: "Dump the sheets of Excel 97-2003 workbooks as TSV",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	root.PersistentFlags().StringVarP(&logfile, "log", "l", "", "save processing logs to `filename.txt`")
	root.PersistentFlags().BoolVar(&skipHidden, "skip-hidden", true, "skip hidden sheets")
	root.PersistentFlags().BoolVarP(&removeNewlines, "clean", "r", true, "condense embedded tabs/newlines in cell text")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if logfile != "" {
		fo, err := os.Create(logfile)
		if err != nil {
			return err
		}
		defer fo.Close()
		log.SetOutput(fo)
	}

	bw := bufio.NewWriter(os.Stdout)
	defer bw.Flush()

	for _, fn := range args {
		if err := catFile(bw, fn); err != nil {
			log.Printf("%s: %v", fn, err)
		}
	}
	return nil
}

func catFile(w *bufio.Writer, filename string) error {
	start := time.Now()
	wb, err := xlsbiff.Read(filename)
	if err != nil {
		return err
	}
	log.Printf("opened %s in %s", filename, time.Since(start))

	for _, sheet := range wb.Sheets {
		if skipHidden && sheet.Hidden {
			continue
		}
		fmt.Fprintf(w, "### %s\n", sheet.Name)
		printSheet(w, sheet)
	}
	return nil
}

func printSheet(w *bufio.Writer, sheet *xlsbiff.Sheet) {
	maxRow, maxCol := uint16(0), uint16(0)
	for ref := range sheet.Grid {
		if ref.Row > maxRow {
			maxRow = ref.Row
		}
		if ref.Col > maxCol {
			maxCol = ref.Col
		}
	}
	for row := uint16(0); row <= maxRow; row++ {
		cols := make([]string, maxCol+1)
		for col := uint16(0); col <= maxCol; col++ {
			cell, ok := sheet.Grid[xlsbiff.CellRef{Row: row, Col: col}]
			if !ok {
				continue
			}
			text := formatValue(cell.Value)
			if removeNewlines {
				text = strings.Join(strings.Fields(text), " ")
			}
			cols[col] = text
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
}

func formatValue(v xlsbiff.CellValue) string {
	switch v.Kind {
	case xlsbiff.KindText, xlsbiff.KindError:
		return v.Text
	case xlsbiff.KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case xlsbiff.KindDate:
		return v.Time.Format("2006-01-02 15:04:05")
	case xlsbiff.KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}
