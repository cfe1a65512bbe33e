// Command xlsmake builds a single-sheet Excel 97-2003 binary workbook
// from a delimited text file (TSV by default).
package main

import (
	"bufio"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nochso/xlsbiff"
)

var (
	sheetName string
	delimiter string
)

func main() {
	root := &cobra.Command{
		Use:   "xlsmake <input.tsv> <output.xls>",
		Short: "Build an Excel 97-2003 binary workbook from a delimited text file",
		Args:  cobra.ExactArgs(2),
		RunE:  run,
	}
	root.Flags().StringVarP(&sheetName, "sheet", "s", "Sheet1", "name of the sheet to create")
	root.Flags().StringVarP(&delimiter, "delimiter", "d", "\t", "field delimiter in the input file")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inPath, outPath := args[0], args[1]

	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var headers []string
	var rows [][]string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), delimiter)
		if headers == nil {
			headers = fields
			continue
		}
		rows = append(rows, fields)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if headers == nil {
		headers = []string{}
	}

	err = xlsbiff.Write(xlsbiff.SheetInput{
		Name:    sheetName,
		Headers: headers,
		Rows:    rows,
	}, outPath)
	if err != nil {
		return err
	}
	log.Printf("wrote %s (%d rows, %d columns)", outPath, len(rows), len(headers))
	return nil
}
