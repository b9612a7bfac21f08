package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yamitzky/xlsreader/xls"
)

func init() {
	rootCmd.AddCommand(newSheetsCmd())
}

func newSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <file>",
		Short: "Summarise the worksheets of a workbook",
		Long: `The sheets command decodes the workbook and prints each worksheet with its
size and the number of cells of each type.

Example:
  xlsdump sheets report.xls --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSheets(cmd.OutOrStdout(), args[0], logger(cmd))
		},
	}
}

type sheetSummary struct {
	Index   int            `json:"index"`
	Name    string         `json:"name"`
	Rows    int            `json:"rows"`
	Columns int            `json:"columns"`
	Cells   map[string]int `json:"cells"`
}

type bookSummary struct {
	DateMode string         `json:"date_mode"`
	Sheets   []sheetSummary `json:"sheets"`
}

func runSheets(w io.Writer, path string, log *slog.Logger) error {
	book, err := xls.OpenWorkbook(path, &xls.OpenWorkbookOptions{Logger: log, UseMmap: true})
	if err != nil {
		return err
	}

	summary := bookSummary{DateMode: book.DateMode().String()}
	for i := 0; i < book.SheetsCount(); i++ {
		sheet, err := book.Sheet(i)
		if err != nil {
			continue
		}
		s := sheetSummary{
			Index:   i,
			Name:    sheet.Name(),
			Rows:    sheet.RowsCount(),
			Columns: sheet.ColumnsCount(),
			Cells:   make(map[string]int),
		}
		for r := 0; r < s.Rows; r++ {
			for _, c := range sheet.Row(r) {
				if !c.IsNull() {
					s.Cells[c.CType.String()]++
				}
			}
		}
		summary.Sheets = append(summary.Sheets, s)
	}

	if jsonOut {
		return printJSON(w, summary)
	}
	fmt.Fprintf(w, "date mode %s\n", summary.DateMode)
	for _, s := range summary.Sheets {
		fmt.Fprintf(w, "%d %q %dx%d string=%d double=%d formula=%d\n",
			s.Index, s.Name, s.Rows, s.Columns,
			s.Cells[xls.CellString.String()], s.Cells[xls.CellDouble.String()], s.Cells[xls.CellFormula.String()])
	}
	return nil
}
