package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/yamitzky/xlsreader/xls"
)

// convert dispatches on the input: standard input, a directory of workbooks
// or a single file.
func convert(cfg *config, stdin io.Reader, stdout io.Writer) error {
	if cfg.input == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return convertFile(cfg, "-", content, cfg.output, stdout)
	}
	info, err := os.Stat(cfg.input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return convertDir(cfg, stdout)
	}
	return convertFile(cfg, cfg.input, nil, cfg.output, stdout)
}

// convertDir converts every xls file of the input directory into a .csv file
// of the same name. Other files are ignored.
func convertDir(cfg *config, stdout io.Writer) error {
	outDir := cfg.output
	if outDir == "" {
		outDir = cfg.input
	}
	if err := ensureDir(outDir); err != nil {
		return err
	}
	entries, err := os.ReadDir(cfg.input)
	if err != nil {
		return err
	}
	converted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(cfg.input, entry.Name())
		format, err := xls.InspectFormat(path, nil)
		if err != nil {
			return err
		}
		if format != "xls" {
			continue
		}
		out := filepath.Join(outDir, trimExt(entry.Name())+".csv")
		if err := convertFile(cfg, path, nil, out, stdout); err != nil {
			return err
		}
		converted++
	}
	if converted == 0 {
		return fmt.Errorf("no xls files found in %s", cfg.input)
	}
	return nil
}

// convertFile writes the selected sheets of one workbook to stdout, to the
// file out, or to one file per sheet when out is a directory.
func convertFile(cfg *config, path string, content []byte, out string, stdout io.Writer) error {
	book, err := xls.OpenWorkbook(path, &xls.OpenWorkbookOptions{
		FileContents: content,
		UseMmap:      cfg.useMmap,
		Logfile:      cfg.logfile,
		Verbosity:    verbosity(cfg),
	})
	if err != nil {
		return err
	}
	sheets, err := selectSheets(cfg, book)
	if err != nil {
		return err
	}

	if out == "" {
		return writeCSV(stdout, cfg, book, sheets)
	}
	if cfg.sheetID == 0 {
		if err := ensureDir(out); err != nil {
			return errors.New("outfile must be a directory when -s 0 is specified")
		}
	}
	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		return writeCSVFile(out, cfg, book, sheets)
	}
	base := trimExt(filepath.Base(path))
	for _, sheet := range sheets {
		name := fmt.Sprintf("%s-%s.csv", base, sanitizeFilename(sheet.Name()))
		if err := writeCSVFile(filepath.Join(out, name), cfg, book, []*xls.Sheet{sheet}); err != nil {
			return err
		}
	}
	return nil
}

func verbosity(cfg *config) int {
	if cfg.logfile != nil {
		return 1
	}
	return 0
}

// worksheets lists the sheets of the book in order. Chart and macro sheet
// slots hold no sheet and are skipped.
func worksheets(book *xls.Book) []*xls.Sheet {
	var sheets []*xls.Sheet
	for i := 0; i < book.SheetsCount(); i++ {
		if sheet, err := book.Sheet(i); err == nil {
			sheets = append(sheets, sheet)
		}
	}
	return sheets
}

// selectSheets applies -n, -a with its patterns, and -s. Without any of them
// the first worksheet is converted.
func selectSheets(cfg *config, book *xls.Book) ([]*xls.Sheet, error) {
	available := worksheets(book)
	switch {
	case cfg.sheetName != "":
		sheet, err := book.SheetByName(cfg.sheetName)
		if err != nil {
			return nil, fmt.Errorf("sheet %s not found", cfg.sheetName)
		}
		return []*xls.Sheet{sheet}, nil

	case cfg.allSheets:
		selected := slices.DeleteFunc(available, func(s *xls.Sheet) bool {
			return !wanted(s.Name(), cfg.include, cfg.exclude)
		})
		if len(selected) == 0 {
			return nil, errors.New("no sheets matched selection")
		}
		return selected, nil

	case cfg.sheetID > 0:
		if cfg.sheetID > len(available) {
			return nil, fmt.Errorf("sheet index %d out of range", cfg.sheetID)
		}
		return available[cfg.sheetID-1 : cfg.sheetID], nil
	}

	if len(available) == 0 {
		return nil, errors.New("no sheets found")
	}
	return available[:1], nil
}

func wanted(name string, include, exclude []*regexp.Regexp) bool {
	matches := func(re *regexp.Regexp) bool { return re.MatchString(name) }
	if len(include) > 0 && !slices.ContainsFunc(include, matches) {
		return false
	}
	return !slices.ContainsFunc(exclude, matches)
}

func writeCSVFile(path string, cfg *config, book *xls.Book, sheets []*xls.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(f, cfg, book, sheets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, cfg *config, book *xls.Book, sheets []*xls.Sheet) error {
	bw := bufio.NewWriter(w)
	if err := writeSheets(bw, cfg, book, sheets); err != nil {
		return err
	}
	return bw.Flush()
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return os.MkdirAll(path, 0o755)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", path)
	}
	return nil
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func sanitizeFilename(name string) string {
	clean := strings.TrimSpace(strings.NewReplacer("/", "_", "\\", "_").Replace(name))
	if clean == "" {
		return "sheet"
	}
	return clean
}
