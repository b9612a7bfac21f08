package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yamitzky/xlsreader/xls"
)

const defaultSheetDelimiter = "--------"

var version = "dev"

// errUsage means the problem was already reported by the flag set.
var errUsage = errors.New("usage")

// shortFlags maps each one-letter alias to the long flag it shares a value with.
var shortFlags = map[string]string{
	"v": "version",
	"a": "all",
	"s": "sheet",
	"n": "sheetname",
	"d": "delimiter",
	"l": "lineterminator",
	"f": "dateformat",
	"D": "date-columns",
	"i": "ignoreempty",
	"e": "escape",
	"p": "sheetdelimiter",
	"q": "quoting",
	"I": "include_sheet_pattern",
	"E": "exclude_sheet_pattern",
}

type config struct {
	showVersion    bool
	allSheets      bool
	sheetID        int
	sheetName      string
	delimiter      rune
	lineTerminator string
	sheetDelimiter string
	quoting        quotingMode
	dateFormat     string
	floatFormat    string
	dateColumns    map[int]bool
	ignoreEmpty    bool
	escape         bool
	include        []*regexp.Regexp
	exclude        []*regexp.Regexp
	useMmap        bool
	logfile        io.Writer

	input  string
	output string
}

type patternList []string

func (p *patternList) String() string {
	return strings.Join(*p, ",")
}

func (p *patternList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run converts according to args and returns the exit status: 2 for bad
// arguments, 1 for a failed conversion.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseArgs(args, stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	case err != nil:
		fmt.Fprintln(stderr, err)
		return 2
	}
	if cfg.showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	if err := convert(cfg, stdin, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	var (
		delimiter, terminator, sheetDelimiter string
		quoting, dateColumns                  string
		include, exclude                      patternList
		verbose                               bool
	)

	fs := flag.NewFlagSet("xls2csv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&cfg.showVersion, "version", false, "show program's version number and exit")
	fs.BoolVar(&cfg.allSheets, "all", false, "export all sheets")
	fs.IntVar(&cfg.sheetID, "sheet", -1, "sheet number to convert, 0 for all")
	fs.StringVar(&cfg.sheetName, "sheetname", "", "sheet name to convert")
	fs.StringVar(&delimiter, "delimiter", ",", "column delimiter, 'tab' or 'x09' for a tab")
	fs.StringVar(&terminator, "lineterminator", "", "line terminator, '\\n' '\\r\\n' or '\\r' (default: the OS line separator)")
	fs.StringVar(&cfg.dateFormat, "dateformat", "", "strftime `format` for date columns (ex. %Y/%m/%d)")
	fs.StringVar(&dateColumns, "date-columns", "", "comma separated `columns` (ex. A,C or 1,3) written as dates using the workbook date mode")
	fs.StringVar(&cfg.floatFormat, "floatformat", "", "printf `format` for numbers (ex. %.15f)")
	fs.BoolVar(&cfg.ignoreEmpty, "ignoreempty", false, "skip empty lines")
	fs.BoolVar(&cfg.escape, "escape", false, "escape \\r\\n\\t characters")
	fs.StringVar(&sheetDelimiter, "sheetdelimiter", defaultSheetDelimiter, "line written between sheets, '' for none, 'x07' or '\\f' for form feed")
	fs.StringVar(&quoting, "quoting", "minimal", "field quoting, 'none' 'minimal' 'nonnumeric' or 'all'")
	fs.Var(&include, "include_sheet_pattern", "with -a, only convert sheets whose names match the `pattern`")
	fs.Var(&exclude, "exclude_sheet_pattern", "with -a, skip sheets whose names match the `pattern`")
	fs.BoolVar(&cfg.useMmap, "mmap", false, "memory map the input file")
	fs.BoolVar(&verbose, "verbose", false, "write parser diagnostics to stderr")
	for short, long := range shortFlags {
		f := fs.Lookup(long)
		fs.Var(f.Value, short, f.Usage)
	}
	fs.Usage = func() {
		fmt.Fprint(stderr, `Usage: xls2csv [options] xlsfile [outfile]

xlsfile is an xls file, '-' for standard input, or a directory whose xls
files are all converted. outfile is a csv file, or a directory when -s 0 is
given or xlsfile is a directory.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, errUsage
	}
	if cfg.showVersion {
		return cfg, nil
	}
	rest := fs.Args()
	if len(rest) < 1 {
		fs.Usage()
		return nil, errUsage
	}
	cfg.input = rest[0]
	if len(rest) > 1 {
		cfg.output = rest[1]
	}

	if cfg.sheetName != "" && (cfg.allSheets || cfg.sheetID >= 0) {
		return nil, errors.New("cannot combine --sheetname with --sheet or --all")
	}
	cfg.allSheets = cfg.allSheets || cfg.sheetID == 0
	if verbose {
		cfg.logfile = stderr
	}

	var err error
	if cfg.delimiter, err = parseDelimiter(delimiter); err != nil {
		return nil, fmt.Errorf("invalid delimiter: %w", err)
	}
	cfg.lineTerminator = lineSeparator()
	if terminator != "" {
		if cfg.lineTerminator, err = unescape(terminator); err != nil {
			return nil, fmt.Errorf("invalid line terminator: %w", err)
		}
	}
	if cfg.sheetDelimiter, err = unescape(sheetDelimiter); err != nil {
		return nil, fmt.Errorf("invalid sheet delimiter: %w", err)
	}
	if cfg.quoting, err = parseQuoting(quoting); err != nil {
		return nil, fmt.Errorf("invalid quoting: %w", err)
	}
	if cfg.include, err = compilePatterns(include); err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	if cfg.exclude, err = compilePatterns(exclude); err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	if cfg.dateColumns, err = parseDateColumns(dateColumns); err != nil {
		return nil, fmt.Errorf("invalid date columns: %w", err)
	}
	return cfg, nil
}

// unescape decodes the spellings accepted for delimiters and terminators:
// "tab", a byte as xHH, and the backslash escapes \n \r \t \f \\.
func unescape(value string) (string, error) {
	if strings.EqualFold(value, "tab") {
		return "\t", nil
	}
	if len(value) == 3 && (value[0] == 'x' || value[0] == 'X') {
		b, err := strconv.ParseUint(value[1:], 16, 8)
		if err != nil {
			return "", err
		}
		return string(rune(b)), nil
	}

	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] != '\\' {
			b.WriteByte(value[i])
			continue
		}
		i++
		if i == len(value) {
			return "", errors.New("dangling escape")
		}
		switch value[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'f':
			b.WriteByte('\f')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", fmt.Errorf("unknown escape \\%c", value[i])
		}
	}
	return b.String(), nil
}

func parseDelimiter(value string) (rune, error) {
	s, err := unescape(value)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%q is not a single character", value)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func compilePatterns(values []string) ([]*regexp.Regexp, error) {
	var patterns []*regexp.Regexp
	for _, value := range values {
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// parseDateColumns reads a list such as "A,C" or "1,3" (one-based numbers).
func parseDateColumns(value string) (map[int]bool, error) {
	if value == "" {
		return nil, nil
	}
	cols := make(map[int]bool)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 {
				return nil, fmt.Errorf("column %d: numbers start at 1", n)
			}
			cols[n-1] = true
			continue
		}
		idx, ok := xls.ColumnIndex(part)
		if !ok {
			return nil, fmt.Errorf("bad column %q", part)
		}
		cols[idx] = true
	}
	return cols, nil
}

func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
