package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yamitzky/xlsreader/internal/xlstest"
)

func TestRunDefault(t *testing.T) {
	out, errOut, code := runCLI([]string{"-l", `\n`, samplePath(t)})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	want := "String #1,1,0.1,1.1\nString #2,2,0.2,2.2\nString #3,3,0.3,3.3000000000000003\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRunFloatFormat(t *testing.T) {
	out, errOut, code := runCLI([]string{"--floatformat", "%.2f", samplePath(t)})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	record := firstRecord(t, out, ',')
	if got := strings.Join(record, "|"); got != "String #1|1.00|0.10|1.10" {
		t.Fatalf("first record = %q", got)
	}
}

func TestRunDelimiterTab(t *testing.T) {
	out, errOut, code := runCLI([]string{"-d", "tab", samplePath(t)})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	record := firstRecord(t, out, '\t')
	if len(record) != 4 || record[0] != "String #1" {
		t.Fatalf("unexpected first record: %v", record)
	}
}

func TestRunQuoting(t *testing.T) {
	out, errOut, code := runCLI([]string{"-q", "nonnumeric", "-l", `\n`, samplePath(t)})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if first := firstLine(out); first != `"String #1",1,0.1,1.1` {
		t.Fatalf("first line = %q", first)
	}
}

func TestRunDateColumns(t *testing.T) {
	stream := xlstest.WorkbookStream(
		[][]byte{xlstest.DateMode(0)},
		xlstest.Sheet{Name: "Dates", Records: [][]byte{
			xlstest.Number(0, 0, 36526),
			xlstest.Number(0, 1, 36526.5),
			xlstest.FormulaNumber(0, 2, 0.25),
			xlstest.Number(0, 3, 36526),
		}},
	)
	path := writeWorkbook(t, "dates.xls", xlstest.WorkbookFile("Workbook", stream))

	out, errOut, code := runCLI([]string{"-D", "A,B,3", path})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	record := firstRecord(t, out, ',')
	want := []string{"2000-01-01", "2000-01-01 12:00:00", "06:00:00", "36526"}
	if strings.Join(record, "|") != strings.Join(want, "|") {
		t.Fatalf("record = %v, want %v", record, want)
	}

	out, errOut, code = runCLI([]string{"--date-columns", "A", "-f", "%Y/%m/%d", path})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if record := firstRecord(t, out, ','); record[0] != "2000/01/01" {
		t.Fatalf("field[0] = %q, want 2000/01/01", record[0])
	}

	if _, _, code := runCLI([]string{"-D", "A1", path}); code != 2 {
		t.Fatalf("exit code %d for a bad column, want 2", code)
	}
}

func TestRunAllSheets(t *testing.T) {
	stream := xlstest.WorkbookStream(nil,
		xlstest.Sheet{Name: "first", Records: [][]byte{xlstest.Label(0, 0, "one")}},
		xlstest.Sheet{Name: "chart", Type: 0x0200},
		xlstest.Sheet{Name: "second", Records: [][]byte{xlstest.Label(0, 0, "two")}},
	)
	path := writeWorkbook(t, "multi.xls", xlstest.WorkbookFile("Workbook", stream))

	out, errOut, code := runCLI([]string{"-a", "-l", `\n`, path})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if want := "one\n--------\ntwo\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}

	out, _, code = runCLI([]string{"-s", "2", path})
	if code != 0 || strings.TrimSpace(out) != "two" {
		t.Fatalf("-s 2 gave %q (code %d), want two", out, code)
	}

	out, _, code = runCLI([]string{"-a", "-E", "^f", path})
	if code != 0 || strings.TrimSpace(out) != "two" {
		t.Fatalf("-E ^f gave %q (code %d), want two", out, code)
	}

	out, _, code = runCLI([]string{"-n", "second", path})
	if code != 0 || strings.TrimSpace(out) != "two" {
		t.Fatalf("-n second gave %q (code %d), want two", out, code)
	}

	if _, _, code := runCLI([]string{"-s", "3", path}); code != 1 {
		t.Fatalf("-s 3 exit code %d, want 1", code)
	}

	dir := t.TempDir()
	if _, errOut, code := runCLI([]string{"-s", "0", path, dir}); code != 0 {
		t.Fatalf("-s 0 exit code %d, stderr: %s", code, errOut)
	}
	for _, name := range []string{"multi-first.csv", "multi-second.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRunStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-"}, bytes.NewReader(xlstest.SampleWorkbook()), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if record := firstRecord(t, stdout.String(), ','); record[0] != "String #1" {
		t.Fatalf("field[0] = %q", record[0])
	}
}

func TestRunDirectory(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.xls"), xlstest.SampleWorkbook())
	writeFile(t, filepath.Join(in, "notes.txt"), []byte("not a workbook"))
	out := filepath.Join(t.TempDir(), "csv")

	if _, errOut, code := runCLI([]string{in, out}); code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	data, err := os.ReadFile(filepath.Join(out, "a.csv"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "String #1,") {
		t.Fatalf("a.csv = %q", data)
	}
}

func TestRunErrors(t *testing.T) {
	if _, errOut, code := runCLI([]string{filepath.Join(t.TempDir(), "missing.xls")}); code != 1 || errOut == "" {
		t.Fatalf("missing file: code %d, stderr %q", code, errOut)
	}
	if _, _, code := runCLI(nil); code != 2 {
		t.Fatalf("no arguments: code %d, want 2", code)
	}
	if _, _, code := runCLI([]string{"-q", "sometimes", "x.xls"}); code != 2 {
		t.Fatalf("bad quoting: code %d, want 2", code)
	}
	if out, _, code := runCLI([]string{"-v"}); code != 0 || strings.TrimSpace(out) != version {
		t.Fatalf("-v: %q code %d", out, code)
	}
}

func TestRunVerbose(t *testing.T) {
	_, errOut, code := runCLI([]string{"--verbose", "--mmap", samplePath(t)})
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(errOut, "workbook stream") {
		t.Fatalf("stderr = %q, want parser diagnostics", errOut)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`\n`, "\n"},
		{`\r\n`, "\r\n"},
		{"tab", "\t"},
		{"x07", "\a"},
		{`\f`, "\f"},
		{"--------", "--------"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := unescape(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("unescape(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
	for _, in := range []string{`\`, `\q`, "xZZ"} {
		if _, err := unescape(in); err == nil {
			t.Errorf("unescape(%q) succeeded, want error", in)
		}
	}
	for _, in := range []string{"", ";;"} {
		if _, err := parseDelimiter(in); err == nil {
			t.Errorf("parseDelimiter(%q) succeeded, want error", in)
		}
	}
}

func TestStrftime(t *testing.T) {
	tm := time.Date(2001, 2, 3, 16, 5, 6, 0, time.UTC)
	tests := []struct {
		format string
		want   string
	}{
		{"%Y/%m/%d", "2001/02/03"},
		{"%H:%M:%S", "16:05:06"},
		{"%I%p %a %B", "04PM Sat February"},
		{"100%% %q %", "100% %q %"},
	}
	for _, tt := range tests {
		if got := strftime(tm, tt.format); got != tt.want {
			t.Errorf("strftime(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func runCLI(args []string) (string, string, int) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeWorkbook(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeFile(t, path, data)
	return path
}

// samplePath writes the three-row sample workbook to a temporary file.
func samplePath(t *testing.T) string {
	t.Helper()
	return writeWorkbook(t, "sample.xls", xlstest.SampleWorkbook())
}

func firstRecord(t *testing.T, output string, delimiter rune) []string {
	t.Helper()
	reader := csv.NewReader(strings.NewReader(output))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return record
}

func firstLine(output string) string {
	if idx := strings.IndexByte(output, '\n'); idx >= 0 {
		return output[:idx]
	}
	return output
}
