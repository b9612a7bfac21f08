package xls

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"strings"
)

// FileFormatDescriptions describes every value InspectFormat can return.
var FileFormatDescriptions = map[string]string{
	"xls":  "Excel xls",
	"xlsb": "Excel 2007 xlsb file",
	"xlsx": "Excel xlsx file",
	"ods":  "Openoffice.org ODS file",
	"zip":  "Unknown ZIP file",
	"":     "Unknown file type",
}

// XLS_SIGNATURE is the compound file magic at the start of an xls file.
var XLS_SIGNATURE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ZIP_SIGNATURE starts every xlsx, xlsb and ods file.
var ZIP_SIGNATURE = []byte("PK\x03\x04")

// PEEK_SIZE is the number of leading bytes needed to tell formats apart.
const PEEK_SIZE = 8

// Zip members that identify each zipped format, matched case-insensitively
// with forward slashes.
var zipMarkers = []struct {
	member string
	format string
}{
	{"xl/workbook.xml", "xlsx"},
	{"xl/workbook.bin", "xlsb"},
	{"content.xml", "ods"},
}

// InspectFormat inspects content, or the file at path when content is nil,
// and returns a key of FileFormatDescriptions. "" means unknown. A leading ~
// in path is expanded to the home directory.
func InspectFormat(path string, content []byte) (string, error) {
	if content == nil {
		expanded, err := expandHome(path)
		if err != nil {
			return "", err
		}
		return inspectFile(expanded)
	}
	if len(content) < PEEK_SIZE {
		return "", nil
	}
	switch {
	case bytes.HasPrefix(content, XLS_SIGNATURE):
		return "xls", nil
	case bytes.HasPrefix(content, ZIP_SIGNATURE):
		zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
		if err != nil {
			return "", err
		}
		return zipFormat(zr), nil
	}
	return "", nil
}

func inspectFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	peek := make([]byte, PEEK_SIZE)
	n, err := io.ReadFull(f, peek)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if n < PEEK_SIZE {
		return "", nil
	}
	switch {
	case bytes.HasPrefix(peek, XLS_SIGNATURE):
		return "xls", nil
	case bytes.HasPrefix(peek, ZIP_SIGNATURE):
		st, err := f.Stat()
		if err != nil {
			return "", err
		}
		zr, err := zip.NewReader(f, st.Size())
		if err != nil {
			return "", err
		}
		return zipFormat(zr), nil
	}
	return "", nil
}

// zipFormat maps member names to a format. Some third party writers use
// backslashes or lower case names.
func zipFormat(zr *zip.Reader) string {
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[strings.ToLower(strings.ReplaceAll(f.Name, "\\", "/"))] = true
	}
	for _, m := range zipMarkers {
		if names[m.member] {
			return m.format
		}
	}
	return "zip"
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", home, 1), nil
}
