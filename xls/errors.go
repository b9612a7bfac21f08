package xls

import "github.com/yamitzky/xlsreader/internal/xlerr"

// Error is returned for every failure while reading a workbook. Its message is
// human readable; the kind can be tested with errors.Is against the Err*
// values below.
type Error = xlerr.Error

var (
	ErrFormat             = xlerr.ErrFormat
	ErrOutOfRange         = xlerr.ErrOutOfRange
	ErrNotFound           = xlerr.ErrNotFound
	ErrUnsupportedVersion = xlerr.ErrUnsupportedVersion
	ErrIO                 = xlerr.ErrIO
)
