package main

import (
	"math"
	"strings"
	"time"

	"github.com/yamitzky/xlsreader/xls"
)

// strftimeLayouts maps strftime directives to time layouts.
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
}

// formatDate converts a serial with the book's date mode. Without a format,
// values below one day print as a clock, whole days as a date and anything
// else as both.
func formatDate(book *xls.Book, serial float64, format string) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return "", false
	}
	t, err := book.Time(serial)
	if err != nil {
		return "", false
	}
	switch {
	case format != "":
		return strftime(t, format), true
	case serial < 1:
		return t.Format(time.TimeOnly), true
	case serial == math.Trunc(serial):
		return t.Format(time.DateOnly), true
	}
	return t.Format(time.DateTime), true
}

func strftime(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		if layout, ok := strftimeLayouts[format[i]]; ok {
			b.WriteString(t.Format(layout))
		} else if format[i] == '%' {
			b.WriteByte('%')
		} else {
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}
