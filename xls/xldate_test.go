package xls

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDateAsTuple(t *testing.T) {
	tests := []struct {
		xldate float64
		mode   DateMode
		want   DateTuple
	}{
		{2741., Dec31_1899, DateTuple{1907, 7, 3, 0, 0, 0}},
		{38406., Dec31_1899, DateTuple{2005, 2, 23, 0, 0, 0}},
		{32266., Dec31_1899, DateTuple{1988, 5, 3, 0, 0, 0}},
		{1., Jan01_1904, DateTuple{1904, 1, 2, 0, 0, 0}},
		{0.273611, Dec31_1899, DateTuple{0, 0, 0, 6, 34, 0}},
		{0.538889, Dec31_1899, DateTuple{0, 0, 0, 12, 56, 0}},
		{0.741123, Dec31_1899, DateTuple{0, 0, 0, 17, 47, 13}},
		{0.99999999, Jan01_1904, DateTuple{1904, 1, 2, 0, 0, 0}},
	}

	for _, tt := range tests {
		got, err := XldateAsTuple(tt.xldate, tt.mode)
		if err != nil {
			t.Errorf("XldateAsTuple(%f, %v) error = %v", tt.xldate, tt.mode, err)
			continue
		}
		if got != tt.want {
			t.Errorf("XldateAsTuple(%f, %v) = %v, want %v", tt.xldate, tt.mode, got, tt.want)
		}
	}
}

func TestDateAsTupleErrors(t *testing.T) {
	tests := []struct {
		xldate float64
		mode   DateMode
		want   DateErrorKind
	}{
		{-1, Dec31_1899, DateNegative},
		{59, Dec31_1899, DateAmbiguous},
		{2958466, Dec31_1899, DateTooLarge},
		{2958466 - 1462, Jan01_1904, DateTooLarge},
		{1, DateModeUnknown, DateBadMode},
	}

	for _, tt := range tests {
		_, err := XldateAsTuple(tt.xldate, tt.mode)
		var de *DateError
		if !errors.As(err, &de) {
			t.Errorf("XldateAsTuple(%f, %v) error = %v, want DateError", tt.xldate, tt.mode, err)
			continue
		}
		if de.Kind != tt.want {
			t.Errorf("XldateAsTuple(%f, %v) kind = %v, want %v", tt.xldate, tt.mode, de.Kind, tt.want)
		}
	}
}

func TestXldateFromDateTuple(t *testing.T) {
	tests := []struct {
		year, month, day int
		want             float64
	}{
		{1907, 7, 3, 2741.},
		{2005, 2, 23, 38406.},
		{1988, 5, 3, 32266.},
	}

	for _, tt := range tests {
		got, err := XldateFromDateTuple(tt.year, tt.month, tt.day, Dec31_1899)
		if err != nil {
			t.Errorf("XldateFromDateTuple(%d, %d, %d) error = %v", tt.year, tt.month, tt.day, err)
			continue
		}
		if math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("XldateFromDateTuple(%d, %d, %d) = %f, want %f", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestXldateFromDateTupleErrors(t *testing.T) {
	tests := []struct {
		year, month, day int
		want             DateErrorKind
	}{
		{1899, 12, 31, DateBadTuple},
		{2001, 13, 1, DateBadTuple},
		{2001, 2, 29, DateBadTuple},
		{1900, 2, 1, DateAmbiguous},
	}

	for _, tt := range tests {
		_, err := XldateFromDateTuple(tt.year, tt.month, tt.day, Dec31_1899)
		var de *DateError
		if !errors.As(err, &de) || de.Kind != tt.want {
			t.Errorf("XldateFromDateTuple(%d, %d, %d) error = %v, want kind %v", tt.year, tt.month, tt.day, err, tt.want)
		}
	}

	if got, err := XldateFromDateTuple(2000, 2, 29, Dec31_1899); err != nil || got != 36585 {
		t.Errorf("XldateFromDateTuple(2000, 2, 29) = %f, %v, want 36585", got, err)
	}
}

func TestXldateFromTimeTuple(t *testing.T) {
	tests := []struct {
		hour, minute, second int
		want                 float64
	}{
		{6, 34, 0, 0.273611},
		{12, 56, 0, 0.538889},
		{17, 47, 13, 0.741123},
	}

	for _, tt := range tests {
		got, err := XldateFromTimeTuple(tt.hour, tt.minute, tt.second)
		if err != nil {
			t.Errorf("XldateFromTimeTuple(%d, %d, %d) error = %v", tt.hour, tt.minute, tt.second, err)
			continue
		}
		if math.Abs(got-tt.want) > 0.000001 {
			t.Errorf("XldateFromTimeTuple(%d, %d, %d) = %f, want %f", tt.hour, tt.minute, tt.second, got, tt.want)
		}
	}

	if _, err := XldateFromTimeTuple(24, 0, 0); err == nil {
		t.Errorf("XldateFromTimeTuple(24, 0, 0) error = nil, want DateBadTuple")
	}
}

func TestXldateFromDatetimeTuple(t *testing.T) {
	tests := []struct {
		in   DateTuple
		want float64
	}{
		{DateTuple{1907, 7, 3, 6, 34, 0}, 2741.273611},
		{DateTuple{2005, 2, 23, 12, 56, 0}, 38406.538889},
		{DateTuple{1988, 5, 3, 17, 47, 13}, 32266.741123},
	}

	for _, tt := range tests {
		got, err := XldateFromDatetimeTuple(tt.in, Dec31_1899)
		if err != nil {
			t.Errorf("XldateFromDatetimeTuple(%v) error = %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 0.000001 {
			t.Errorf("XldateFromDatetimeTuple(%v) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestDatesAndTimes1900Epoch(t *testing.T) {
	excelDates := []struct {
		expected string
		xldate   float64
	}{
		// Excel's 0.0 date in the 1900 epoch is 1 day before 1900.
		{"1899-12-31T00:00:00.000", 0},
		// Before the false Excel 1900 leapday.
		{"1900-02-28T02:11:11.986", 59.09111094906},
		// After it.
		{"1900-03-01T05:46:44.068", 61.24078782403},
		{"1982-08-25T00:15:20.213", 30188.010650613425},
		{"2065-04-19T00:16:48.290", 60376.011670023145},
		{"3222-06-11T03:08:08.251", 483014.13065105322},
		{"4379-08-03T06:14:48.580", 905652.26028449077},
		{"5949-12-30T12:59:54.263", 1479232.5416002662},
		// End of Excel's date range.
		{"9999-12-31T23:59:59.000", 2958465.999988426},
	}

	for _, tt := range excelDates {
		exp, err := time.Parse("2006-01-02T15:04:05.000", tt.expected)
		if err != nil {
			t.Fatalf("Failed to parse expected time %s: %v", tt.expected, err)
		}
		got, err := XldateAsDatetime(tt.xldate, Dec31_1899)
		if err != nil {
			t.Errorf("XldateAsDatetime(%f) error = %v", tt.xldate, err)
			continue
		}
		if !got.Equal(exp) {
			t.Errorf("XldateAsDatetime(%f) = %v, want %v", tt.xldate, got, exp)
		}
	}
}

func TestDatesOnly1904Epoch(t *testing.T) {
	excelDates := []struct {
		expected string
		xldate   float64
	}{
		{"1904-01-01", 0},
		{"1904-01-02", 1},
		{"1904-03-01", 60},
		{"2000-01-01", 35064},
	}

	for _, tt := range excelDates {
		exp, err := time.Parse("2006-01-02", tt.expected)
		if err != nil {
			t.Fatalf("Failed to parse expected time %s: %v", tt.expected, err)
		}
		got, err := XldateAsDatetime(tt.xldate, Jan01_1904)
		if err != nil {
			t.Errorf("XldateAsDatetime(%f) error = %v", tt.xldate, err)
			continue
		}
		if !got.Equal(exp) {
			t.Errorf("XldateAsDatetime(%f) = %v, want %v", tt.xldate, got, exp)
		}
	}
}
