package xls

import (
	"fmt"
	"math"
	"time"
)

// Julian day numbers of the day before each epoch. The 1900 value is shifted
// so that serials from 61 onwards skip Excel's phantom 1900-02-29.
var jdnDelta = [2]int{2415080 - 61, 2416482 - 1}

// First serial that lands in year 10000.
const (
	xldaysTooLarge1900 = 2958466
	xldaysTooLarge1904 = 2958466 - 1462
)

var (
	epoch1904       = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	epoch1900       = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	epoch1900Minus1 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DateErrorKind classifies a DateError.
type DateErrorKind int

const (
	// DateNegative: the serial is below zero.
	DateNegative DateErrorKind = iota + 1
	// DateAmbiguous: a 1900 serial before 1900-03-01, where Excel counts a
	// 29th of February that never existed.
	DateAmbiguous
	// DateTooLarge: the serial is in year 10000 or later.
	DateTooLarge
	// DateBadMode: the date mode is neither Dec31_1899 nor Jan01_1904.
	DateBadMode
	// DateBadTuple: a date or time component is out of range.
	DateBadTuple
)

// DateError is returned by the date conversion helpers.
type DateError struct {
	Kind    DateErrorKind
	Message string
}

func (e *DateError) Error() string {
	return e.Message
}

func dateError(kind DateErrorKind, format string, args ...interface{}) *DateError {
	return &DateError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func checkDateMode(mode DateMode) error {
	if mode != Dec31_1899 && mode != Jan01_1904 {
		return dateError(DateBadMode, "Invalid datemode: %d", int(mode))
	}
	return nil
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// DateTuple is a broken down date serial. Pure times have a zero date part.
type DateTuple struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// XldateAsTuple converts a serial (a date, a datetime or a time) into its
// Gregorian components, rounded to the nearest second.
//
// If 0.0 <= xldate < 1.0 it is taken as a time and the date part is zero.
func XldateAsTuple(xldate float64, mode DateMode) (DateTuple, error) {
	if err := checkDateMode(mode); err != nil {
		return DateTuple{}, err
	}
	if xldate == 0 {
		return DateTuple{}, nil
	}
	if xldate < 0 {
		return DateTuple{}, dateError(DateNegative, "xldate < 0.00: %f", xldate)
	}

	xldays := int(xldate)
	seconds := int(math.Round((xldate - float64(xldays)) * 86400))
	var t DateTuple
	if seconds == 86400 {
		xldays++
	} else {
		t.Hour = seconds / 3600
		t.Minute = seconds / 60 % 60
		t.Second = seconds % 60
	}

	limit := xldaysTooLarge1900
	if mode == Jan01_1904 {
		limit = xldaysTooLarge1904
	}
	if xldays >= limit {
		return DateTuple{}, dateError(DateTooLarge, "xldate too large: %f", xldate)
	}
	if xldays == 0 {
		return t, nil
	}
	if xldays < 61 && mode == Dec31_1899 {
		return DateTuple{}, dateError(DateAmbiguous, "1900 leap-year problem: %f", xldate)
	}

	jdn := xldays + jdnDelta[mode]
	yreg := ((((jdn*4+274277)/146097)*3/4)+jdn+1363)*4 + 3
	mp := ((yreg%1461)/4)*535 + 333
	t.Day = (mp%16384)/535 + 1
	mp >>= 14
	if mp >= 10 {
		t.Year, t.Month = yreg/1461-4715, mp-9
	} else {
		t.Year, t.Month = yreg/1461-4716, mp+3
	}
	return t, nil
}

// XldateAsDatetime converts a serial into a UTC time with millisecond
// resolution. In the 1900 system serials from 60 onwards are shifted back a
// day to absorb the phantom leap day.
func XldateAsDatetime(xldate float64, mode DateMode) (time.Time, error) {
	if err := checkDateMode(mode); err != nil {
		return time.Time{}, err
	}
	if xldate < 0 {
		return time.Time{}, dateError(DateNegative, "xldate < 0.00: %f", xldate)
	}
	epoch := epoch1904
	if mode == Dec31_1899 {
		epoch = epoch1900
		if xldate >= 60 {
			epoch = epoch1900Minus1
		}
	}

	days := int(xldate)
	ms := int64(math.Round((xldate - float64(days)) * 86400000))
	return epoch.AddDate(0, 0, days).Add(time.Duration(ms) * time.Millisecond), nil
}

// XldateFromDateTuple converts a date to a serial. The zero date gives 0.
func XldateFromDateTuple(year, month, day int, mode DateMode) (float64, error) {
	if err := checkDateMode(mode); err != nil {
		return 0, err
	}
	if year == 0 && month == 0 && day == 0 {
		return 0, nil
	}
	if year < 1900 || year > 9999 {
		return 0, dateError(DateBadTuple, "Invalid year: (%d, %d, %d)", year, month, day)
	}
	if month < 1 || month > 12 {
		return 0, dateError(DateBadTuple, "Invalid month: (%d, %d, %d)", year, month, day)
	}
	maxDay := daysInMonth[month]
	if month == 2 && isLeap(year) {
		maxDay = 29
	}
	if day < 1 || day > maxDay {
		return 0, dateError(DateBadTuple, "Invalid day: (%d, %d, %d)", year, month, day)
	}

	yp, mp := year+4716, month-3
	if month <= 2 {
		yp, mp = yp-1, month+9
	}
	jdn := 1461*yp/4 + (979*mp+16)/32 + day - 1364 - (yp+184)/100*3/4
	xldays := jdn - jdnDelta[mode]
	if xldays <= 0 {
		return 0, dateError(DateBadTuple, "Invalid (year, month, day): (%d, %d, %d)", year, month, day)
	}
	if xldays < 61 && mode == Dec31_1899 {
		return 0, dateError(DateAmbiguous, "Before 1900-03-01: (%d, %d, %d)", year, month, day)
	}
	return float64(xldays), nil
}

// XldateFromTimeTuple converts a time of day to a fraction of a day.
func XldateFromTimeTuple(hour, minute, second int) (float64, error) {
	if hour < 0 || hour >= 24 || minute < 0 || minute >= 60 || second < 0 || second >= 60 {
		return 0, dateError(DateBadTuple, "Invalid (hour, minute, second): (%d, %d, %d)", hour, minute, second)
	}
	return ((float64(second)/60+float64(minute))/60 + float64(hour)) / 24, nil
}

// XldateFromDatetimeTuple converts a full tuple to a serial.
func XldateFromDatetimeTuple(t DateTuple, mode DateMode) (float64, error) {
	date, err := XldateFromDateTuple(t.Year, t.Month, t.Day, mode)
	if err != nil {
		return 0, err
	}
	tod, err := XldateFromTimeTuple(t.Hour, t.Minute, t.Second)
	if err != nil {
		return 0, err
	}
	return date + tod, nil
}
