package biff

import (
	"slices"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"

	"github.com/yamitzky/xlsreader/internal/stream"
	"github.com/yamitzky/xlsreader/internal/xlerr"
)

// String option flags.
const (
	highByte   = 0x01
	extString  = 0x04
	richString = 0x08
)

// LoadString decodes a string at the cursor of s. The character count takes
// lenSize bytes (1 or 2).
//
// In BIFF8 an options byte follows the count. A string split over CONTINUE
// records repeats the options byte at each border, so the character width may
// change mid string. Formatting runs and extended data are skipped.
func LoadString(s stream.ByteStream, borders []int64, lenSize int, version Version) (string, error) {
	count, err := stream.Uint(s, lenSize)
	if err != nil {
		return "", err
	}
	if version == BIFF7 && count > 255 {
		return "", xlerr.Format("Wrong format of XLS file.")
	}

	var options byte
	var runs uint16
	var ext uint32
	if version == BIFF8 {
		if options, err = stream.Uint8(s); err != nil {
			return "", err
		}
		if options&richString != 0 {
			if runs, err = stream.Uint16(s); err != nil {
				return "", err
			}
		}
		if options&extString != 0 {
			if ext, err = stream.Uint32(s); err != nil {
				return "", err
			}
		}
	}

	width := charWidth(options, version)
	units := make([]uint16, count)
	for i := range units {
		if slices.Contains(borders, s.Pos()) {
			if options, err = stream.Uint8(s); err != nil {
				return "", err
			}
			width = charWidth(options, version)
		}
		v, err := stream.Uint(s, width)
		if err != nil {
			return "", err
		}
		if width == 1 {
			units[i] = uint16(charmap.ISO8859_1.DecodeByte(byte(v)))
		} else {
			units[i] = uint16(v)
		}
	}

	if err := stream.Discard(s, int64(runs)*4); err != nil {
		return "", err
	}
	if err := stream.Discard(s, int64(ext)); err != nil {
		return "", err
	}
	return string(utf16.Decode(units)), nil
}

func charWidth(options byte, version Version) int {
	if version == BIFF8 && options&highByte != 0 {
		return 2
	}
	return 1
}
