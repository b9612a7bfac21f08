package xls

import "strings"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Colname returns the spreadsheet name of a zero-based column index:
// 0 is "A", 25 is "Z", 26 is "AA". Negative indexes give "".
func Colname(colx int) string {
	if colx < 0 {
		return ""
	}
	var name []byte
	for {
		name = append(name, alphabet[colx%26])
		colx = colx/26 - 1
		if colx < 0 {
			break
		}
	}
	for i, j := 0, len(name)-1; i < j; i, j = i+1, j-1 {
		name[i], name[j] = name[j], name[i]
	}
	return string(name)
}

// ColumnIndex is the inverse of Colname. It is case insensitive and returns
// false for anything that is not a column name.
func ColumnIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	idx := 0
	for _, r := range strings.ToUpper(name) {
		pos := strings.IndexRune(alphabet, r)
		if pos < 0 {
			return 0, false
		}
		idx = idx*26 + pos + 1
	}
	return idx - 1, true
}
