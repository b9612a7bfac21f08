package biff

import "math"

// DoubleFromRK unpacks an RK value. Bit 1 selects a 30-bit signed integer,
// otherwise the upper 30 bits are the high bits of a double. Bit 0 divides
// the result by 100.
func DoubleFromRK(rk uint32) float64 {
	var num float64
	if rk&0x02 != 0 {
		num = float64(int32(rk) >> 2)
	} else {
		num = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		num /= 100
	}
	return num
}

// ResultType is the kind of value cached in a FORMULA record.
type ResultType int

const (
	ResultUnknown ResultType = iota
	ResultDouble
	ResultBoolean
	ResultError
	ResultString
	ResultEmpty
)

func (t ResultType) String() string {
	switch t {
	case ResultDouble:
		return "Double"
	case ResultBoolean:
		return "Boolean"
	case ResultError:
		return "Error"
	case ResultString:
		return "String"
	case ResultEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// ErrorCode is a cell error value.
type ErrorCode uint8

const (
	ErrNull    ErrorCode = 0x00
	ErrDivZero ErrorCode = 0x07
	ErrValue   ErrorCode = 0x0F
	ErrRef     ErrorCode = 0x17
	ErrName    ErrorCode = 0x1D
	ErrNum     ErrorCode = 0x24
	ErrNA      ErrorCode = 0x2A
	ErrUnknown ErrorCode = 0xFF
)

var errorText = map[ErrorCode]string{
	ErrNull:    "#NULL!",  // Intersection of two cell ranges is empty
	ErrDivZero: "#DIV/0!", // Division by zero
	ErrValue:   "#VALUE!", // Wrong type of operand
	ErrRef:     "#REF!",   // Illegal or deleted cell reference
	ErrName:    "#NAME?",  // Wrong function or range name
	ErrNum:     "#NUM!",   // Value range overflow
	ErrNA:      "#N/A",    // Argument or function not available
}

// String returns the text Excel displays for the error.
func (e ErrorCode) String() string {
	if text, ok := errorText[e]; ok {
		return text
	}
	return "#UNKNOWN!"
}

// FormulaResult is a decoded formula result field.
type FormulaResult struct {
	Type   ResultType
	Double float64
	Bool   bool
	Error  ErrorCode
}

// Result field patterns, compared after masking out the payload byte.
const (
	resultMask    uint64 = 0xFFFFFFFFFF00FFFF
	resultBoolean uint64 = 0xFFFF000000000001
	resultError   uint64 = 0xFFFF000000000002
	resultEmpty   uint64 = 0xFFFF000000000003
	resultString  uint64 = 0xFFFF000000000000
)

// DecodeFormulaResult interprets the 8-byte result field of a FORMULA record.
// A string result carries no text; it is stored in the STRING record that follows.
func DecodeFormulaResult(v uint64) FormulaResult {
	payload := byte(v >> 16)
	switch {
	case v&resultMask == resultBoolean:
		return FormulaResult{Type: ResultBoolean, Bool: payload != 0}
	case v&resultMask == resultError:
		code := ErrorCode(payload)
		if _, ok := errorText[code]; !ok {
			code = ErrUnknown
		}
		return FormulaResult{Type: ResultError, Error: code}
	case v&resultMask == resultEmpty:
		return FormulaResult{Type: ResultEmpty}
	case v == resultString:
		return FormulaResult{Type: ResultString}
	}
	return FormulaResult{Type: ResultDouble, Double: math.Float64frombits(v)}
}
