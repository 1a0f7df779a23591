package values

import (
	"strconv"
	"strings"

	"gwbasic/internal/berrors"
	"gwbasic/internal/mbf"
)

// Number renders a numeric value without padding.
func Number(v Value) string {

	if v.kind == Integer {
		return strconv.Itoa(int(v.i))
	}

	return v.f.String()
}

// StrForm is the STR$ rendering: a leading blank stands in for the sign
// of non-negative numbers.
func StrForm(v Value) string {

	s := Number(v)
	if v.Sign() >= 0 {
		return " " + s
	}

	return s
}

// PrintForm is the PRINT rendering of a number: STR$ form followed by a
// blank.
func PrintForm(v Value) string {
	return StrForm(v) + " "
}

// maxSingleDigits is the most significant digits a literal may have and
// still be read as single precision.
const maxSingleDigits = 7

// ParseLiteral reads a number from the front of s with the typing rules
// of program literals: an explicit sigil wins; otherwise a D exponent or
// more than seven digits gives Double, a whole number within the Integer
// range gives Integer and anything else Single. It returns the value and
// the number of bytes consumed; zero means s does not start with a
// number.
func ParseLiteral(s string) (Value, int, error) {

	i := 0
	digits := 0
	frac := false
	expo := false
	dexp := false

	for ; i < len(s); i++ {
		c := s[i]
		if c == '.' && !frac {
			frac = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		if digits > 0 || c != '0' {
			digits++
		}
	}
	if i == 0 || (i == 1 && frac) {
		return Value{}, 0, nil
	}

	end := i
	if i < len(s) && strings.IndexByte("EeDd", s[i]) >= 0 {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		expo = true
		dexp = s[i] == 'D' || s[i] == 'd'
		end = j
	}

	kind := Single
	switch {
	case end < len(s) && IsKind(s[end]) && s[end] != '$':
		kind = Kind(s[end])
	case dexp || digits > maxSingleDigits:
		kind = Double
	case !frac && !expo:
		n, err := strconv.ParseInt(s[:end], 10, 32)
		if err == nil && n <= 32767 {
			kind = Integer
		}
	}

	// A literal past the MBF range reads as the largest value of its
	// type, with a recoverable Overflow.
	f, _, over := mbf.ParseDecimal(mbf.Double, s[:end])
	if over != nil && !berrors.IsRecoverable(over) {
		return Value{}, end, over
	}

	n := end
	if n < len(s) && IsKind(s[n]) && s[n] != '$' {
		n++
	}

	switch kind {
	default:
		sf, err := f.ToSingle()
		if err == nil {
			err = over
		}
		return Float(sf), n, err
	case Double:
		return Float(f), n, over
	case Integer:
		i, err := ToInt(Float(f))
		return Int(i), n, err
	}
}

// ParseNumber reads a number the way VAL, INPUT and READ do: leading
// blanks are skipped, a sign is allowed, &H and &O prefixes select hex
// and octal. Bytes that do not form a number stop the scan; an empty
// scan yields zero.
func ParseNumber(s string) (Value, int, error) {

	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}

	if i+1 < len(s) && s[i] == '&' {
		n, used := ParseRadix(s[i+1:])
		return Int(int16(n)), i + 1 + used, nil
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	v, n, err := ParseLiteral(s[i:])
	if n == 0 {
		return Int(0), i, nil
	}
	if err != nil && !berrors.IsRecoverable(err) {
		return v, i + n, err
	}
	if neg {
		var nerr error
		if v, nerr = Negate(v); nerr != nil {
			err = nerr
		}
	}

	return v, i + n, err
}

// ParseRadix reads the digits after '&': H for hex, O or nothing for
// octal. The result wraps to 16 bits.
func ParseRadix(s string) (uint16, int) {

	base := uint32(8)
	i := 0
	if i < len(s) && (s[i] == 'H' || s[i] == 'h') {
		base = 16
		i++
	} else if i < len(s) && (s[i] == 'O' || s[i] == 'o') {
		i++
	}

	var n uint32
	for ; i < len(s); i++ {
		d := digitValue(s[i])
		if d < 0 || uint32(d) >= base {
			break
		}
		n = (n*base + uint32(d)) & 0xffff
	}

	return uint16(n), i
}

func digitValue(c byte) int {

	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}

	return -1
}

// Val implements VAL over the bytes of a string.
func Val(b []byte) (Value, error) {

	v, _, err := ParseNumber(string(b))

	return v, err
}
