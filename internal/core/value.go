package core

// value.go parses user-entered numbers for conversion.
//
// Values arrive as text from form fields, query strings and CLI arguments,
// so the parser tolerates the usual copy/paste noise:
//   - Thousands separators ("1,234.5")
//   - Accounting negatives ("(12.5)")
//   - Spreadsheet formula prefixes (="42") and surrounding quotes
//   - Scientific notation ("6.242e18")
//
// Results are rounded for display on their decimal digits through
// pgtype.Numeric, not on the binary float, so 2.675 at three significant
// digits shows as 2.68 the way a user expects.

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// ErrInvalidNumber is returned when input text is not a number.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrValueRequired is returned when input text is empty.
	ErrValueRequired = errors.New("required field: value is empty")
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseValue converts user input to a finite float64.
func ParseValue(s string) (float64, error) {
	s = CleanInput(s)
	if s == "" {
		return 0, ErrValueRequired
	}
	raw := s

	// Accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	if isNegative {
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		s = "-" + s
	}
	s = strings.TrimPrefix(s, "+")

	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidNumber, raw)
	}
	return f, nil
}

// CleanInput removes common copy/paste artifacts from a value:
// - Trims whitespace
// - Removes Excel formula prefix (= or ="...")
// - Removes surrounding quotes
func CleanInput(s string) string {
	s = strings.TrimSpace(s)

	s = strings.TrimPrefix(s, "=")
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// FormatValue renders a value for display. precision > 0 rounds the shortest
// decimal form of v to that many significant digits, half away from zero;
// otherwise the shortest exact representation is used.
// Very large and very small magnitudes use exponent notation.
func FormatValue(v float64, precision int) string {
	if precision > 0 {
		if rounded, err := roundSignificant(v, precision); err == nil {
			v = rounded
		}
	}
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs < 1e-6 || abs >= 1e15 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
)

// roundSignificant rounds the shortest decimal form of v to digits
// significant digits using exact decimal arithmetic.
func roundSignificant(v float64, digits int) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		return 0, err
	}
	if n.Int.Sign() == 0 {
		return 0, nil
	}

	mag := new(big.Int).Abs(n.Int)
	if extra := len(mag.String()) - digits; extra > 0 {
		div := new(big.Int).Exp(bigTen, big.NewInt(int64(extra)), nil)
		q, r := new(big.Int).QuoRem(mag, div, new(big.Int))
		if r.Lsh(r, 1).Cmp(div) >= 0 {
			q.Add(q, bigOne)
		}
		if n.Int.Sign() < 0 {
			q.Neg(q)
		}
		n.Int = q
		n.Exp += int32(extra)
	}

	f8, err := n.Float64Value()
	if err != nil {
		return 0, err
	}
	if !f8.Valid || math.IsInf(f8.Float64, 0) {
		return 0, ErrInvalidNumber
	}
	return f8.Float64, nil
}
