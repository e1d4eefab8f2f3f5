package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Cell is a nullable float64 reading.
type Cell struct {
	Value float64
	Valid bool
}

// Null returns an empty cell.
func Null() Cell { return Cell{} }

// Float wraps v. Non-finite values collapse to null.
func Float(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Value: v, Valid: true}
}

// nullTokens are the literal spellings treated as missing.
var nullTokens = map[string]struct{}{
	"":     {},
	"NULL": {},
	"nan":  {},
	"NaN":  {},
	"None": {},
}

// IsNullToken reports whether raw is one of the missing-value sentinels.
func IsNullToken(raw string) bool {
	_, ok := nullTokens[strings.TrimSpace(raw)]
	return ok
}

// ParseCell converts a raw textual token into a Cell. Sentinels, garbage and
// non-finite numbers all become null.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return Null()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null()
	}
	return Float(v)
}

// String renders the cell in shortest decimal form, empty when null.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// MarshalJSON renders a number or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, c.Value, 'f', -1, 64), nil
}

// UnmarshalJSON accepts a number or null.
func (c *Cell) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*c = Null()
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = Float(v)
	return nil
}
