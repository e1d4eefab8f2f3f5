package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

// Precision is the number of decimals kept in the canonical table.
const Precision = 3

// CoerceNumeric turns a raw token into a nullable number. Missing-value
// sentinels and anything that does not parse become null.
func CoerceNumeric(raw string) dataset.Cell {
	return dataset.ParseCell(raw)
}

// CleanCell coerces raw and rounds the result to Precision decimals.
func CleanCell(raw string) dataset.Cell {
	c := CoerceNumeric(raw)
	if !c.Valid {
		return c
	}
	return dataset.Float(Round3(c.Value))
}

// maxExcelSerial is 9999-12-31, the last day Excel can represent.
const maxExcelSerial = 2958465

// ParseDate accepts the textual layouts known to dataset.ParseTimestamp, a
// compact yyyymmdd date, and a bare number read as an Excel 1900-system
// serial date.
func ParseDate(raw string) (time.Time, bool) {
	if t, ok := dataset.ParseTimestamp(raw); ok {
		return t, true
	}

	s := strings.TrimSpace(raw)
	if len(s) == len("20060102") {
		if t, err := time.Parse("20060102", s); err == nil {
			return t, true
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 || serial >= maxExcelSerial+1 || math.IsNaN(serial) {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.Round(time.Second).UTC(), true
}

// Round3 rounds x to three decimals, halves away from zero. The rounding is
// done on the shortest decimal representation of x, so 0.1235 becomes
// 0.124 even though its binary value is slightly below the half.
func Round3(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	s := strconv.FormatFloat(x, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= Precision {
		return x
	}

	digits := []byte(s[:dot] + s[dot+1:dot+1+Precision])
	if s[dot+1+Precision] >= '5' {
		digits = increment(digits)
	}

	intLen := len(digits) - Precision
	out := string(digits[:intLen]) + "." + string(digits[intLen:])
	if neg {
		out = "-" + out
	}
	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		return x
	}
	if v == 0 {
		return 0
	}
	return v
}

// increment adds one to a string of decimal digits, growing it on overflow.
func increment(d []byte) []byte {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i] < '9' {
			d[i]++
			return d
		}
		d[i] = '0'
	}
	return append([]byte{'1'}, d...)
}
