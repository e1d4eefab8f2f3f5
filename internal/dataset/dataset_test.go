package dataset

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		valid bool
	}{
		{"plain number", "12.5", 12.5, true},
		{"padded number", "  7 ", 7, true},
		{"negative", "-0.25", -0.25, true},
		{"NULL sentinel", "NULL", 0, false},
		{"empty", "", 0, false},
		{"lower nan", "nan", 0, false},
		{"NaN", "NaN", 0, false},
		{"None", "None", 0, false},
		{"garbage", "abc", 0, false},
		{"infinity", "inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCell(tt.raw)
			assert.Equal(t, tt.valid, c.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, c.Value)
			}
		})
	}
}

func TestFloatRejectsNonFinite(t *testing.T) {
	assert.False(t, Float(math.NaN()).Valid)
	assert.False(t, Float(math.Inf(-1)).Valid)
	assert.True(t, Float(0).Valid)
}

func TestCellJSON(t *testing.T) {
	b, err := json.Marshal([]Cell{Float(1.5), Null(), Float(-3)})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,null,-3]`, string(b))

	var back []Cell
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []Cell{Float(1.5), Null(), Float(-3)}, back)
}

func TestSortByDate(t *testing.T) {
	rows := []Row{
		{Date: day(3), HasDate: true, Values: []Cell{Float(3)}},
		{Values: []Cell{Float(-1)}},
		{Date: day(1), HasDate: true, Values: []Cell{Float(1)}},
		{Date: day(3), HasDate: true, Values: []Cell{Float(33)}},
		{Date: day(2), HasDate: true, Values: []Cell{Float(2)}},
	}

	SortByDate(rows)

	var got []float64
	for _, r := range rows {
		got = append(got, r.Values[0].Value)
	}
	// duplicates keep their input order; the undated row trails
	assert.Equal(t, []float64{1, 2, 3, 33, -1}, got)
}

func TestTableProject(t *testing.T) {
	tbl := NewTable([]string{"a", "b", "c"})
	require.NoError(t, tbl.Append(Row{Date: day(1), HasDate: true, Values: []Cell{Float(1), Float(2), Float(3)}}))

	sub, err := tbl.Project([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sub.Columns)
	assert.Equal(t, []Cell{Float(3), Float(1)}, sub.Rows[0].Values)

	sub.Rows[0].Values[0] = Null()
	assert.Equal(t, Float(3), tbl.Rows[0].Values[2], "projection must not alias the source")

	_, err = tbl.Project([]string{"a", "zzz"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTableAppendChecksWidth(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	assert.Error(t, tbl.Append(Row{Values: []Cell{Float(1)}}))
}

func TestDateBoundsAndNullCounts(t *testing.T) {
	tbl := NewTable([]string{"a"})
	tbl.Rows = []Row{
		{Date: day(4), HasDate: true, Values: []Cell{Null()}},
		{Values: []Cell{Float(1)}},
		{Date: day(2), HasDate: true, Values: []Cell{Null()}},
	}

	min, max, ok := tbl.DateBounds()
	require.True(t, ok)
	assert.Equal(t, day(2), min)
	assert.Equal(t, day(4), max)
	assert.Equal(t, map[string]int{"a": 2}, tbl.NullCounts())

	_, _, ok = NewTable(nil).DateBounds()
	assert.False(t, ok)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-02 03:04:05", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), true},
		{"2024-01-02", day(2), true},
		{"2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), true},
		{"2024/01/02", day(2), true},
		{"01/02/2024", day(2), true},
		{"NaT", time.Time{}, false},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	t.Run("sorts and coerces", func(t *testing.T) {
		in := "date,a,b\n" +
			"2024-01-03 00:00:00,3,NULL\n" +
			"2024-01-01 00:00:00,1,x\n" +
			",9,9\n" +
			"2024-01-02 00:00:00,,2.5\n"

		tbl, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tbl.Columns)
		require.Len(t, tbl.Rows, 4)
		assert.Equal(t, day(1), tbl.Rows[0].Date)
		assert.Equal(t, Null(), tbl.Rows[0].Values[1])
		assert.Equal(t, Float(2.5), tbl.Rows[1].Values[1])
		assert.Equal(t, Null(), tbl.Rows[2].Values[1])
		assert.False(t, tbl.Rows[3].HasDate)
	})

	t.Run("date column not first", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("a,Date\n1,2024-01-01\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, tbl.Columns)
		assert.True(t, tbl.Rows[0].HasDate)
	})

	t.Run("missing date column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"))
		assert.ErrorIs(t, err, ErrMissingDateColumn)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("date,a\n2024-01-01,1,2\n"))
		assert.Error(t, err)
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("date,a,a\n2024-01-01,1,2\n"))
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})
}
