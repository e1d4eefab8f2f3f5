package selector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

func jan(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

// allColumns lists the forty pump columns in group order.
func allColumns(t *testing.T) []string {
	t.Helper()
	var cols []string
	for _, g := range Groups() {
		c, err := SelectGroup(g)
		require.NoError(t, err)
		cols = append(cols, c...)
	}
	return cols
}

// fixtureTable builds one row per day from 2024-01-01 to 2024-01-<days>.
// Cell values encode day and column index as day*100+col.
func fixtureTable(t *testing.T, days int) *dataset.Table {
	t.Helper()
	cols := allColumns(t)
	tbl := dataset.NewTable(cols)
	for d := 1; d <= days; d++ {
		vals := make([]dataset.Cell, len(cols))
		for i := range cols {
			vals[i] = dataset.Float(float64(d*100 + i))
		}
		require.NoError(t, tbl.Append(dataset.Row{Date: jan(d), HasDate: true, Values: vals}))
	}
	return tbl
}

// writeFixture stores a canonical CSV with every pump column for the given
// number of days and returns its path.
func writeFixture(t *testing.T, days int) string {
	t.Helper()
	tbl := fixtureTable(t, days)

	var b strings.Builder
	b.WriteString("date," + strings.Join(tbl.Columns, ",") + "\n")
	for _, r := range tbl.Rows {
		fields := []string{dataset.FormatDate(r)}
		for _, c := range r.Values {
			fields = append(fields, c.String())
		}
		fmt.Fprintln(&b, strings.Join(fields, ","))
	}

	path := filepath.Join(t.TempDir(), "processed_pumps.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}
