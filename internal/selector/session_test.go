package selector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(NewCache(quietLogger()), writeFixture(t, 5))
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestSessionStartsUnloaded(t *testing.T) {
	s := NewSession(NewCache(quietLogger()), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, StateUnloaded, s.State())

	assert.ErrorIs(t, s.SelectGroup("pump1"), ErrNotLoaded)
	assert.ErrorIs(t, s.SetRange(jan(1), jan(2)), ErrNotLoaded)
	assert.ErrorIs(t, s.SetPair("", ""), ErrNotLoaded)
	_, err := s.Series()
	assert.ErrorIs(t, err, ErrNotLoaded)

	var dle *DataLoadError
	assert.ErrorAs(t, s.Load(context.Background()), &dle)
	assert.Equal(t, StateUnloaded, s.State())
}

func TestSessionDefaults(t *testing.T) {
	s := loadedSession(t)
	assert.Equal(t, StateLoaded, s.State())
	assert.Equal(t, "loaded", s.State().String())

	sel := s.Selection()
	assert.Equal(t, "pump1", sel.Group)
	assert.Equal(t, DateRange{Start: jan(1), End: jan(5)}, sel.Range)
	assert.Len(t, sel.Columns, 10)
	assert.Equal(t, "caudalDeAlimentacionNido1M3PerH", sel.X)
	assert.Equal(t, "presionNido1Psi", sel.Y)
}

func TestSessionSeries(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.SelectGroup("pump2"))
	require.NoError(t, s.SetRange(jan(2), jan(4)))

	view, err := s.Series()
	require.NoError(t, err)
	assert.Equal(t, 3, view.Table.Len())
	assert.Equal(t, "caudalDeAlimentacionNido2M3PerH", view.Table.Columns[0])
	assert.False(t, view.Empty())

	require.NoError(t, s.SetColumns([]string{"p80Nido2Um"}))
	view, err = s.Series()
	require.NoError(t, err)
	assert.Equal(t, []string{"p80Nido2Um"}, view.Table.Columns)

	assert.ErrorIs(t, s.SetColumns([]string{"p80Nido1Um"}), ErrUnknownColumn)

	require.NoError(t, s.SetRange(jan(20), jan(21)))
	view, err = s.Series()
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestSessionScatter(t *testing.T) {
	s := loadedSession(t)
	require.NoError(t, s.SetPair("velocidadBomba1Rpm", "potenciaBomba1Kw"))

	view, err := s.Scatter()
	require.NoError(t, err)
	require.Len(t, view.Points, 5)
	assert.Equal(t, float64(103), view.Points[0].X)
	assert.Equal(t, float64(104), view.Points[0].Y)

	assert.ErrorIs(t, s.SetPair("velocidadBomba1Rpm", "velocidadBomba1Rpm"), ErrSameColumn)
	assert.ErrorIs(t, s.SelectGroup("pump5"), ErrUnknownGroup)
	assert.ErrorIs(t, s.SetRange(jan(3), jan(1)), ErrInvalidDateRange)

	// rejected changes leave the selection alone
	sel := s.Selection()
	assert.Equal(t, "pump1", sel.Group)
	assert.Equal(t, "velocidadBomba1Rpm", sel.X)
}

func TestSessionsShareTheCachedTable(t *testing.T) {
	cache := NewCache(quietLogger())
	path := writeFixture(t, 3)

	a, b := NewSession(cache, path), NewSession(cache, path)
	require.NoError(t, a.Load(context.Background()))
	require.NoError(t, b.Load(context.Background()))

	require.NoError(t, a.SelectGroup("pump4"))
	assert.Equal(t, "pump1", b.Selection().Group)

	sa, _ := a.Snapshot()
	sb, _ := b.Snapshot()
	assert.Same(t, sa, sb)
	assert.EqualValues(t, 1, cache.Stats().Loads)
}
