package reportsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)

	from, to, err := Window(RangeThisMonth, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *from)
	require.Nil(t, to)

	from, to, err = Window(RangeLastMonth, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), *from)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *to)

	from, to, err = Window(RangeThisYear, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	require.Nil(t, to)

	from, to, err = Window(RangeAllTime, now)
	require.NoError(t, err)
	require.Nil(t, from)
	require.Nil(t, to)

	// empty range falls back to all-time
	from, to, err = Window("", now)
	require.NoError(t, err)
	require.Nil(t, from)
	require.Nil(t, to)
}

func TestWindow_LastMonthAcrossYear(t *testing.T) {
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	from, to, err := Window(RangeLastMonth, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), *from)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *to)
}

func TestWindow_InvalidRange(t *testing.T) {
	_, _, err := Window("fortnight", time.Now())
	require.Error(t, err)
	require.Equal(t, ErrInvalidRange, Code(err))
}
