package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFiltersNormalize(t *testing.T) {
	f := Filters{Page: 0, PageSize: 0}.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, 20, f.PageSize)

	f = Filters{Page: -3, PageSize: 500}.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, 20, f.PageSize)

	f = Filters{Page: 4, PageSize: 25}.Normalize()
	require.Equal(t, 4, f.Page)
	require.Equal(t, 25, f.PageSize)
	require.Equal(t, 75, f.Offset())
	require.Equal(t, 25, f.Limit())
}

func TestCalculateMetadata(t *testing.T) {
	m := CalculateMetadata(101, 2, 20)
	require.Equal(t, 2, m.CurrentPage)
	require.Equal(t, 6, m.LastPage)
	require.Equal(t, 101, m.TotalRecords)

	require.Equal(t, Metadata{}, CalculateMetadata(0, 1, 20))
}
