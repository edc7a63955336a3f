package ingest

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src RowSource) []*Record {
	t.Helper()
	var out []*Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestCSVSource(t *testing.T) {
	t.Run("strips BOM and trims header", func(t *testing.T) {
		input := "\xEF\xBB\xBF Employee Code ,First Name\nE1,Alice\n"
		src, err := NewCSVSource(strings.NewReader(input), nil)
		require.NoError(t, err)
		require.Equal(t, []string{"Employee Code", "First Name"}, src.Header())

		recs := readAll(t, src)
		require.Len(t, recs, 1)
		require.Equal(t, "E1", recs[0].Get("Employee Code"))
		require.Equal(t, "Alice", recs[0].Get("First Name"))
	})

	t.Run("field count mismatch is malformed", func(t *testing.T) {
		input := "A,B\n1,2,3\n1,2\n"
		src, err := NewCSVSource(strings.NewReader(input), nil)
		require.NoError(t, err)

		recs := readAll(t, src)
		require.Len(t, recs, 2)
		require.True(t, recs[0].Malformed)
		require.False(t, recs[1].Malformed)
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		input := "A,B\n\n1,2\n   \n"
		src, err := NewCSVSource(strings.NewReader(input), nil)
		require.NoError(t, err)

		recs := readAll(t, src)
		require.Len(t, recs, 1)
	})

	t.Run("empty input has no header", func(t *testing.T) {
		_, err := NewCSVSource(strings.NewReader(""), nil)
		require.Error(t, err)
	})
}

func TestSliceSource(t *testing.T) {
	src, err := NewSliceSource([][]string{
		{" A ", "B"},
		{"1", "2"},
		{"only-one"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, src.Header())

	recs := readAll(t, src)
	require.Len(t, recs, 2)
	require.Equal(t, "1", recs[0].Get("A"))
	require.True(t, recs[1].Malformed)
}
