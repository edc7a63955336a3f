package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("slash format", func(t *testing.T) {
		d := ParseDate("15/08/1990")
		require.True(t, d.Parsed())
		got, _ := d.Time()
		require.Equal(t, time.Date(1990, 8, 15, 0, 0, 0, 0, time.UTC), got)
		require.Equal(t, "1990-08-15", d.ISO())
	})

	t.Run("dash day first", func(t *testing.T) {
		d := ParseDate("01-02-2020")
		require.True(t, d.Parsed())
		got, _ := d.Time()
		require.Equal(t, time.February, got.Month())
		require.Equal(t, 1, got.Day())
	})

	t.Run("iso dash", func(t *testing.T) {
		d := ParseDate("2020-02-01")
		require.True(t, d.Parsed())
		require.Equal(t, "2020-02-01", d.ISO())
	})

	t.Run("unparsable passes through raw", func(t *testing.T) {
		d := ParseDate("31/02/2020")
		require.False(t, d.Parsed())
		require.Equal(t, "31/02/2020", d.ISO())
	})

	t.Run("no separator passes through", func(t *testing.T) {
		d := ParseDate("15081990")
		require.False(t, d.Parsed())
		require.Equal(t, "15081990", d.Raw())
	})

	t.Run("empty", func(t *testing.T) {
		d := ParseDate("   ")
		require.True(t, d.Empty())
		require.False(t, d.Parsed())
	})
}
