package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOccurrenceKeyRoundTrip(t *testing.T) {
	today := day(t, "2024-06-10")
	key := OccurrenceKey{
		TaskID: "3f2b7c1e-9a4d-4e21-8c55-0d1e2f3a4b5c",
		Date:   day(t, "2024-06-03"),
		Kind:   KindOverdue,
	}

	require.Equal(t, "3f2b7c1e-9a4d-4e21-8c55-0d1e2f3a4b5c-2024-06-03", key.String())
	require.Equal(t, key, ParseOccurrenceKey(key.String(), today))
}

func TestOccurrenceKeyRealInstance(t *testing.T) {
	today := day(t, "2024-06-10")
	key := OccurrenceKey{TaskID: "task-2024", Date: today, Kind: KindReal}

	require.Equal(t, "task-2024", key.String())
	require.Equal(t, "task-2024-2024-06-10", key.Token())
	require.Equal(t, key, ParseOccurrenceKey(key.Token(), today))
}

func TestParseOccurrenceKeyFailsClosed(t *testing.T) {
	today := day(t, "2024-06-10")
	for _, raw := range []string{
		"plain",
		"abc-2024-13-01",
		"abc-2024-06-1",
		"abc_2024-06-01",
		"-2024-06-01",
		"",
	} {
		got := ParseOccurrenceKey(raw, today)
		require.Equal(t, raw, got.TaskID, raw)
		require.Equal(t, today, got.Date, raw)
		require.Equal(t, KindReal, got.Kind, raw)
	}
}

func TestHiddenSetIgnoresKindAndTime(t *testing.T) {
	hidden := HiddenSet{}
	hidden.Hide(OccurrenceKey{TaskID: "t", Date: day(t, "2024-06-03").Add(15 * time.Hour), Kind: KindReal})
	require.True(t, hidden.Has(OccurrenceKey{TaskID: "t", Date: day(t, "2024-06-03"), Kind: KindOverdue}))
	require.False(t, hidden.Has(OccurrenceKey{TaskID: "t", Date: day(t, "2024-06-04")}))

	var none HiddenSet
	require.False(t, none.Has(OccurrenceKey{TaskID: "t"}))
}
