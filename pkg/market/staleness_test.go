package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMostRecentCompletedTradingDay(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "monday rolls back to friday",
			now:  time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), // Monday
			want: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),   // Friday
		},
		{
			name: "tuesday rolls back to monday",
			now:  time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday rolls back to friday",
			now:  time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday rolls back to friday",
			now:  time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MostRecentCompletedTradingDay(tc.now))
		})
	}
}

func TestNewQuoteStatus(t *testing.T) {
	monday := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	t.Run("last friday on the following monday is fresh", func(t *testing.T) {
		status := NewQuoteStatus("2025-03-07", monday)
		require.False(t, status.IsStale)
	})

	t.Run("two fridays ago is stale", func(t *testing.T) {
		status := NewQuoteStatus("2025-02-28", monday)
		require.True(t, status.IsStale)
	})

	t.Run("same day intraday stamp is fresh", func(t *testing.T) {
		status := NewQuoteStatus("2025-03-10 15:55:00", monday)
		require.False(t, status.IsStale)
	})

	t.Run("unparsable stamp is stale", func(t *testing.T) {
		status := NewQuoteStatus("n/a", monday)
		require.True(t, status.IsStale)
	})
}
