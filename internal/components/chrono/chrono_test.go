package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualImpl(t *testing.T) {
	start := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	clock := NewManualImpl(start)
	require.Equal(t, start, clock.Now())

	clock.Advance(time.Hour)
	require.Equal(t, start.Add(time.Hour), clock.Now())
}

func TestStandardImpl(t *testing.T) {
	before := time.Now()
	now := StandardImpl{}.Now()
	require.False(t, now.Before(before))
}
