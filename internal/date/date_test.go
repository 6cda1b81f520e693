package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-04T10:00:00Z", time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)},
		{"2025-03-04T10:00:00+02:00", time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)},
		{"2025-03-04T10:00:00", time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)},
		{"2025-03-04 10:00", time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)},
		{"2025-03-04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{" today ", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"Tomorrow", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"+3d", now.Add(72 * time.Hour)},
		{"+36h", now.Add(36 * time.Hour)},
		{"+90m", now.Add(90 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "soon", "2025-13-01", "+xd", "+-3d", "+-1h", "03/04/2025"} {
		_, err := Parse(in, now)
		assert.Error(t, err, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-03-04", Format(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-04 10:15", Format(time.Date(2025, 3, 4, 10, 15, 0, 0, time.UTC)))
	zoned := time.Date(2025, 3, 4, 2, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2025-03-04 01:00", Format(zoned))
}

func TestRelative(t *testing.T) {
	assert.Equal(t, "in 2d", Relative(now.Add(50*time.Hour), now))
	assert.Equal(t, "in 5h", Relative(now.Add(5*time.Hour+10*time.Minute), now))
	assert.Equal(t, "5h ago", Relative(now.Add(-5*time.Hour), now))
	assert.Equal(t, "in 12m", Relative(now.Add(12*time.Minute), now))
}
