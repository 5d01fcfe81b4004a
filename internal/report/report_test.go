package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, "no samples", Summarize(nil).String())

	s := Summarize([]float64{200, 400, 600})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 200.0, s.Min)
	assert.Equal(t, 600.0, s.Max)
	assert.InDelta(t, 400, s.Mean, 1e-9)
	assert.InDelta(t, 200, s.StdDev, 1e-9)

	one := Summarize([]float64{5})
	assert.Equal(t, 0.0, one.StdDev)
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second + 900*time.Millisecond, "01:02:03"},
		{26 * time.Hour, "26:00:00"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.in))
	}
}

func TestHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "hist.png")
	require.NoError(t, Histogram(path, []float64{250, 900, 1200, 1300, 4000}, 10, 200, 10000))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, Histogram(path, nil, 10, 200, 10000))
}
