package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/stretchr/testify/assert"
)

func TestTickLogsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	prev := common.Logger()
	common.SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer common.SetLogger(prev)

	p := NewProfiler()
	p.SetUpdateInterval(time.Hour)
	p.RecordFrame(4*time.Millisecond, 12)
	assert.False(t, p.Tick())
	assert.Empty(t, buf.String())

	p.SetUpdateInterval(time.Nanosecond)
	p.RecordFrame(2*time.Millisecond, 8)
	time.Sleep(time.Millisecond)
	assert.True(t, p.Tick())
	assert.Contains(t, buf.String(), `"draws_per_frame":10`)
	assert.Contains(t, buf.String(), `"max_frame_ms":4`)
	assert.Equal(t, 2*time.Millisecond, p.LastFrame())
}

func TestSetUpdateIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler()
	p.SetUpdateInterval(0)
	assert.Equal(t, time.Second, p.updateInterval)
}
