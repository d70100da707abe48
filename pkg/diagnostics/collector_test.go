package diagnostics

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_AppendOnlyOrder(t *testing.T) {
	c := NewCollector(nil)
	c.Info("resolver", "cache", "first", nil)
	c.Warn("config", "unknown-rule", "second", map[string]any{"rule": "nope"})
	c.Error("resolver", "invalid-rule-options", "third", nil)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)
	assert.Equal(t, "third", all[2].Message)
	assert.Equal(t, "nope", all[1].Context["rule"])
	assert.False(t, all[0].Time.IsZero())

	// Mutating the returned slice must not affect the collector.
	all[0].Message = "changed"
	assert.Equal(t, "first", c.All()[0].Message)
}

func TestCollector_Filter(t *testing.T) {
	c := NewCollector(nil)
	c.Info("a", "", "info", nil)
	c.Warn("a", "", "warn", nil)
	c.Error("a", "", "error", nil)

	tests := []struct {
		min  Level
		want []string
	}{
		{LevelInfo, []string{"info", "warn", "error"}},
		{LevelWarning, []string{"warn", "error"}},
		{LevelError, []string{"error"}},
	}
	for _, tt := range tests {
		t.Run(tt.min.String(), func(t *testing.T) {
			var got []string
			for _, d := range c.Filter(tt.min) {
				got = append(got, d.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollector_HasErrorsAndClear(t *testing.T) {
	c := NewCollector(nil)
	assert.False(t, c.HasErrors())

	c.Warn("a", "", "warn", nil)
	assert.False(t, c.HasErrors())

	c.Error("a", "", "boom", nil)
	assert.True(t, c.HasErrors())
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.HasErrors())
}

func TestCollector_MirrorsToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := NewCollector(logger)
	c.Warn("resolver", "invalid-rule-options", "bad options", map[string]any{"rule": "claude-md-size"})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "bad options")
	assert.Contains(t, out, "code=invalid-rule-options")
	assert.Contains(t, out, "rule=claude-md-size")
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Info("worker", "", fmt.Sprintf("entry %d", i), nil)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
