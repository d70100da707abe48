package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name       string
		info       BuildInfo
		wantOut    []string
		notWantOut []string
	}{
		{
			name:       "release version",
			info:       BuildInfo{Version: "0.1.0"},
			wantOut:    []string{"claudelint v0.1.0", "Claude project configuration"},
			notWantOut: []string{"commit"},
		},
		{
			name:    "with build metadata",
			info:    BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-02"},
			wantOut: []string{"claudelint v1.2.3", "commit abc1234, built 2026-01-02"},
		},
		{
			name:       "dev version",
			info:       BuildInfo{Version: "dev", Commit: "unknown"},
			wantOut:    []string{"claudelint vdev"},
			notWantOut: []string{"commit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.info)
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())

			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.notWantOut {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}
