package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "fractional seconds",
			output:   "720.500000\n",
			expected: 720*time.Second + 500*time.Millisecond,
		},
		{
			name:     "whole seconds",
			output:   "615",
			expected: 615 * time.Second,
		},
		{
			name:    "not available",
			output:  "N/A\n",
			wantErr: true,
		},
		{
			name:    "empty",
			output:  "",
			wantErr: true,
		},
		{
			name:    "non-numeric",
			output:  "duration=abc",
			wantErr: true,
		},
		{
			name:    "negative",
			output:  "-3.0",
			wantErr: true,
		},
		{
			name:    "nan",
			output:  "NaN",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseProbeDuration(tt.output)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "300.000", formatSeconds(5*time.Minute))
	assert.Equal(t, "1.250", formatSeconds(1250*time.Millisecond))
}
