package hockey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTeam(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NJ", "NJD"},
		{"LA", "LAK"},
		{"SJ", "SJS"},
		{"TB", "TBL"},
		{"BOS", "BOS"},
		{"tor", "TOR"},
		{" wpg ", "WPG"},
		{"XXX", "XXX"}, // unknown codes pass through
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTeam(tt.input))
		})
	}
}
