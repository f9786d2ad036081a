package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339 with offset",
			input: "2024-03-01T10:00:00+02:00",
			want:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 utc",
			input: "2024-03-01T10:00:00Z",
			want:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 with fraction",
			input: "2024-03-01T10:00:00.500Z",
			want:  time.Date(2024, 3, 1, 10, 0, 0, 500000000, time.UTC),
		},
		{
			name:  "no zone treated as utc",
			input: "2024-03-01T10:00:00",
			want:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "space separator",
			input: "2024-03-01 10:00:00",
			want:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-time", "2024-13-40T99:00:00Z", "1709287200"} {
		_, err := ParseTimestamp(input)
		assert.Error(t, err, "input %q should not parse", input)
	}
}
