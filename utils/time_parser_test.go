package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"30s":   30 * time.Second,
		"2d":    48 * time.Hour,
		"1d12h": 36 * time.Hour,
		" 5m ":  5 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"xd", "-1d", "1d?", "soon"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}
