package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-layered-config/internal/logger"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"dev", Dev},
		{"DEV", Dev},
		{"Stag", Stag},
		{"prod", Prod},
		{"PROD", Prod},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEnvironment_Unknown(t *testing.T) {
	for _, in := range []string{"qa", "production", " dev", "staging"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseEnvironment(in)
			assert.ErrorIs(t, err, ErrUnknownEnvironment)
		})
	}
}

func TestResolveEnvironment_DefaultsToDev(t *testing.T) {
	got, err := resolveEnvironment("", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, Dev, got)
}

func TestEnvironment_String(t *testing.T) {
	assert.Equal(t, "stag", Stag.String())
}
