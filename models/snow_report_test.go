package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInchRange(t *testing.T) {
	tests := []struct {
		raw       string
		wantLower int
		wantUpper int
	}{
		{`6 - 12"`, 6, 12},
		{`6-12`, 6, 12},
		{` 18 -  24 in `, 18, 24},
	}

	for _, tt := range tests {
		got := ParseInchRange(tt.raw)
		require.NotNil(t, got, "range %q", tt.raw)
		require.Nil(t, got.Inches)
		require.Equal(t, tt.wantLower, *got.InchesLower)
		require.Equal(t, tt.wantUpper, *got.InchesUpper)
	}
}

func TestParseInchRangeSingleValue(t *testing.T) {
	got := ParseInchRange(`30"`)
	require.NotNil(t, got)
	require.NotNil(t, got.Inches)
	require.Equal(t, 30, *got.Inches)
	require.Nil(t, got.InchesLower)
}

func TestParseInchRangeGarbage(t *testing.T) {
	require.Nil(t, ParseInchRange(""))
	require.Nil(t, ParseInchRange("no measurement today"))
}
