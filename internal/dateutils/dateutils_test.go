package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthNumber(t *testing.T) {
	tests := []struct {
		name     string
		expected time.Month
	}{
		{"enero", time.January},
		{"Marzo", time.March},
		{"  SEPTIEMBRE  ", time.September},
		{"diciembre", time.December},
	}
	for _, tt := range tests {
		m, err := MonthNumber(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, m)
	}
}

func TestMonthNumberUnknown(t *testing.T) {
	_, err := MonthNumber("march")
	assert.Error(t, err)
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "abril", MonthName(time.April))
	assert.Equal(t, "diciembre", MonthName(time.December))
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2025, time.February)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), to)

	// Leap year
	_, to = MonthRange(2024, time.February)
	assert.Equal(t, 29, to.Day())

	_, to = MonthRange(2025, time.December)
	assert.Equal(t, 31, to.Day())
}

func TestParseMonth(t *testing.T) {
	from, to, err := ParseMonth("marzo", 2025)
	require.NoError(t, err)
	assert.Equal(t, time.March, from.Month())
	assert.Equal(t, 31, to.Day())

	_, _, err = ParseMonth("noexiste", 2025)
	assert.Error(t, err)
}
