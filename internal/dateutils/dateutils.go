// Package dateutils handles Spanish month names and month date ranges.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

var monthNames = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var monthNumbers = map[string]time.Month{}

func init() {
	for i, name := range monthNames {
		monthNumbers[name] = time.Month(i + 1)
	}
}

// MonthNumber resolves a Spanish month name to its time.Month.
func MonthNumber(name string) (time.Month, error) {
	m, ok := monthNumbers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown month name: %q", name)
	}
	return m, nil
}

// MonthName returns the Spanish name of a month.
func MonthName(m time.Month) string {
	return monthNames[int(m)-1]
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) (from, to time.Time) {
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// ParseMonth resolves a Spanish month name and year to the month's date
// range.
func ParseMonth(name string, year int) (from, to time.Time, err error) {
	m, err := MonthNumber(name)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, to = MonthRange(year, m)
	return from, to, nil
}
