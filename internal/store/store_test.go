package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
)

func TestTableNames(t *testing.T) {
	s := New(nil, "datalogic", 100, logging.NewMockLogger())
	assert.Equal(t, "datalogic_2025", s.TableName(2025))
	assert.Equal(t, "DGI_acme_2025", s.ComparisonTableName("acme", 2025))

	s = New(nil, "", 0, logging.NewMockLogger())
	assert.Equal(t, "datalogic_2024", s.TableName(2024))
	assert.Equal(t, 100, s.chunkSize)
}

func TestDominantYearMonth(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	items := []models.LineItem{
		{Date: date(2025, time.March, 1)},
		{Date: date(2025, time.March, 15)},
		{Date: date(2025, time.April, 2)},
	}
	year, month, ok := dominantYearMonth(items)
	require.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.March, month)
}

func TestDominantYearMonthTieResolvesToEarliest(t *testing.T) {
	date := func(y int, m time.Month) time.Time {
		return time.Date(y, m, 10, 0, 0, 0, 0, time.UTC)
	}

	items := []models.LineItem{
		{Date: date(2025, time.April)},
		{Date: date(2025, time.March)},
	}
	year, month, ok := dominantYearMonth(items)
	require.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.March, month)
}

func TestDominantYearMonthIgnoresZeroDates(t *testing.T) {
	items := []models.LineItem{
		{},
		{Date: time.Date(2024, time.December, 3, 0, 0, 0, 0, time.UTC)},
	}
	year, month, ok := dominantYearMonth(items)
	require.True(t, ok)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.December, month)
}

func TestDominantYearMonthNoDates(t *testing.T) {
	_, _, ok := dominantYearMonth([]models.LineItem{{}, {}})
	assert.False(t, ok)
}

func TestToRecordRoundTripsFields(t *testing.T) {
	item := models.LineItem{
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Provider:    "ANCAP",
		TaxID:       "210000000017",
		Description: "nafta",
		Currency:    "UYU",
		Category:    "Combustible",
		Origin:      models.OriginHistorical,
		Verified:    true,
		SourceFile:  "factura.xml",
	}
	rec := toRecord(item)
	assert.Equal(t, "ANCAP", rec.Proveedor)
	assert.Equal(t, "210000000017", rec.RUC)
	assert.Equal(t, "Combustible", rec.Categoria)
	assert.Equal(t, models.OriginHistorical, rec.Origen)
	assert.True(t, rec.Verificado)
	assert.Equal(t, "factura.xml", rec.Archivo)
}

func TestToComparisonRecord(t *testing.T) {
	s := models.CounterpartySummary{
		TaxID:       "210000000017",
		Verdict:     models.VerdictDiffer,
		IncludesTax: models.IncludesTaxUnknown,
		Reason:      models.ReasonMissingInternal,
		Negative:    true,
	}
	rec := toComparisonRecord(s)
	assert.Equal(t, "210000000017", rec.RUC)
	assert.Equal(t, models.VerdictDiffer, rec.Resultado)
	assert.Equal(t, models.ReasonMissingInternal, rec.Aclaracion)
	assert.True(t, rec.MontoEsNegativo)
}
