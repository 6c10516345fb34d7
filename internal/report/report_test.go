package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfe-etl/internal/models"
)

func sampleItems() []models.LineItem {
	return []models.LineItem{
		{
			RowID:       1,
			Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Provider:    "ANCAP",
			TaxID:       "210000000017",
			Description: "Nafta Super 95",
			Quantity:    decimal.NewFromInt(30),
			Amount:      decimal.RequireFromString("2406.45"),
			AmountUYU:   decimal.RequireFromString("2406.45"),
			Currency:    "UYU",
			Category:    "Combustible",
			Origin:      models.OriginHistorical,
			SourceFile:  "factura.xml",
		},
	}
}

func TestWriteMonthJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marzo_2025.json")
	require.NoError(t, WriteMonthJSON(sampleItems(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03-10", rows[0]["fecha"])
	assert.Equal(t, "210000000017", rows[0]["ruc"])
	assert.Equal(t, "Combustible", rows[0]["categoria"])
}

func TestWriteItemsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "marzo_2025.csv")
	require.NoError(t, WriteItemsCSV(sampleItems(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "fecha")
	assert.Contains(t, lines[0], "monto_item")
	assert.Contains(t, lines[1], "2025-03-10")
	assert.Contains(t, lines[1], "Nafta Super 95")
	assert.Contains(t, lines[1], "por_historial")
}

func TestWriteSummariesCSV(t *testing.T) {
	summaries := []models.CounterpartySummary{
		{
			TaxID:       "210000000017",
			InternalSum: decimal.NewFromInt(1000),
			TotalSum:    decimal.NewFromInt(1005),
			NetSum:      decimal.NewFromInt(900),
			DifTotal:    decimal.NewFromInt(5),
			DifNet:      decimal.NewFromInt(100),
			Difference:  decimal.NewFromInt(5),
			Verdict:     models.VerdictMatch,
			IncludesTax: models.IncludesTaxYes,
		},
	}

	path := filepath.Join(t.TempDir(), "comparacion.csv")
	require.NoError(t, WriteSummariesCSV(summaries, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "resultado")
	assert.Contains(t, content, "coincide")
	assert.Contains(t, content, "210000000017")
}

func TestWriteSummariesJSON(t *testing.T) {
	summaries := []models.CounterpartySummary{
		{TaxID: "219999990015", Verdict: models.VerdictDiffer, Reason: models.ReasonMissingInternal},
	}

	path := filepath.Join(t.TempDir(), "comparacion.json")
	require.NoError(t, WriteSummariesJSON(summaries, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"resultado": "difiere"`)
	assert.Contains(t, string(data), "no aparece en la fuente interna")
}

func TestWriteMonthJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacio.json")
	require.NoError(t, WriteMonthJSON(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}
