package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"cfe-etl/internal/models"
)

// FromLineItems reduces classified line items to reconciliation input.
func FromLineItems(items []models.LineItem) []InternalEntry {
	entries := make([]InternalEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, InternalEntry{
			TaxID:  item.TaxID,
			Amount: item.Amount,
			Date:   item.Date,
		})
	}
	return entries
}

type internalJSONRow struct {
	TaxID  string           `json:"ruc"`
	Amount *decimal.Decimal `json:"monto_item"`
	Date   string           `json:"fecha"`
}

// LoadInternalJSON reads a month export of the internal source. Rows without
// an amount are dropped.
func LoadInternalJSON(path string) ([]InternalEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading internal export %s: %w", path, err)
	}

	var rows []internalJSONRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing internal export %s: %w", path, err)
	}

	entries := make([]InternalEntry, 0, len(rows))
	for _, row := range rows {
		if row.Amount == nil {
			continue
		}
		date, _ := time.Parse("2006-01-02", row.Date)
		entries = append(entries, InternalEntry{
			TaxID:  row.TaxID,
			Amount: *row.Amount,
			Date:   date,
		})
	}
	return entries, nil
}

type externalJSONRow struct {
	TaxID string           `json:"rut_emisor"`
	Total *decimal.Decimal `json:"monto_total"`
	Net   *decimal.Decimal `json:"monto_neto"`
}

// LoadExternalJSON reads the converted tax-authority report. Rows lacking
// both amounts are dropped; a missing amount on one side counts as zero.
func LoadExternalJSON(path string) ([]ExternalEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading authority report %s: %w", path, err)
	}

	var rows []externalJSONRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing authority report %s: %w", path, err)
	}

	entries := make([]ExternalEntry, 0, len(rows))
	for _, row := range rows {
		if row.Total == nil && row.Net == nil {
			continue
		}
		entry := ExternalEntry{TaxID: row.TaxID}
		if row.Total != nil {
			entry.Total = *row.Total
		}
		if row.Net != nil {
			entry.Net = *row.Net
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
