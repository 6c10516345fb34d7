// Package report writes month exports and reconciliation output to disk.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"cfe-etl/internal/models"
)

// Delimiter is the CSV output delimiter, configurable via csv.delimiter.
var Delimiter rune = ','

// SetDelimiter sets the delimiter for CSV output.
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// monthRow is the JSON shape of a month export. Dates are flattened to
// yyyy-mm-dd so the reconciliation loader and external tooling read them
// without timezone noise.
type monthRow struct {
	Fecha       string          `json:"fecha"`
	Proveedor   string          `json:"proveedor"`
	RUC         string          `json:"ruc"`
	Descripcion string          `json:"descripcion"`
	MontoItem   decimal.Decimal `json:"monto_item"`
	MontoUYU    decimal.Decimal `json:"monto_uyu"`
	Moneda      string          `json:"moneda"`
	Categoria   string          `json:"categoria"`
	Origen      string          `json:"origen"`
}

// csvRow is the CSV shape of an exported line item.
type csvRow struct {
	Fecha       string          `csv:"fecha"`
	Proveedor   string          `csv:"proveedor"`
	RUC         string          `csv:"ruc"`
	Descripcion string          `csv:"descripcion"`
	Cantidad    decimal.Decimal `csv:"cantidad"`
	MontoItem   decimal.Decimal `csv:"monto_item"`
	Moneda      string          `csv:"moneda"`
	MontoUYU    decimal.Decimal `csv:"monto_uyu"`
	Categoria   string          `csv:"categoria"`
	Origen      string          `csv:"origen"`
	Archivo     string          `csv:"archivo"`
}

func formatDate(item models.LineItem) string {
	if item.Date.IsZero() {
		return ""
	}
	return item.Date.Format("2006-01-02")
}

// WriteMonthJSON writes a month of classified line items as a JSON export.
func WriteMonthJSON(items []models.LineItem, path string) error {
	rows := make([]monthRow, len(items))
	for i, item := range items {
		rows[i] = monthRow{
			Fecha:       formatDate(item),
			Proveedor:   item.Provider,
			RUC:         item.TaxID,
			Descripcion: item.Description,
			MontoItem:   item.Amount,
			MontoUYU:    item.AmountUYU,
			Moneda:      item.Currency,
			Categoria:   item.Category,
			Origen:      item.Origin,
		}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling month export: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteItemsCSV writes classified line items as CSV.
func WriteItemsCSV(items []models.LineItem, path string) error {
	rows := make([]csvRow, len(items))
	for i, item := range items {
		rows[i] = csvRow{
			Fecha:       formatDate(item),
			Proveedor:   item.Provider,
			RUC:         item.TaxID,
			Descripcion: item.Description,
			Cantidad:    item.Quantity,
			MontoItem:   item.Amount,
			Moneda:      item.Currency,
			MontoUYU:    item.AmountUYU,
			Categoria:   item.Category,
			Origen:      item.Origin,
			Archivo:     item.SourceFile,
		}
	}
	return writeCSV(&rows, path)
}

// WriteSummariesCSV writes reconciliation summaries as CSV.
func WriteSummariesCSV(summaries []models.CounterpartySummary, path string) error {
	return writeCSV(&summaries, path)
}

// WriteSummariesJSON writes reconciliation summaries as JSON.
func WriteSummariesJSON(summaries []models.CounterpartySummary, path string) error {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summaries: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeCSV(rows interface{}, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return fmt.Errorf("writing CSV %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
