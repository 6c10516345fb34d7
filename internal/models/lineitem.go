// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification origins recorded on a LineItem after the pipeline runs.
const (
	OriginHistorical = "por_historial"
	OriginNew        = "nueva"
)

// CategoryError is the terminal fallback category for items whose
// classification irrecoverably failed. Persisted as-is so failed rows stay
// visible downstream.
const CategoryError = "error"

// LineItem is one taxable line extracted from a CFE invoice document.
// It is created by the parser, categorized once by the classification
// pipeline, and terminal once persisted.
type LineItem struct {
	// RowID is a per-run synthetic sequence number (1..N) used to re-join
	// classification output to the originating item. It is not persisted.
	RowID int `json:"rowid"`

	Date       time.Time `json:"fecha"`
	Provider   string    `json:"proveedor"`
	TaxID      string    `json:"ruc"`
	TradeName  string    `json:"nombre_comercial"`
	Activity   string    `json:"giro"`
	Phone      string    `json:"telefono"`
	Branch     string    `json:"sucursal"`
	BranchCode string    `json:"codigo_sucursal"`
	Address    string    `json:"direccion"`
	City       string    `json:"ciudad"`
	State      string    `json:"departamento"`

	Description  string          `json:"descripcion"`
	Quantity     decimal.Decimal `json:"cantidad"`
	UnitPrice    decimal.Decimal `json:"precio_unitario"`
	Amount       decimal.Decimal `json:"monto_item"`
	Currency     string          `json:"moneda"`
	ExchangeRate decimal.Decimal `json:"tipo_cambio"`
	AmountUYU    decimal.Decimal `json:"monto_uyu"`

	SourceFile string `json:"archivo"`

	Category string `json:"categoria"`
	Verified bool   `json:"verificado"`
	Origin   string `json:"origen"`
}

// HistoricalRecord is a previously persisted LineItem restricted to the
// fields the historical classifier needs. Immutable once loaded; it exists
// only as a read replica for the duration of one classification run.
type HistoricalRecord struct {
	Provider    string
	Description string
	Category    string
	Verified    bool
}

// ClassificationResult is the output unit of both classifiers: a row
// identifier joined back to a category label. The JSON keys match the wire
// format the completion service is instructed to produce.
type ClassificationResult struct {
	RowID    int    `json:"rowid"`
	Category string `json:"categoria"`
}
