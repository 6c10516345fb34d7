package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation verdicts. The literals are part of the persisted table
// contract and match what downstream reporting expects.
const (
	VerdictMatch  = "coincide"
	VerdictDiffer = "difiere"
)

// Reason codes attached to non-matching counterparties.
const (
	ReasonMissingInternal = "no aparece en la fuente interna"
	ReasonAmountDiffers   = "distinto monto que la fuente interna"
)

// IncludesTax annotation values: whether the authority total that reconciled
// is presumed tax-inclusive.
const (
	IncludesTaxYes     = "Sí"
	IncludesTaxNo      = "No"
	IncludesTaxUnknown = ""
)

// CounterpartySummary is one row of the reconciliation output table:
// aggregated amounts from both sources for a single counterparty, the
// derived difference metrics and the match verdict.
type CounterpartySummary struct {
	TaxID       string          `json:"ruc" csv:"ruc"`
	InternalSum decimal.Decimal `json:"suma_interna" csv:"suma_interna"`
	LastDate    time.Time       `json:"fecha" csv:"-"`

	TotalSum decimal.Decimal `json:"suma_total" csv:"suma_total"`
	NetSum   decimal.Decimal `json:"suma_neto" csv:"suma_neto"`

	DifTotal   decimal.Decimal `json:"dif_total" csv:"dif_total"`
	DifNet     decimal.Decimal `json:"dif_neto" csv:"dif_neto"`
	Difference decimal.Decimal `json:"diferencia" csv:"diferencia"`

	Verdict     string `json:"resultado" csv:"resultado"`
	IncludesTax string `json:"contempla_iva" csv:"contempla_iva"`
	Negative    bool   `json:"monto_es_negativo" csv:"monto_es_negativo"`
	Reason      string `json:"aclaracion" csv:"aclaracion"`
}
