// Package reconcile aggregates both expenditure sources per counterparty and
// compares them under a relative tolerance.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
)

// InternalEntry is one line item from the internal source, reduced to what
// reconciliation needs.
type InternalEntry struct {
	TaxID  string
	Amount decimal.Decimal
	Date   time.Time
}

// ExternalEntry is one invoice row from the tax-authority report.
type ExternalEntry struct {
	TaxID string
	Total decimal.Decimal
	Net   decimal.Decimal
}

// Engine computes per-counterparty summaries.
type Engine struct {
	// Tolerance is the relative slack: a sum pair matches when the absolute
	// difference does not exceed Tolerance times the internal sum.
	Tolerance decimal.Decimal
	log       logging.Logger
}

// NewEngine creates an engine with the given relative tolerance.
func NewEngine(tolerance float64, log logging.Logger) *Engine {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Engine{Tolerance: decimal.NewFromFloat(tolerance), log: log}
}

type internalAgg struct {
	sum      decimal.Decimal
	lastDate time.Time
}

type externalAgg struct {
	total decimal.Decimal
	net   decimal.Decimal
}

// Compare produces one summary per counterparty present in either source,
// ordered by tax id.
func (e *Engine) Compare(internal []InternalEntry, external []ExternalEntry) []models.CounterpartySummary {
	internalByID := make(map[string]internalAgg)
	for _, row := range internal {
		id := strings.TrimSpace(row.TaxID)
		agg := internalByID[id]
		agg.sum = agg.sum.Add(row.Amount)
		if row.Date.After(agg.lastDate) {
			agg.lastDate = row.Date
		}
		internalByID[id] = agg
	}

	externalByID := make(map[string]externalAgg)
	for _, row := range external {
		id := strings.TrimSpace(row.TaxID)
		agg := externalByID[id]
		agg.total = agg.total.Add(row.Total)
		agg.net = agg.net.Add(row.Net)
		externalByID[id] = agg
	}

	ids := make(map[string]struct{}, len(internalByID)+len(externalByID))
	for id := range internalByID {
		ids[id] = struct{}{}
	}
	for id := range externalByID {
		ids[id] = struct{}{}
	}

	summaries := make([]models.CounterpartySummary, 0, len(ids))
	for id := range ids {
		summaries = append(summaries, e.summarize(id, internalByID[id], externalByID[id]))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].TaxID < summaries[j].TaxID })

	e.log.Info("reconciliation finished",
		logging.Field{Key: "counterparties", Value: len(summaries)},
		logging.Field{Key: "tolerance", Value: e.Tolerance.String()})

	return summaries
}

func (e *Engine) summarize(id string, in internalAgg, ex externalAgg) models.CounterpartySummary {
	difTotal := in.sum.Sub(ex.total).Abs()
	difNet := in.sum.Sub(ex.net).Abs()

	difference := difTotal
	if difNet.LessThan(difference) {
		difference = difNet
	}
	difference = difference.Round(2)

	// Tolerance is relative to the internal sum. A zero internal sum only
	// matches an exactly-zero difference.
	bound := e.Tolerance.Mul(in.sum)
	matchTotal := difTotal.LessThanOrEqual(bound)
	matchNet := difNet.LessThanOrEqual(bound)

	summary := models.CounterpartySummary{
		TaxID:       id,
		InternalSum: in.sum,
		LastDate:    in.lastDate,
		TotalSum:    ex.total,
		NetSum:      ex.net,
		DifTotal:    difTotal,
		DifNet:      difNet,
		Difference:  difference,
		Negative:    ex.total.IsNegative() || ex.net.IsNegative(),
	}

	switch {
	case matchTotal:
		summary.Verdict = models.VerdictMatch
		summary.IncludesTax = models.IncludesTaxYes
	case matchNet:
		summary.Verdict = models.VerdictMatch
		summary.IncludesTax = models.IncludesTaxNo
	default:
		summary.Verdict = models.VerdictDiffer
		summary.IncludesTax = models.IncludesTaxUnknown
		if in.sum.IsZero() {
			summary.Reason = models.ReasonMissingInternal
		} else {
			summary.Reason = models.ReasonAmountDiffers
		}
	}

	return summary
}
