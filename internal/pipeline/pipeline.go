// Package pipeline orchestrates the ingestion runs: parse, classify in two
// stages, persist, and reconcile.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cfe-etl/internal/cfeparser"
	"cfe-etl/internal/classifier"
	"cfe-etl/internal/dateutils"
	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
	"cfe-etl/internal/reconcile"
)

// Storage is the persistence surface the pipeline needs.
type Storage interface {
	Upload(ctx context.Context, items []models.LineItem) error
	FetchHistorical(ctx context.Context, years []int) ([]models.HistoricalRecord, error)
	FetchMonth(ctx context.Context, year int, month time.Month) ([]models.LineItem, error)
	UploadComparison(ctx context.Context, summaries []models.CounterpartySummary, company string, year int) error
}

// Runner wires the pipeline stages together.
type Runner struct {
	store      Storage
	historical *classifier.HistoricalClassifier
	batch      *classifier.BatchClassifier
	engine     *reconcile.Engine
	log        logging.Logger
}

// NewRunner builds a Runner from its stages.
func NewRunner(store Storage, historical *classifier.HistoricalClassifier, batch *classifier.BatchClassifier, engine *reconcile.Engine, log logging.Logger) *Runner {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Runner{
		store:      store,
		historical: historical,
		batch:      batch,
		engine:     engine,
		log:        log,
	}
}

// ClassifyAndLoad runs a full ingestion: parse every CFE file in dir,
// classify against history first and the completion model second, then
// persist. historyYears names the year tables consulted for matching.
func (r *Runner) ClassifyAndLoad(ctx context.Context, dir string, historyYears []int) error {
	runID := uuid.NewString()
	log := r.log.WithField("run_id", runID)

	items, err := cfeparser.ParseDir(dir)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", dir, err)
	}
	if len(items) == 0 {
		log.Warn("no line items extracted, nothing to do")
		return nil
	}
	for i := range items {
		items[i].RowID = i + 1
	}

	history, err := r.store.FetchHistorical(ctx, historyYears)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	matched, unmatched := r.historical.Classify(items, history)
	log.Info("two-stage classification starting",
		logging.Field{Key: "by_history", Value: len(matched)},
		logging.Field{Key: "for_model", Value: len(unmatched)})

	if len(unmatched) > 0 {
		results, err := r.batch.Classify(ctx, unmatched)
		if err != nil {
			return fmt.Errorf("batch classification: %w", err)
		}
		ApplyResults(unmatched, results)
	}

	if err := r.store.Upload(ctx, items); err != nil {
		return fmt.Errorf("persisting run %s: %w", runID, err)
	}

	log.Info("ingestion run finished",
		logging.Field{Key: "items", Value: len(items)})
	return nil
}

// ApplyResults joins classification output back onto the items by rowid.
// Items without a result degrade to the error category so every persisted
// row carries a category.
func ApplyResults(items []*models.LineItem, results []models.ClassificationResult) {
	byRowID := make(map[int]string, len(results))
	for _, res := range results {
		byRowID[res.RowID] = res.Category
	}
	for _, item := range items {
		category, ok := byRowID[item.RowID]
		if !ok {
			category = models.CategoryError
		}
		item.Category = category
	}
}

// Reconcile compares one stored month against a tax-authority report and
// persists the per-counterparty summaries.
func (r *Runner) Reconcile(ctx context.Context, monthName string, year int, externalPath, company string) ([]models.CounterpartySummary, error) {
	runID := uuid.NewString()
	log := r.log.WithField("run_id", runID)

	month, err := dateutils.MonthNumber(monthName)
	if err != nil {
		return nil, err
	}

	items, err := r.store.FetchMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("loading internal month: %w", err)
	}

	external, err := reconcile.LoadExternalJSON(externalPath)
	if err != nil {
		return nil, err
	}

	log.Info("reconciling sources",
		logging.Field{Key: "month", Value: monthName},
		logging.Field{Key: "year", Value: year},
		logging.Field{Key: "internal_rows", Value: len(items)},
		logging.Field{Key: "external_rows", Value: len(external)})

	summaries := r.engine.Compare(reconcile.FromLineItems(items), external)

	if err := r.store.UploadComparison(ctx, summaries, company, year); err != nil {
		return nil, fmt.Errorf("persisting reconciliation: %w", err)
	}
	return summaries, nil
}
