// Package common wires the pipeline stages for the commands.
package common

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"cfe-etl/internal/classifier"
	"cfe-etl/internal/config"
	"cfe-etl/internal/etlerror"
	"cfe-etl/internal/logging"
	"cfe-etl/internal/pipeline"
	"cfe-etl/internal/reconcile"
	"cfe-etl/internal/retry"
	"cfe-etl/internal/store"
	"cfe-etl/internal/taxonomy"
)

// OpenStore connects to the configured database.
func OpenStore(cfg *config.Config, log logging.Logger) (*store.Store, error) {
	return store.Open(cfg.DB.DSN, cfg.DB.TablePrefix, cfg.DB.ChunkSize, log)
}

// NewReconcileRunner wires only the store and the comparison engine. The
// reconciliation run never calls the completion model, so it works without
// an API key.
func NewReconcileRunner(cfg *config.Config, logger *logrus.Logger) (*pipeline.Runner, error) {
	log := logging.NewLogrusAdapterFromLogger(logger)

	st, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(st, nil, nil, reconcile.NewEngine(cfg.Reconcile.Tolerance, log), log), nil
}

// NewRunner builds a fully wired pipeline runner. The returned closer
// releases the completion client.
func NewRunner(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*pipeline.Runner, func(), error) {
	log := logging.NewLogrusAdapterFromLogger(logger)

	st, err := OpenStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	tax, err := taxonomy.Load(cfg.Taxonomy.File)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.AI.Enabled {
		return nil, nil, fmt.Errorf("ai.enabled is false, the classification pipeline needs the completion model")
	}
	client, err := classifier.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return nil, nil, err
	}

	policy := retry.Policy{
		MaxAttempts: cfg.AI.MaxAttempts,
		Delay:       time.Duration(cfg.AI.RetryDelaySeconds) * time.Second,
		Retryable:   etlerror.IsTransient,
		Logger:      log,
	}

	runner := pipeline.NewRunner(
		st,
		classifier.NewHistoricalClassifier(cfg.Matching.Threshold, log),
		classifier.NewBatchClassifier(client, tax, cfg.AI.BatchSize, policy, log),
		reconcile.NewEngine(cfg.Reconcile.Tolerance, log),
		log,
	)

	closer := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("closing completion client")
		}
	}
	return runner, closer, nil
}
