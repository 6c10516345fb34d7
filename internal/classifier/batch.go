package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"cfe-etl/internal/etlerror"
	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
	"cfe-etl/internal/retry"
	"cfe-etl/internal/taxonomy"
)

const systemPrompt = "Tu siguiente output devuelve solamente el formato JSON. Sin texto adicional"

// jsonArrayRe extracts the JSON array from a response that may carry prose or
// code fences around it.
var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// BatchClassifier sends uncategorized line items to the completion model in
// fixed-size batches. A batch that fails all retries degrades to the error
// category instead of aborting the run.
type BatchClassifier struct {
	client    CompletionClient
	taxonomy  *taxonomy.Store
	batchSize int
	policy    retry.Policy
	log       logging.Logger
}

// NewBatchClassifier wires a classifier over the given completion client.
func NewBatchClassifier(client CompletionClient, tax *taxonomy.Store, batchSize int, policy retry.Policy, log logging.Logger) *BatchClassifier {
	if batchSize < 1 {
		batchSize = 100
	}
	if log == nil {
		log = logging.GetLogger()
	}
	return &BatchClassifier{
		client:    client,
		taxonomy:  tax,
		batchSize: batchSize,
		policy:    policy,
		log:       log,
	}
}

// promptItem is the per-row payload embedded in the prompt.
type promptItem struct {
	RowID       int    `json:"rowid"`
	Provider    string `json:"proveedor"`
	Description string `json:"descripcion"`
	Amount      string `json:"monto_item"`
}

// Classify processes items batch by batch and returns one result per item.
// Results for a failed batch carry CategoryError. It returns an error only
// when ctx is cancelled.
func (b *BatchClassifier) Classify(ctx context.Context, items []*models.LineItem) ([]models.ClassificationResult, error) {
	var results []models.ClassificationResult

	batches := splitBatches(items, b.batchSize)
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		batchResults, err := b.classifyBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			b.log.WithError(err).Error("batch classification failed, degrading to error category",
				logging.Field{Key: "batch", Value: i},
				logging.Field{Key: "rows", Value: len(batch)})
			for _, item := range batch {
				results = append(results, models.ClassificationResult{
					RowID:    item.RowID,
					Category: models.CategoryError,
				})
			}
			continue
		}
		results = append(results, batchResults...)
	}

	return results, nil
}

func (b *BatchClassifier) classifyBatch(ctx context.Context, batch []*models.LineItem) ([]models.ClassificationResult, error) {
	prompt, err := b.buildPrompt(batch)
	if err != nil {
		return nil, err
	}

	var parsed []models.ClassificationResult
	err = b.policy.Do(ctx, "classify batch", func() error {
		response, err := b.client.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			return err
		}
		parsed, err = parseResponse(response)
		return err
	})
	if err != nil {
		return nil, err
	}

	return b.reconcileCoverage(batch, parsed), nil
}

// reconcileCoverage keeps exactly one result per batch row: unexpected rowids
// are dropped, duplicates keep the first occurrence, and rows the model
// skipped degrade to the error category.
func (b *BatchClassifier) reconcileCoverage(batch []*models.LineItem, parsed []models.ClassificationResult) []models.ClassificationResult {
	byRowID := make(map[int]models.ClassificationResult, len(parsed))
	for _, r := range parsed {
		if _, dup := byRowID[r.RowID]; dup {
			b.log.Warn("duplicate rowid in model response, keeping first",
				logging.Field{Key: "rowid", Value: r.RowID})
			continue
		}
		byRowID[r.RowID] = r
	}

	results := make([]models.ClassificationResult, 0, len(batch))
	for _, item := range batch {
		r, ok := byRowID[item.RowID]
		if !ok {
			b.log.Warn("rowid missing from model response, degrading to error category",
				logging.Field{Key: "rowid", Value: item.RowID})
			r = models.ClassificationResult{RowID: item.RowID, Category: models.CategoryError}
		} else {
			delete(byRowID, item.RowID)
			if b.taxonomy != nil && !b.taxonomy.Contains(r.Category) {
				b.log.Warn("model returned a category outside the catalog",
					logging.Field{Key: "rowid", Value: r.RowID},
					logging.Field{Key: "category", Value: r.Category})
			}
		}
		results = append(results, r)
	}

	for rowID := range byRowID {
		b.log.Warn("model returned a rowid not present in the batch",
			logging.Field{Key: "rowid", Value: rowID})
	}

	return results
}

func (b *BatchClassifier) buildPrompt(batch []*models.LineItem) (string, error) {
	payload := make([]promptItem, len(batch))
	for i, item := range batch {
		payload[i] = promptItem{
			RowID:       item.RowID,
			Provider:    item.Provider,
			Description: item.Description,
			Amount:      item.Amount.String(),
		}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling batch payload: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Dado el siguiente listado de ítems con sus datos, clasifícalos en una de las siguientes categorías:\n")
	sb.WriteString("A continuación listo las categorias seguido por / y palabras clave sobre cada una de la siguiente forma: categoria / palabras clave.\n\n")
	sb.WriteString(b.taxonomy.PromptSection())
	sb.WriteString(`
Aclaraciones:
- si no estas seguro de tu respuesta, busca detenidamente palabras clave en el campo descripcion o proveedor
- Devuélvelo como una lista JSON donde cada objeto tenga 'rowid' y 'categoria'.

Ejemplo de output:
[
  {"rowid": 1, "categoria": "Combustible"},
  ...
]

Datos:
`)
	sb.Write(data)
	return sb.String(), nil
}

// parseResponse extracts and decodes the JSON array of classifications.
func parseResponse(response string) ([]models.ClassificationResult, error) {
	raw := jsonArrayRe.FindString(response)
	if raw == "" {
		return nil, &etlerror.ResponseFormatError{
			Detail: "no JSON array found",
			Raw:    response,
			Err:    fmt.Errorf("response has no [...] block"),
		}
	}

	var results []models.ClassificationResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, &etlerror.ResponseFormatError{
			Detail: "invalid JSON array",
			Raw:    response,
			Err:    err,
		}
	}
	return results, nil
}

// splitBatches divides items into consecutive chunks of at most size rows.
func splitBatches(items []*models.LineItem, size int) [][]*models.LineItem {
	var batches [][]*models.LineItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
