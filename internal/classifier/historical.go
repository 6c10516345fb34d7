package classifier

import (
	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
	"cfe-etl/internal/similarity"
	"cfe-etl/internal/textnorm"
)

// HistoricalClassifier assigns categories by matching new line items against
// already-categorized history. A history row is a candidate only when its
// normalized provider matches exactly; the descriptions then have to clear
// the similarity threshold.
type HistoricalClassifier struct {
	threshold float64
	log       logging.Logger
}

// NewHistoricalClassifier creates a classifier with the given description
// similarity threshold.
func NewHistoricalClassifier(threshold float64, log logging.Logger) *HistoricalClassifier {
	if log == nil {
		log = logging.GetLogger()
	}
	return &HistoricalClassifier{threshold: threshold, log: log}
}

type historyEntry struct {
	descNorm string
	category string
}

// Classify annotates items in place. Matched items get the history category,
// OriginHistorical and the verified flag; the rest are marked OriginNew and
// returned for the batch classifier. Only verified history rows participate.
func (h *HistoricalClassifier) Classify(items []models.LineItem, history []models.HistoricalRecord) (matched, unmatched []*models.LineItem) {
	index := make(map[string][]historyEntry)
	for _, rec := range history {
		if !rec.Verified {
			continue
		}
		provNorm := textnorm.Normalize(rec.Provider)
		index[provNorm] = append(index[provNorm], historyEntry{
			descNorm: textnorm.Normalize(rec.Description),
			category: rec.Category,
		})
	}

	for i := range items {
		item := &items[i]
		provNorm := textnorm.Normalize(item.Provider)
		descNorm := textnorm.Normalize(item.Description)

		best := -1.0
		bestCategory := ""
		for _, entry := range index[provNorm] {
			// Strictly-greater keeps the earliest history row on ties.
			if ratio := similarity.Ratio(entry.descNorm, descNorm); ratio > best {
				best = ratio
				bestCategory = entry.category
			}
		}

		if best >= h.threshold {
			item.Category = bestCategory
			item.Origin = models.OriginHistorical
			item.Verified = true
			matched = append(matched, item)
		} else {
			item.Origin = models.OriginNew
			item.Verified = false
			unmatched = append(unmatched, item)
		}
	}

	h.log.Info("historical matching finished",
		logging.Field{Key: "total", Value: len(items)},
		logging.Field{Key: "matched", Value: len(matched)},
		logging.Field{Key: "unmatched", Value: len(unmatched)},
		logging.Field{Key: "threshold", Value: h.threshold})

	return matched, unmatched
}
