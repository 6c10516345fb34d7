// Package store persists classified line items and reconciliation summaries
// to Postgres. Line items live in one table per year; reconciliation output
// goes to a companion table per company and year.
package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cfe-etl/internal/dateutils"
	"cfe-etl/internal/etlerror"
	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
)

// Store wraps the database connection and table naming policy.
type Store struct {
	db        *gorm.DB
	prefix    string
	chunkSize int
	log       logging.Logger
}

// Open connects to Postgres and returns a Store.
func Open(dsn, prefix string, chunkSize int, log logging.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty, set DATABASE_URL")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return New(db, prefix, chunkSize, log), nil
}

// New wraps an existing connection. Used by Open and by tests.
func New(db *gorm.DB, prefix string, chunkSize int, log logging.Logger) *Store {
	if prefix == "" {
		prefix = "datalogic"
	}
	if chunkSize < 1 {
		chunkSize = 100
	}
	if log == nil {
		log = logging.GetLogger()
	}
	return &Store{db: db, prefix: prefix, chunkSize: chunkSize, log: log}
}

// TableName returns the line-item table for a year.
func (s *Store) TableName(year int) string {
	return fmt.Sprintf("%s_%d", s.prefix, year)
}

// ComparisonTableName returns the reconciliation table for a company and year.
func (s *Store) ComparisonTableName(company string, year int) string {
	return fmt.Sprintf("DGI_%s_%d", company, year)
}

const lineItemTableDDL = `CREATE TABLE IF NOT EXISTS %q (
	id SERIAL PRIMARY KEY,
	fecha DATE,
	proveedor TEXT,
	ruc TEXT,
	nombre_comercial TEXT,
	giro TEXT,
	telefono TEXT,
	sucursal TEXT,
	codigo_sucursal TEXT,
	direccion TEXT,
	ciudad TEXT,
	departamento TEXT,
	descripcion TEXT,
	cantidad NUMERIC,
	precio_unitario NUMERIC,
	monto_item NUMERIC,
	moneda TEXT,
	tipo_cambio NUMERIC,
	monto_uyu NUMERIC,
	archivo TEXT,
	categoria TEXT,
	verificado BOOLEAN DEFAULT FALSE,
	origen TEXT
)`

const comparisonTableDDL = `CREATE TABLE IF NOT EXISTS %q (
	id SERIAL PRIMARY KEY,
	ruc TEXT,
	suma_interna NUMERIC,
	fecha DATE,
	suma_total NUMERIC,
	suma_neto NUMERIC,
	dif_total NUMERIC,
	dif_neto NUMERIC,
	diferencia NUMERIC,
	resultado TEXT,
	contempla_iva TEXT,
	monto_es_negativo BOOLEAN,
	aclaracion TEXT
)`

// EnsureTable creates the line-item table for a year if needed.
func (s *Store) EnsureTable(ctx context.Context, year int) error {
	table := s.TableName(year)
	if err := s.db.WithContext(ctx).Exec(fmt.Sprintf(lineItemTableDDL, table)).Error; err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}

// Upload persists classified line items in chunks. The target year and month
// come from the most frequent item date. Chunks already committed stay
// committed when a later chunk fails; the failing chunk is dumped to a CSV
// next to the working directory for inspection.
func (s *Store) Upload(ctx context.Context, items []models.LineItem) error {
	if len(items) == 0 {
		s.log.Warn("nothing to upload")
		return nil
	}

	year, month, ok := dominantYearMonth(items)
	if !ok {
		return &etlerror.DataIntegrityError{
			Dataset: "line items",
			Field:   "fecha",
			Reason:  "no valid dates, cannot determine target table",
		}
	}
	table := s.TableName(year)

	if err := s.EnsureTable(ctx, year); err != nil {
		return err
	}

	s.warnIfMonthLoaded(ctx, table, year, month)

	records := make([]lineItemRecord, len(items))
	for i, item := range items {
		records[i] = toRecord(item)
	}

	for i := 0; i < len(records); i += s.chunkSize {
		end := i + s.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[i:end]

		if err := s.db.WithContext(ctx).Table(table).Create(&chunk).Error; err != nil {
			dumpFile := fmt.Sprintf("bloque_error_%d.csv", i)
			s.dumpChunk(chunk, dumpFile)
			return &etlerror.ChunkUploadError{
				Table:    table,
				Chunk:    i / s.chunkSize,
				Rows:     len(chunk),
				DumpFile: dumpFile,
				Err:      err,
			}
		}
		s.log.Info("uploaded chunk",
			logging.Field{Key: "table", Value: table},
			logging.Field{Key: "offset", Value: i},
			logging.Field{Key: "rows", Value: len(chunk)})
	}

	return nil
}

// warnIfMonthLoaded flags a probable duplicate load. A failed check is only
// informational.
func (s *Store) warnIfMonthLoaded(ctx context.Context, table string, year int, month time.Month) {
	from, to := dateutils.MonthRange(year, month)

	var count int64
	err := s.db.WithContext(ctx).Table(table).
		Where("fecha BETWEEN ? AND ?", from, to).
		Limit(1).
		Count(&count).Error
	if err != nil {
		s.log.WithError(err).Info("could not check for previous load",
			logging.Field{Key: "table", Value: table})
		return
	}
	if count > 0 {
		s.log.Warn("table already has rows for this month",
			logging.Field{Key: "table", Value: table},
			logging.Field{Key: "month", Value: fmt.Sprintf("%02d/%d", month, year)})
	}
}

func (s *Store) dumpChunk(chunk []lineItemRecord, path string) {
	f, err := os.Create(path)
	if err != nil {
		s.log.WithError(err).Error("could not create chunk dump file",
			logging.Field{Key: "file", Value: path})
		return
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&chunk, f); err != nil {
		s.log.WithError(err).Error("could not write chunk dump",
			logging.Field{Key: "file", Value: path})
		return
	}
	s.log.Error("failed chunk dumped for inspection",
		logging.Field{Key: "file", Value: path},
		logging.Field{Key: "rows", Value: len(chunk)})
}

// FetchHistorical reads categorized history for the given years. A missing
// year table is tolerated and contributes nothing. Tables from before the
// verification workflow lack the verificado column; their rows are treated
// as verified so the older history stays usable.
func (s *Store) FetchHistorical(ctx context.Context, years []int) ([]models.HistoricalRecord, error) {
	var history []models.HistoricalRecord

	for _, year := range years {
		table := s.TableName(year)

		var rows []historyRow
		err := s.db.WithContext(ctx).Table(table).
			Select("proveedor", "descripcion", "categoria", "verificado").
			Find(&rows).Error
		if err != nil {
			var legacy []struct {
				Proveedor   string `gorm:"column:proveedor"`
				Descripcion string `gorm:"column:descripcion"`
				Categoria   string `gorm:"column:categoria"`
			}
			legacyErr := s.db.WithContext(ctx).Table(table).
				Select("proveedor", "descripcion", "categoria").
				Find(&legacy).Error
			if legacyErr != nil {
				s.log.WithError(legacyErr).Warn("skipping unavailable history table",
					logging.Field{Key: "table", Value: table})
				continue
			}
			s.log.Info("history table has no verificado column, treating all rows as verified",
				logging.Field{Key: "table", Value: table})
			for _, r := range legacy {
				rows = append(rows, historyRow{
					Proveedor:   r.Proveedor,
					Descripcion: r.Descripcion,
					Categoria:   r.Categoria,
					Verificado:  true,
				})
			}
		}

		for _, r := range rows {
			history = append(history, models.HistoricalRecord{
				Provider:    r.Proveedor,
				Description: r.Descripcion,
				Category:    r.Categoria,
				Verified:    r.Verificado,
			})
		}
		s.log.Info("loaded history",
			logging.Field{Key: "table", Value: table},
			logging.Field{Key: "rows", Value: len(rows)})
	}

	return history, nil
}

// FetchMonth reads the line items of one month, for exports and
// reconciliation.
func (s *Store) FetchMonth(ctx context.Context, year int, month time.Month) ([]models.LineItem, error) {
	table := s.TableName(year)
	from, to := dateutils.MonthRange(year, month)

	var rows []lineItemRecord
	err := s.db.WithContext(ctx).Table(table).
		Where("fecha BETWEEN ? AND ?", from, to).
		Order("fecha, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}

	items := make([]models.LineItem, len(rows))
	for i, r := range rows {
		items[i] = models.LineItem{
			RowID:        i + 1,
			Date:         r.Fecha,
			Provider:     r.Proveedor,
			TaxID:        r.RUC,
			TradeName:    r.NombreComercial,
			Activity:     r.Giro,
			Phone:        r.Telefono,
			Branch:       r.Sucursal,
			BranchCode:   r.CodigoSucursal,
			Address:      r.Direccion,
			City:         r.Ciudad,
			State:        r.Departamento,
			Description:  r.Descripcion,
			Quantity:     r.Cantidad,
			UnitPrice:    r.PrecioUnitario,
			Amount:       r.MontoItem,
			Currency:     r.Moneda,
			ExchangeRate: r.TipoCambio,
			AmountUYU:    r.MontoUYU,
			SourceFile:   r.Archivo,
			Category:     r.Categoria,
			Verified:     r.Verificado,
			Origin:       r.Origen,
		}
	}
	return items, nil
}

// UploadComparison persists reconciliation summaries for a company and year.
func (s *Store) UploadComparison(ctx context.Context, summaries []models.CounterpartySummary, company string, year int) error {
	if len(summaries) == 0 {
		s.log.Warn("no reconciliation summaries to upload")
		return nil
	}

	table := s.ComparisonTableName(company, year)
	if err := s.db.WithContext(ctx).Exec(fmt.Sprintf(comparisonTableDDL, table)).Error; err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}

	records := make([]comparisonRecord, len(summaries))
	for i, summary := range summaries {
		records[i] = toComparisonRecord(summary)
	}

	for i := 0; i < len(records); i += s.chunkSize {
		end := i + s.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[i:end]
		if err := s.db.WithContext(ctx).Table(table).Create(&chunk).Error; err != nil {
			return &etlerror.ChunkUploadError{
				Table: table,
				Chunk: i / s.chunkSize,
				Rows:  len(chunk),
				Err:   err,
			}
		}
	}

	s.log.Info("uploaded reconciliation summaries",
		logging.Field{Key: "table", Value: table},
		logging.Field{Key: "rows", Value: len(records)})
	return nil
}

// dominantYearMonth picks the most frequent year and month among item dates.
// Ties resolve to the chronologically earliest period.
func dominantYearMonth(items []models.LineItem) (int, time.Month, bool) {
	type period struct {
		year  int
		month time.Month
	}
	counts := make(map[period]int)
	for _, item := range items {
		if item.Date.IsZero() {
			continue
		}
		counts[period{item.Date.Year(), item.Date.Month()}]++
	}
	if len(counts) == 0 {
		return 0, 0, false
	}

	var best period
	bestCount := -1
	for p, c := range counts {
		if c > bestCount ||
			(c == bestCount && (p.year < best.year || (p.year == best.year && p.month < best.month))) {
			best = p
			bestCount = c
		}
	}
	return best.year, best.month, true
}
