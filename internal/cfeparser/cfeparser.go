// Package cfeparser extracts invoice line items from CFE XML documents.
package cfeparser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"

	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
)

// Header paths. The documents are namespaced but xmlpath matches on local
// names, so no prefix handling is needed.
var (
	pathDate       = xmlpath.MustCompile("//FchEmis")
	pathProvider   = xmlpath.MustCompile("//RznSoc")
	pathTaxID      = xmlpath.MustCompile("//RUCEmisor")
	pathTradeName  = xmlpath.MustCompile("//NomComercial")
	pathActivity   = xmlpath.MustCompile("//GiroEmis")
	pathPhone      = xmlpath.MustCompile("//Telefono")
	pathBranch     = xmlpath.MustCompile("//EmiSucursal")
	pathBranchCode = xmlpath.MustCompile("//CdgDGISucur")
	pathAddress    = xmlpath.MustCompile("//DomFiscal")
	pathCity       = xmlpath.MustCompile("//Ciudad")
	pathState      = xmlpath.MustCompile("//Departamento")
	pathCurrency   = xmlpath.MustCompile("//TpoMoneda")
	pathRate       = xmlpath.MustCompile("//TpoCambio")

	pathItem        = xmlpath.MustCompile("//Item")
	pathDescription = xmlpath.MustCompile("NomItem")
	pathQuantity    = xmlpath.MustCompile("Cantidad")
	pathUnitPrice   = xmlpath.MustCompile("PrecioUnitario")
	pathAmount      = xmlpath.MustCompile("MontoItem")
)

var log = logging.GetLogger()

// SetLogger replaces the package logger.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// ValidateFormat reports whether the file looks like a CFE document: valid
// XML carrying an issuer tax id and at least one item.
func ValidateFormat(path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("opening file: %w", err)
	}

	root, err := xmlpath.Parse(bytes.NewReader(CleanDocument(raw)))
	if err != nil {
		log.WithField("file", path).Info("File is not valid XML")
		return false, nil
	}
	if _, ok := pathTaxID.String(root); !ok {
		log.WithField("file", path).Info("File has no issuer tax id, not a CFE")
		return false, nil
	}
	if iter := pathItem.Iter(root); !iter.Next() {
		log.WithField("file", path).Info("File has no invoice items, not a CFE")
		return false, nil
	}
	return true, nil
}

// ParseFile extracts every invoice line item from one CFE XML file. The
// document is cleaned in memory first, so raw downloads parse directly.
func ParseFile(path string) ([]models.LineItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	root, err := xmlpath.Parse(bytes.NewReader(CleanDocument(raw)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	currency := stringOr(pathCurrency, root, "UYU")
	rate := decimalOr(pathRate, root, decimal.NewFromInt(1))
	date := parseDate(stringOr(pathDate, root, ""))

	header := models.LineItem{
		Date:         date,
		Provider:     stringOr(pathProvider, root, ""),
		TaxID:        stringOr(pathTaxID, root, ""),
		TradeName:    stringOr(pathTradeName, root, ""),
		Activity:     stringOr(pathActivity, root, ""),
		Phone:        stringOr(pathPhone, root, ""),
		Branch:       stringOr(pathBranch, root, ""),
		BranchCode:   stringOr(pathBranchCode, root, ""),
		Address:      stringOr(pathAddress, root, ""),
		City:         stringOr(pathCity, root, ""),
		State:        stringOr(pathState, root, ""),
		Currency:     currency,
		ExchangeRate: rate,
		SourceFile:   filepath.Base(path),
	}

	var items []models.LineItem
	for iter := pathItem.Iter(root); iter.Next(); {
		node := iter.Node()

		item := header
		item.Description = stringOrNode(pathDescription, node, "")
		item.Quantity = decimalOrNode(pathQuantity, node, decimal.NewFromInt(1))
		item.UnitPrice = decimalOrNode(pathUnitPrice, node, decimal.Zero)
		item.Amount = decimalOrNode(pathAmount, node, decimal.Zero)

		if currency != "UYU" {
			item.AmountUYU = item.Amount.Mul(rate)
		} else {
			item.AmountUYU = item.Amount
		}

		items = append(items, item)
	}

	log.Debug("parsed CFE file",
		logging.Field{Key: "file", Value: filepath.Base(path)},
		logging.Field{Key: "items", Value: len(items)})

	return items, nil
}

// ParseDir parses every .xml file in dir. Files that fail to parse are
// logged and skipped so one corrupt download does not sink the batch.
func ParseDir(dir string) ([]models.LineItem, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(files) == 0 {
		log.Warn("no XML files found", logging.Field{Key: "dir", Value: dir})
		return nil, nil
	}

	var all []models.LineItem
	for _, file := range files {
		items, err := ParseFile(file)
		if err != nil {
			log.WithError(err).Error("skipping unparseable file",
				logging.Field{Key: "file", Value: file})
			continue
		}
		all = append(all, items...)
	}

	log.Info("extracted line items",
		logging.Field{Key: "items", Value: len(all)},
		logging.Field{Key: "files", Value: len(files)})

	return all, nil
}

func stringOr(path *xmlpath.Path, root *xmlpath.Node, fallback string) string {
	if v, ok := path.String(root); ok && v != "" {
		return v
	}
	return fallback
}

func stringOrNode(path *xmlpath.Path, node *xmlpath.Node, fallback string) string {
	return stringOr(path, node, fallback)
}

func decimalOr(path *xmlpath.Path, root *xmlpath.Node, fallback decimal.Decimal) decimal.Decimal {
	v, ok := path.String(root)
	if !ok || v == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(v)
	if err != nil {
		log.WithError(err).Warn("unparseable numeric field, using fallback",
			logging.Field{Key: "value", Value: v})
		return fallback
	}
	return parsed
}

func decimalOrNode(path *xmlpath.Path, node *xmlpath.Node, fallback decimal.Decimal) decimal.Decimal {
	return decimalOr(path, node, fallback)
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		log.WithError(err).Warn("unparseable issue date",
			logging.Field{Key: "value", Value: value})
		return time.Time{}
	}
	return t
}
