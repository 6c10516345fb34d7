package store

import (
	"time"

	"github.com/shopspring/decimal"

	"cfe-etl/internal/models"
)

// lineItemRecord is the persisted shape of a classified line item. Column
// names are the table contract shared with the reporting layer.
type lineItemRecord struct {
	Fecha           time.Time       `gorm:"column:fecha" csv:"fecha"`
	Proveedor       string          `gorm:"column:proveedor" csv:"proveedor"`
	RUC             string          `gorm:"column:ruc" csv:"ruc"`
	NombreComercial string          `gorm:"column:nombre_comercial" csv:"nombre_comercial"`
	Giro            string          `gorm:"column:giro" csv:"giro"`
	Telefono        string          `gorm:"column:telefono" csv:"telefono"`
	Sucursal        string          `gorm:"column:sucursal" csv:"sucursal"`
	CodigoSucursal  string          `gorm:"column:codigo_sucursal" csv:"codigo_sucursal"`
	Direccion       string          `gorm:"column:direccion" csv:"direccion"`
	Ciudad          string          `gorm:"column:ciudad" csv:"ciudad"`
	Departamento    string          `gorm:"column:departamento" csv:"departamento"`
	Descripcion     string          `gorm:"column:descripcion" csv:"descripcion"`
	Cantidad        decimal.Decimal `gorm:"column:cantidad" csv:"cantidad"`
	PrecioUnitario  decimal.Decimal `gorm:"column:precio_unitario" csv:"precio_unitario"`
	MontoItem       decimal.Decimal `gorm:"column:monto_item" csv:"monto_item"`
	Moneda          string          `gorm:"column:moneda" csv:"moneda"`
	TipoCambio      decimal.Decimal `gorm:"column:tipo_cambio" csv:"tipo_cambio"`
	MontoUYU        decimal.Decimal `gorm:"column:monto_uyu" csv:"monto_uyu"`
	Archivo         string          `gorm:"column:archivo" csv:"archivo"`
	Categoria       string          `gorm:"column:categoria" csv:"categoria"`
	Verificado      bool            `gorm:"column:verificado" csv:"verificado"`
	Origen          string          `gorm:"column:origen" csv:"origen"`
}

func toRecord(item models.LineItem) lineItemRecord {
	return lineItemRecord{
		Fecha:           item.Date,
		Proveedor:       item.Provider,
		RUC:             item.TaxID,
		NombreComercial: item.TradeName,
		Giro:            item.Activity,
		Telefono:        item.Phone,
		Sucursal:        item.Branch,
		CodigoSucursal:  item.BranchCode,
		Direccion:       item.Address,
		Ciudad:          item.City,
		Departamento:    item.State,
		Descripcion:     item.Description,
		Cantidad:        item.Quantity,
		PrecioUnitario:  item.UnitPrice,
		MontoItem:       item.Amount,
		Moneda:          item.Currency,
		TipoCambio:      item.ExchangeRate,
		MontoUYU:        item.AmountUYU,
		Archivo:         item.SourceFile,
		Categoria:       item.Category,
		Verificado:      item.Verified,
		Origen:          item.Origin,
	}
}

// historyRow is the subset read back for the historical classifier.
type historyRow struct {
	Proveedor   string `gorm:"column:proveedor"`
	Descripcion string `gorm:"column:descripcion"`
	Categoria   string `gorm:"column:categoria"`
	Verificado  bool   `gorm:"column:verificado"`
}

// comparisonRecord is the persisted shape of a reconciliation summary.
type comparisonRecord struct {
	RUC             string          `gorm:"column:ruc"`
	SumaInterna     decimal.Decimal `gorm:"column:suma_interna"`
	Fecha           time.Time       `gorm:"column:fecha"`
	SumaTotal       decimal.Decimal `gorm:"column:suma_total"`
	SumaNeto        decimal.Decimal `gorm:"column:suma_neto"`
	DifTotal        decimal.Decimal `gorm:"column:dif_total"`
	DifNeto         decimal.Decimal `gorm:"column:dif_neto"`
	Diferencia      decimal.Decimal `gorm:"column:diferencia"`
	Resultado       string          `gorm:"column:resultado"`
	ContemplaIVA    string          `gorm:"column:contempla_iva"`
	MontoEsNegativo bool            `gorm:"column:monto_es_negativo"`
	Aclaracion      string          `gorm:"column:aclaracion"`
}

func toComparisonRecord(s models.CounterpartySummary) comparisonRecord {
	return comparisonRecord{
		RUC:             s.TaxID,
		SumaInterna:     s.InternalSum,
		Fecha:           s.LastDate,
		SumaTotal:       s.TotalSum,
		SumaNeto:        s.NetSum,
		DifTotal:        s.DifTotal,
		DifNeto:         s.DifNet,
		Diferencia:      s.Difference,
		Resultado:       s.Verdict,
		ContemplaIVA:    s.IncludesTax,
		MontoEsNegativo: s.Negative,
		Aclaracion:      s.Reason,
	}
}
