package reconcile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfe-etl/internal/logging"
	"cfe-etl/internal/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCompareTaxInclusiveMatch(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{{TaxID: "211234560011", Amount: d("1000")}}
	external := []ExternalEntry{{TaxID: "211234560011", Total: d("1005"), Net: d("900")}}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)

	s := out[0]
	assert.Equal(t, models.VerdictMatch, s.Verdict)
	assert.Equal(t, models.IncludesTaxYes, s.IncludesTax)
	assert.True(t, s.DifTotal.Equal(d("5")))
	assert.True(t, s.DifNet.Equal(d("100")))
	assert.True(t, s.Difference.Equal(d("5")))
	assert.Empty(t, s.Reason)
	assert.False(t, s.Negative)
}

func TestCompareNetMatch(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	// The internal sum lines up with the authority's net amount, so the
	// authority total is presumed tax-inclusive on their side only.
	internal := []InternalEntry{{TaxID: "210000000017", Amount: d("900")}}
	external := []ExternalEntry{{TaxID: "210000000017", Total: d("1098"), Net: d("900")}}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)
	assert.Equal(t, models.VerdictMatch, out[0].Verdict)
	assert.Equal(t, models.IncludesTaxNo, out[0].IncludesTax)
}

func TestCompareDiffersOnBothSums(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{{TaxID: "210000000017", Amount: d("500")}}
	external := []ExternalEntry{{TaxID: "210000000017", Total: d("800"), Net: d("650")}}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)

	s := out[0]
	assert.Equal(t, models.VerdictDiffer, s.Verdict)
	assert.Equal(t, models.IncludesTaxUnknown, s.IncludesTax)
	assert.Equal(t, models.ReasonAmountDiffers, s.Reason)
	assert.True(t, s.Difference.Equal(d("150")))
}

func TestCompareMissingFromInternalSource(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	external := []ExternalEntry{{TaxID: "219999990015", Total: d("350"), Net: d("287")}}

	out := e.Compare(nil, external)
	require.Len(t, out, 1)

	s := out[0]
	assert.True(t, s.InternalSum.IsZero())
	assert.Equal(t, models.VerdictDiffer, s.Verdict)
	assert.Equal(t, models.ReasonMissingInternal, s.Reason)
}

func TestCompareMissingFromExternalSource(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{{TaxID: "211234560011", Amount: d("400")}}

	out := e.Compare(internal, nil)
	require.Len(t, out, 1)

	s := out[0]
	assert.True(t, s.TotalSum.IsZero())
	assert.True(t, s.NetSum.IsZero())
	assert.Equal(t, models.VerdictDiffer, s.Verdict)
	assert.Equal(t, models.ReasonAmountDiffers, s.Reason)
}

func TestCompareZeroInternalSumOnlyMatchesExactZero(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{
		{TaxID: "210000000017", Amount: d("250")},
		{TaxID: "210000000017", Amount: d("-250")},
	}
	external := []ExternalEntry{{TaxID: "210000000017", Total: d("0"), Net: d("0")}}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)
	assert.Equal(t, models.VerdictMatch, out[0].Verdict)
}

func TestCompareNegativeExternalAmountFlagged(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{{TaxID: "210000000017", Amount: d("-120")}}
	external := []ExternalEntry{{TaxID: "210000000017", Total: d("-120"), Net: d("-98")}}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)
	assert.True(t, out[0].Negative)
	// A negative internal sum makes the tolerance bound negative, so even an
	// exact match on a credit note is reported as differing.
	assert.Equal(t, models.VerdictDiffer, out[0].Verdict)
}

func TestCompareAggregatesPerCounterparty(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	mar := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	internal := []InternalEntry{
		{TaxID: "211234560011", Amount: d("600"), Date: mar},
		{TaxID: "211234560011", Amount: d("400"), Date: apr},
		{TaxID: " 211234560011 ", Amount: d("5"), Date: mar},
	}
	external := []ExternalEntry{
		{TaxID: "211234560011", Total: d("700"), Net: d("574")},
		{TaxID: "211234560011", Total: d("305"), Net: d("250")},
	}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)

	s := out[0]
	assert.True(t, s.InternalSum.Equal(d("1005")))
	assert.True(t, s.TotalSum.Equal(d("1005")))
	assert.Equal(t, apr, s.LastDate)
	assert.Equal(t, models.VerdictMatch, s.Verdict)
}

func TestCompareOutputOrderedByTaxID(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{
		{TaxID: "219999990015", Amount: d("10")},
		{TaxID: "210000000017", Amount: d("20")},
	}

	out := e.Compare(internal, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "210000000017", out[0].TaxID)
	assert.Equal(t, "219999990015", out[1].TaxID)
}

func TestCompareDifferenceRounded(t *testing.T) {
	e := NewEngine(0.01, logging.NewMockLogger())

	internal := []InternalEntry{{TaxID: "210000000017", Amount: d("100.005")}}
	external := []ExternalEntry{{TaxID: "210000000017", Total: d("150"), Net: d("100.001")}}

	out := e.Compare(internal, external)
	require.Len(t, out, 1)
	assert.True(t, out[0].Difference.Equal(d("0.00")), "got %s", out[0].Difference)
	assert.Equal(t, models.VerdictMatch, out[0].Verdict)
}

func TestLoadExternalJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dgi_marzo_2025.json")
	content := `[
  {"rut_emisor": "211234560011", "monto_total": 1005, "monto_neto": 900},
  {"rut_emisor": "219999990015", "monto_total": 350},
  {"rut_emisor": "215555550012", "monto_total": null, "monto_neto": null}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, err := LoadExternalJSON(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "211234560011", entries[0].TaxID)
	assert.True(t, entries[0].Total.Equal(d("1005")))
	assert.True(t, entries[1].Net.IsZero())
}

func TestLoadInternalJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marzo_2025.json")
	content := `[
  {"ruc": "211234560011", "monto_item": 600.50, "fecha": "2025-03-10"},
  {"ruc": "211234560011", "fecha": "2025-03-11"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, err := LoadInternalJSON(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(d("600.5")))
	assert.Equal(t, 2025, entries[0].Date.Year())
}

func TestLoadExternalJSONMissingFile(t *testing.T) {
	_, err := LoadExternalJSON("no-such-file.json")
	assert.Error(t, err)
}
