package taxonomy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
categories:
  - name: "Combustible"
    keywords: ["nafta", "gasoil", "ancap"]
  - name: "Seguros"
    keywords: ["BSE", "mapfre"]
  - name: "Patente vehículos"
    keywords: []
`

func TestParse(t *testing.T) {
	store, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []string{"Combustible", "Seguros", "Patente vehículos"}, store.Names())
	assert.True(t, store.Contains("Seguros"))
	assert.False(t, store.Contains("Inventada"))
}

func TestParseRejectsEmptyCatalog(t *testing.T) {
	_, err := Parse([]byte("categories: []"))
	assert.Error(t, err)
}

func TestParseRejectsDuplicateNames(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  - name: "Combustible"
  - name: "Combustible"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate category")
}

func TestParseRejectsEmptyName(t *testing.T) {
	_, err := Parse([]byte(`
categories:
  - name: ""
    keywords: ["x"]
`))
	assert.Error(t, err)
}

func TestPromptSection(t *testing.T) {
	store, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	section := store.PromptSection()
	assert.Contains(t, section, "Combustible / nafta, gasoil, ancap\n")
	assert.Contains(t, section, "Seguros / BSE, mapfre\n")
	// Categories without keywords still get a line.
	assert.Contains(t, section, "Patente vehículos / \n")
}

func TestLoadShippedCatalog(t *testing.T) {
	store, err := Load(filepath.Join("..", "..", "config", "categories.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 36, store.Len())
	assert.True(t, store.Contains("Combustible"))
	assert.True(t, store.Contains("Gastos Varios"))
	assert.True(t, store.Contains("Energía Eléctrica y Aguas Corrientes"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}
