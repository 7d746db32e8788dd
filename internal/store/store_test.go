package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosource/supplier-scout/internal/models"
)

func newTestStore(t *testing.T) *JSONStore {
	t.Helper()
	s, err := NewJSONStore(filepath.Join(t.TempDir(), "out", "suppliers_data.json"))
	require.NoError(t, err)
	return s
}

func TestPersistWritesIndentedJSON(t *testing.T) {
	s := newTestStore(t)

	supplier := models.NewSupplier()
	supplier.Company = "Acme Trading Co."
	supplier.Location = "Zhejiang, CN"
	supplier.GoldYears = "7 yrs"
	supplier.Metrics = map[string]string{"Response rate": "99%"}
	supplier.MainProducts = []string{"LED Strips"}
	supplier.FeaturedProducts = []models.FeaturedProduct{{Price: "US$0.80", MinOrder: "1000"}}

	path, err := s.Persist([]models.Supplier{*supplier})
	require.NoError(t, err)
	assert.Equal(t, s.Path(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n    {"), "output must be indented")

	// Stable field order in the artifact.
	order := []string{`"company"`, `"location"`, `"gold_years"`, `"rating"`, `"reviews"`, `"metrics"`, `"main_products"`, `"featured_products"`}
	last := -1
	for _, field := range order {
		idx := strings.Index(text, field)
		require.GreaterOrEqual(t, idx, 0, "missing field %s", field)
		assert.Greater(t, idx, last, "field %s out of order", field)
		last = idx
	}

	var out []models.Supplier
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Acme Trading Co.", out[0].Company)
}

func TestPersistKeepsNonASCIIReadable(t *testing.T) {
	s := newTestStore(t)

	supplier := models.NewSupplier()
	supplier.Company = "深圳市科技制造有限公司"
	supplier.FeaturedProducts = []models.FeaturedProduct{{Price: "US$1.20<2.00"}}

	_, err := s.Persist([]models.Supplier{*supplier})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "深圳市科技制造有限公司")
	assert.Contains(t, string(data), "US$1.20<2.00", "HTML escaping must stay off")
}

func TestPersistOverwritesPreviousArtifact(t *testing.T) {
	s := newTestStore(t)

	first := models.NewSupplier()
	first.Company = "First Run Supplier"
	_, err := s.Persist([]models.Supplier{*first, *first, *first})
	require.NoError(t, err)

	second := models.NewSupplier()
	second.Company = "Second Run Supplier"
	_, err = s.Persist([]models.Supplier{*second})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var out []models.Supplier
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1, "persist replaces, never appends")
	assert.Equal(t, "Second Run Supplier", out[0].Company)
	assert.NotContains(t, string(data), "First Run Supplier")
}

func TestPersistIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	supplier := models.NewSupplier()
	supplier.Company = "Acme Trading Co."
	records := []models.Supplier{*supplier}

	_, err := s.Persist(records)
	require.NoError(t, err)
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.Persist(records)
	require.NoError(t, err)
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPersistEmptyAndNil(t *testing.T) {
	s := newTestStore(t)

	for _, records := range [][]models.Supplier{nil, {}} {
		_, err := s.Persist(records)
		require.NoError(t, err)

		data, err := os.ReadFile(s.Path())
		require.NoError(t, err)
		assert.Equal(t, "[]", strings.TrimSpace(string(data)))
	}
}
