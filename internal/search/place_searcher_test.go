package search

import (
	"testing"

	"github.com/address-extractor/internal/geo"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func searchTestStore(t *testing.T) *geo.PlaceStore {
	t.Helper()
	store := geo.NewPlaceStore(zap.NewNop())
	store.AddDivision("Dhaka", []geo.DistrictNode{
		{
			Name: "Dhaka",
			Upazilas: []geo.UpazilaNode{
				{
					Name:       "Mirpur",
					PostalCode: "1216",
					Unions:     []geo.UnionNode{{Name: "Pallabi"}},
				},
				{Name: "Savar", PostalCode: "1340"},
			},
		},
	})
	store.BuildIndexes()
	return store
}

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, "", BuildFilter("", ""))
	assert.Equal(t, `district = "dhaka"`, BuildFilter("Dhaka", ""))
	assert.Equal(t, `type = "upazila"`, BuildFilter("", "upazila"))
	assert.Equal(t, `district = "dhaka" AND type = "union"`, BuildFilter("Dhaka", "union"))
}

func TestDocsFromStore(t *testing.T) {
	docs := DocsFromStore(searchTestStore(t))
	require.Len(t, docs, 3)

	byID := make(map[string]PlaceDoc, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	mirpur, ok := byID["upazila:dhaka:mirpur"]
	require.True(t, ok)
	assert.Equal(t, "Mirpur", mirpur.Name)
	assert.Equal(t, "upazila", mirpur.Type)
	assert.Equal(t, "dhaka", mirpur.District)
	assert.Equal(t, "Dhaka", mirpur.Division)
	assert.Equal(t, "1216", mirpur.PostalCode)

	pallabi, ok := byID["union:dhaka:pallabi"]
	require.True(t, ok)
	assert.Equal(t, "union", pallabi.Type)
	assert.Equal(t, "Mirpur", pallabi.Upazila)
	assert.Equal(t, "1216", pallabi.PostalCode)
}

func TestDocsFromStoreDeterministicOrder(t *testing.T) {
	store := searchTestStore(t)
	first := DocsFromStore(store)
	second := DocsFromStore(store)
	assert.Equal(t, first, second)
}

func TestDocIDSlugging(t *testing.T) {
	assert.Equal(t, "upazila:coxs-bazar:cox-s-bazar-sadar",
		docID("upazila", "Cox s Bazar Sadar", "Coxs Bazar"))
}

func TestParseHits(t *testing.T) {
	resp := &meilisearch.SearchResponse{
		Hits: []interface{}{
			map[string]interface{}{
				"id":          "upazila:dhaka:mirpur",
				"name":        "Mirpur",
				"type":        "upazila",
				"district":    "dhaka",
				"division":    "Dhaka",
				"postal_code": "1216",
			},
			"not-a-map",
		},
	}

	docs := parseHits(resp)
	require.Len(t, docs, 1)
	assert.Equal(t, "Mirpur", docs[0].Name)
	assert.Equal(t, "1216", docs[0].PostalCode)
}
