package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/address-extractor/internal/geo"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// PlaceSearcher provides typo-tolerant place lookup over the geographic
// hierarchy, backed by a Meilisearch index.
type PlaceSearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// PlaceDoc is one indexed place document.
type PlaceDoc struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Upazila    string `json:"upazila,omitempty"`
	District   string `json:"district"`
	Division   string `json:"division"`
	PostalCode string `json:"postal_code,omitempty"`
}

// NewPlaceSearcher connects to Meilisearch and verifies it is reachable.
func NewPlaceSearcher(config SearchConfig, logger *zap.Logger) (*PlaceSearcher, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("connecting to Meilisearch: %w", err)
	}

	if config.IndexName == "" {
		config.IndexName = "places"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &PlaceSearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
		timeout:   config.Timeout,
	}, nil
}

// BuildFilter composes the Meilisearch filter expression for the
// optional district and type constraints.
func BuildFilter(district, placeType string) string {
	var parts []string
	if district != "" {
		parts = append(parts, fmt.Sprintf("district = %q", strings.ToLower(district)))
	}
	if placeType != "" {
		parts = append(parts, fmt.Sprintf("type = %q", placeType))
	}
	return strings.Join(parts, " AND ")
}

// Search queries the place index with optional district/type filters.
func (ps *PlaceSearcher) Search(query, district, placeType string, limit int) ([]PlaceDoc, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	index := ps.client.Index(ps.indexName)
	searchReq := &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: BuildFilter(district, placeType),
	}

	result, err := index.Search(query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("searching places: %w", err)
	}

	return parseHits(result), nil
}

func parseHits(result *meilisearch.SearchResponse) []PlaceDoc {
	docs := make([]PlaceDoc, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		doc := PlaceDoc{}
		if id, ok := hitMap["id"].(string); ok {
			doc.ID = id
		}
		if name, ok := hitMap["name"].(string); ok {
			doc.Name = name
		}
		if placeType, ok := hitMap["type"].(string); ok {
			doc.Type = placeType
		}
		if upazila, ok := hitMap["upazila"].(string); ok {
			doc.Upazila = upazila
		}
		if district, ok := hitMap["district"].(string); ok {
			doc.District = district
		}
		if division, ok := hitMap["division"].(string); ok {
			doc.Division = division
		}
		if postalCode, ok := hitMap["postal_code"].(string); ok {
			doc.PostalCode = postalCode
		}
		docs = append(docs, doc)
	}
	return docs
}

// BuildIndexes configures the index: searchable and filterable
// attributes, common Bangladeshi spelling synonyms, and typo tolerance
// tuned for transliterated place names.
func (ps *PlaceSearcher) BuildIndexes() error {
	index := ps.client.Index(ps.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "upazila", "district"},
		FilterableAttributes: []string{"type", "district", "division", "postal_code"},
		SortableAttributes:   []string{"name", "postal_code"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		Synonyms: map[string][]string{
			"dhaka":      {"dacca"},
			"chattogram": {"chittagong", "ctg"},
			"barishal":   {"barisal"},
			"cumilla":    {"comilla"},
			"bogura":     {"bogra"},
			"jashore":    {"jessore"},
			"mymensingh": {"mymensing"},
		},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configuring place index: %w", err)
	}

	ps.logger.Info("place index configured", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// DocsFromStore flattens the hierarchy into indexable documents:
// upazilas, unions and villages, each with its resolved ancestry.
func DocsFromStore(store *geo.PlaceStore) []PlaceDoc {
	var docs []PlaceDoc

	for key, up := range store.Upazilas() {
		docs = append(docs, PlaceDoc{
			ID:         docID("upazila", key, up.District),
			Name:       up.Name,
			Type:       "upazila",
			District:   strings.ToLower(up.District),
			Division:   up.Division,
			PostalCode: up.PostalCode,
		})
	}
	for key, un := range store.Unions() {
		docs = append(docs, PlaceDoc{
			ID:         docID("union", key, un.District),
			Name:       un.Name,
			Type:       "union",
			Upazila:    un.Upazila,
			District:   strings.ToLower(un.District),
			Division:   un.Division,
			PostalCode: un.PostalCode,
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func docID(placeType, name, district string) string {
	slug := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.ReplaceAll(s, " ", "-")
	}
	return placeType + ":" + slug(district) + ":" + slug(name)
}

// SeedPlaces indexes the full hierarchy in batches of 1000.
func (ps *PlaceSearcher) SeedPlaces(store *geo.PlaceStore) error {
	docs := DocsFromStore(store)
	if len(docs) == 0 {
		return errors.New("no places to seed")
	}

	index := ps.client.Index(ps.indexName)

	batchSize := 1000
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		task, err := index.AddDocuments(docs[i:end], "id")
		if err != nil {
			return fmt.Errorf("adding place documents %d-%d: %w", i, end, err)
		}
		ps.logger.Info("indexed place batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ps.logger.Info("place seeding complete", zap.Int("total_documents", len(docs)))
	return nil
}
