// Command seed loads the geographic hierarchy and pushes it into the
// Meilisearch place index.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/internal/geo"
	"github.com/address-extractor/internal/search"
	"go.uber.org/zap"
)

func main() {
	var (
		host        = flag.String("host", "http://localhost:7700", "Meilisearch host")
		apiKey      = flag.String("api-key", "", "Meilisearch API key")
		indexName   = flag.String("index", "places", "index name")
		divisionDir = flag.String("division-dir", config.C.Data.DivisionDir, "division JSON directory")
		postalFile  = flag.String("postal-file", config.C.Data.PostalFile, "postal codes JSON file")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := geo.LoadPlaceStore(*divisionDir, *postalFile, logger)
	if err != nil {
		logger.Fatal("loading geographic hierarchy", zap.Error(err))
	}

	searcher, err := search.NewPlaceSearcher(search.SearchConfig{
		Host:      *host,
		APIKey:    *apiKey,
		IndexName: *indexName,
		Timeout:   30 * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("connecting to Meilisearch", zap.Error(err))
	}

	if err := searcher.BuildIndexes(); err != nil {
		logger.Fatal("configuring index", zap.Error(err))
	}
	if err := searcher.SeedPlaces(store); err != nil {
		logger.Fatal("seeding places", zap.Error(err))
	}

	logger.Info("seeding complete")
}
