// Command extract runs the extraction pipeline over addresses from a
// file or stdin, one per line, and writes NDJSON results to stdout.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/internal/engine"
	"github.com/address-extractor/internal/extractors"
	"github.com/address-extractor/internal/gazetteer"
	"github.com/address-extractor/internal/geo"
	"go.uber.org/zap"
)

func main() {
	var (
		inputFile   = flag.String("input", "", "input file, one address per line (default stdin)")
		configFile  = flag.String("config", "", "extractor config YAML")
		divisionDir = flag.String("division-dir", "", "override division JSON directory")
		corpusFile  = flag.String("corpus", "", "override labeled corpus file")
	)
	flag.Parse()

	logger := zap.NewNop()

	if *configFile != "" {
		if err := config.Load(*configFile); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	if *divisionDir != "" {
		config.C.Data.DivisionDir = *divisionDir
	}
	if *corpusFile != "" {
		config.C.Data.CorpusFile = *corpusFile
	}

	store, err := geo.LoadPlaceStore(config.C.Data.DivisionDir, config.C.Data.PostalFile, logger)
	if err != nil {
		log.Printf("geographic hierarchy unavailable: %v", err)
		store = geo.NewPlaceStore(logger)
	}
	gaz := gazetteer.Load(config.C.Data.CorpusFile, store, logger)

	eng := engine.New(engine.Options{
		Stages:    config.C.Stages,
		CacheSize: config.C.CacheSize,
		Tagger:    extractors.NewLexiconTagger(gaz.AreaNames()),
		Gazetteer: gaz,
		Validator: geo.NewValidator(store, logger),
		Logger:    logger,
	})

	input := os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			log.Fatalf("opening input: %v", err)
		}
		defer f.Close()
		input = f
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := encoder.Encode(eng.Extract(line)); err != nil {
			log.Fatalf("writing result: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading input: %v", err)
	}
}
