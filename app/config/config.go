package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StageToggles enables or disables the optional pipeline stages.
// Normalization, regex extraction, conflict resolution and output assembly
// are always on and have no toggle.
type StageToggles struct {
	ScriptDetection bool `yaml:"script_detection" json:"script_detection"`
	FSMParsing      bool `yaml:"fsm_parsing" json:"fsm_parsing"`
	Tagger          bool `yaml:"tagger" json:"tagger"`
	Gazetteer       bool `yaml:"gazetteer" json:"gazetteer"`
	Geographic      bool `yaml:"geographic" json:"geographic"`
}

// FuzzyCfg tunes the gazetteer fuzzy name rule: two names match when their
// first PrefixLen characters agree and their character-set Jaccard
// similarity reaches MinJaccard.
type FuzzyCfg struct {
	PrefixLen  int     `yaml:"prefix_len" json:"prefix_len"`
	MinJaccard float64 `yaml:"min_jaccard" json:"min_jaccard"`
}

// DataCfg locates the reference datasets.
type DataCfg struct {
	DivisionDir string `yaml:"division_dir" json:"division_dir"`
	PostalFile  string `yaml:"postal_file" json:"postal_file"`
	CorpusFile  string `yaml:"corpus_file" json:"corpus_file"`
}

type ExtractorCfg struct {
	Stages    StageToggles `yaml:"stages" json:"stages"`
	Fuzzy     FuzzyCfg     `yaml:"fuzzy" json:"fuzzy"`
	CacheSize int          `yaml:"cache_size" json:"cache_size"`
	Data      DataCfg      `yaml:"data" json:"data"`
}

var C = Default()

// Default returns the configuration used when no file is supplied:
// all stages on, observed fuzzy thresholds, 10k result cache.
func Default() ExtractorCfg {
	return ExtractorCfg{
		Stages: StageToggles{
			ScriptDetection: true,
			FSMParsing:      true,
			Tagger:          true,
			Gazetteer:       true,
			Geographic:      true,
		},
		Fuzzy: FuzzyCfg{
			PrefixLen:  3,
			MinJaccard: 0.70,
		},
		CacheSize: 10000,
		Data: DataCfg{
			DivisionDir: "data/geographic/division",
			PostalFile:  "data/geographic/division/bd-postal-codes.json",
			CorpusFile:  "data/merged_addresses.json",
		},
	}
}

func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	C = cfg
	applyEnvOverrides()
	return nil
}

func applyEnvOverrides() {
	// ENV overrides
	switch os.Getenv("USE_GAZETTEER") {
	case "0":
		C.Stages.Gazetteer = false
	case "1":
		C.Stages.Gazetteer = true
	}
	switch os.Getenv("USE_TAGGER") {
	case "0":
		C.Stages.Tagger = false
	case "1":
		C.Stages.Tagger = true
	}
	if dir := os.Getenv("DIVISION_DATA_DIR"); dir != "" {
		C.Data.DivisionDir = dir
	}
	if f := os.Getenv("CORPUS_FILE"); f != "" {
		C.Data.CorpusFile = f
	}
}

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
