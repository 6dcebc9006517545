package engine

import (
	"sync"
	"time"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/app/models"
	"github.com/address-extractor/internal/extractors"
	"github.com/address-extractor/internal/gazetteer"
	"github.com/address-extractor/internal/geo"
	"github.com/address-extractor/internal/normalizer"
	"go.uber.org/zap"
)

// Stats are the engine's running counters.
type Stats struct {
	TotalProcessed uint64  `json:"total_processed"`
	TotalTimeMs    float64 `json:"total_time_ms"`
	Errors         uint64  `json:"errors"`
	CacheHits      uint64  `json:"cache_hits"`
	CacheMisses    uint64  `json:"cache_misses"`
}

// Engine runs the extraction pipeline: script detection, normalization,
// the extractor stages, gazetteer and geographic validation, and finally
// conflict resolution. Safe for concurrent use.
type Engine struct {
	cfg       config.StageToggles
	norm      *normalizer.CanonicalNormalizer
	script    *normalizer.ScriptDetector
	regex     *extractors.RegexExtractor
	fsm       *extractors.FSMParser
	tagger    extractors.EntityTagger
	gazetteer *gazetteer.Gazetteer
	validator *geo.Validator
	resolver  *Resolver
	cache     *ResultCache
	logger    *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// Options selects the engine's collaborators. Gazetteer and Validator
// may be nil; their stages are then skipped regardless of toggles.
type Options struct {
	Stages    config.StageToggles
	CacheSize int
	Tagger    extractors.EntityTagger
	Gazetteer *gazetteer.Gazetteer
	Validator *geo.Validator
	Logger    *zap.Logger
}

func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Tagger == nil {
		opts.Tagger = extractors.NoopTagger{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = config.C.CacheSize
	}
	return &Engine{
		cfg:       opts.Stages,
		norm:      normalizer.NewCanonicalNormalizer(),
		script:    normalizer.NewScriptDetector(),
		regex:     extractors.NewRegexExtractor(),
		fsm:       extractors.NewFSMParser(),
		tagger:    opts.Tagger,
		gazetteer: opts.Gazetteer,
		validator: opts.Validator,
		resolver:  NewResolver(),
		cache:     NewResultCache(opts.CacheSize),
		logger:    opts.Logger,
	}
}

// Extract parses one free-text address. It never panics: a stage failure
// is reported in the result's Error field.
func (e *Engine) Extract(address string) (result *models.ExtractionResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked", zap.Any("panic", r), zap.String("address", address))
			result = emptyResult(address)
			result.Error = "internal extraction failure"
			result.ExtractionTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
			e.recordError()
		}
	}()

	if len(address) == 0 || len(CacheKey(address)) == 0 {
		return emptyResult(address)
	}

	key := CacheKey(address)
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}

	result = e.runPipeline(address)
	result.ExtractionTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	e.cache.Put(key, result)
	e.recordProcessed(result.ExtractionTimeMs)
	return result
}

func (e *Engine) runPipeline(address string) *models.ExtractionResult {
	script := normalizer.ScriptInfo{PrimaryScript: models.ScriptNeutral}
	if e.cfg.ScriptDetection {
		script = e.script.Detect(address)
	}

	normalized := e.norm.Normalize(address)

	evidence := e.collectEvidence(normalized)

	var conflicts []string

	if e.cfg.Gazetteer && e.gazetteer != nil {
		if evidence.FirstValue(models.FieldArea) == "" {
			if ev := e.gazetteer.ExtractAreaFromAddress(
				normalized,
				evidence.FirstValue(models.FieldRoad),
				evidence.FirstValue(models.FieldDistrict),
			); ev != nil {
				evidence.Add(models.FieldArea, *ev)
			}
		}

		validated, vConflicts := e.gazetteer.Validate(
			evidence.FirstValue(models.FieldArea),
			evidence.FirstValue(models.FieldDistrict),
			evidence.FirstValue(models.FieldPostalCode),
		)
		for field, evs := range validated {
			for _, ev := range evs {
				evidence.Add(field, ev)
			}
		}
		conflicts = append(conflicts, vConflicts...)
	}

	if e.cfg.Geographic && e.validator != nil {
		for field, evs := range e.validator.ExtractFromAddress(normalized) {
			for _, ev := range evs {
				evidence.Add(field, ev)
			}
		}
		for field, evs := range e.validator.ValidateAndEnhance(evidence) {
			for _, ev := range evs {
				evidence.Add(field, ev)
			}
		}
	}

	resolved := e.resolver.Resolve(evidence)

	components := make(map[string]string, len(models.ComponentFields))
	for _, field := range models.ComponentFields {
		components[field] = resolved[field].Value
	}

	sum, n := 0.0, 0
	for _, rc := range resolved {
		sum += rc.Confidence
		n++
	}
	overall := 0.0
	if n > 0 {
		overall = sum / float64(n)
	}

	return &models.ExtractionResult{
		Components:        components,
		OverallConfidence: overall,
		NormalizedAddress: normalized,
		OriginalAddress:   address,
		Metadata: &models.ExtractionMetadata{
			Script:           script.PrimaryScript,
			IsMixed:          script.IsMixed,
			Conflicts:        conflicts,
			ComponentDetails: resolved,
		},
	}
}

// Stats returns a snapshot of the running counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.CacheHits, s.CacheMisses = e.cache.Stats()
	return s
}

// CacheLen reports the number of memoized results.
func (e *Engine) CacheLen() int { return e.cache.Len() }

// ClearCache drops all memoized results.
func (e *Engine) ClearCache() { e.cache.Clear() }

// GazetteerVersion identifies the gazetteer build backing this engine.
func (e *Engine) GazetteerVersion() string {
	if e.gazetteer == nil {
		return ""
	}
	return e.gazetteer.Version()
}

func (e *Engine) recordProcessed(ms float64) {
	e.mu.Lock()
	e.stats.TotalProcessed++
	e.stats.TotalTimeMs += ms
	e.mu.Unlock()
}

func (e *Engine) recordError() {
	e.mu.Lock()
	e.stats.Errors++
	e.mu.Unlock()
}

func emptyResult(address string) *models.ExtractionResult {
	components := make(map[string]string, len(models.ComponentFields))
	for _, field := range models.ComponentFields {
		components[field] = ""
	}
	return &models.ExtractionResult{
		Components:        components,
		OverallConfidence: 0.0,
		NormalizedAddress: "",
		OriginalAddress:   address,
		Metadata:          &models.ExtractionMetadata{Script: models.ScriptNeutral},
	}
}
