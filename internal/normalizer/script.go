package normalizer

import "github.com/address-extractor/app/models"

// ScriptInfo describes the writing systems found in an input string.
type ScriptInfo struct {
	PrimaryScript string  `json:"primary_script"`
	IsMixed       bool    `json:"is_mixed"`
	BanglaRatio   float64 `json:"bangla_ratio"`
	EnglishRatio  float64 `json:"english_ratio"`
}

// ScriptDetector classifies addresses as Bangla, English or mixed script.
type ScriptDetector struct{}

func NewScriptDetector() *ScriptDetector { return &ScriptDetector{} }

// Detect counts Bangla and ASCII letters; both above 30% means mixed.
func (d *ScriptDetector) Detect(address string) ScriptInfo {
	if address == "" {
		return ScriptInfo{PrimaryScript: models.ScriptNeutral}
	}

	var bangla, english, total int
	for _, r := range address {
		total++
		switch {
		case r >= 0x0980 && r <= 0x09FF:
			bangla++
		case r < 128 && ((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')):
			english++
		}
	}

	banglaRatio := float64(bangla) / float64(total)
	englishRatio := float64(english) / float64(total)

	primary := models.ScriptEnglish
	switch {
	case banglaRatio > 0.3 && englishRatio > 0.3:
		primary = models.ScriptMixed
	case banglaRatio > englishRatio:
		primary = models.ScriptBangla
	}

	return ScriptInfo{
		PrimaryScript: primary,
		IsMixed:       primary == models.ScriptMixed,
		BanglaRatio:   banglaRatio,
		EnglishRatio:  englishRatio,
	}
}
