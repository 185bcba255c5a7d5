package water

import "NewsAnalyzer/internal/domain"

// Interpret maps each feature to a human-readable band. Comparisons are strict,
// so a value on a boundary falls into the next band.
func Interpret(fv domain.FeatureVector) map[string]string {
	out := make(map[string]string, 4)

	switch ri := fv.ReadabilityIndex; {
	case ri > 80:
		out["readability"] = "very easy"
	case ri > 60:
		out["readability"] = "normal"
	case ri > 40:
		out["readability"] = "somewhat hard"
	default:
		out["readability"] = "hard"
	}

	switch adj := fv.AdjRatio; {
	case adj < 0.12:
		out["adjectives"] = "factual"
	case adj < 0.18:
		out["adjectives"] = "neutral"
	default:
		out["adjectives"] = "possible filler"
	}

	switch adv := fv.AdvRatio; {
	case adv < 0.03:
		out["adverbs"] = "dry"
	case adv < 0.07:
		out["adverbs"] = "normal"
	default:
		out["adverbs"] = "emotional filler"
	}

	switch rep := fv.RepetitionRatio; {
	case rep < 0.05:
		out["repetitions"] = "good"
	case rep < 0.1:
		out["repetitions"] = "tolerable"
	default:
		out["repetitions"] = "filler"
	}

	return out
}
