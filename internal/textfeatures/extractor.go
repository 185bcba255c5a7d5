package textfeatures

import (
	"math"
	"regexp"
	"strings"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const vowels = "аеёиоуыэюяАЕЁИОУЫЭЮЯ"

var (
	sentenceBreak = regexp.MustCompile(`[.!?…]+`)
	wordExpr      = regexp.MustCompile(`[а-яА-ЯёЁ]+`)
)

// Extractor turns raw text into the water-model feature vector.
type Extractor struct {
	morph ports.Morphology
}

// NewExtractor wires a morphological analyzer; nil falls back to SuffixMorphology.
func NewExtractor(morph ports.Morphology) *Extractor {
	if morph == nil {
		morph = SuffixMorphology{}
	}
	return &Extractor{morph: morph}
}

// Extract computes all four features. Degenerate input yields zeros, never an error.
func (e *Extractor) Extract(text string) domain.FeatureVector {
	words := Words(text)
	adj, adv := e.posRatios(words)
	return domain.FeatureVector{
		ReadabilityIndex: e.readability(text, words),
		AdjRatio:         adj,
		AdvRatio:         adv,
		RepetitionRatio:  RepetitionRatio(words),
	}
}

// Sentences returns the non-empty trimmed sentence fragments of text.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceBreak.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Words returns the maximal runs of Cyrillic letters in text.
func Words(text string) []string {
	return wordExpr.FindAllString(text, -1)
}

// CountSyllables counts vowel letters, the syllable proxy for Russian.
func CountSyllables(word string) int {
	n := 0
	for _, r := range word {
		if strings.ContainsRune(vowels, r) {
			n++
		}
	}
	return n
}

func (e *Extractor) readability(text string, words []string) float64 {
	sentences := len(Sentences(text))
	if sentences == 0 || len(words) == 0 {
		return 0.0
	}

	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(e.morph.Lemma(w))
	}

	wps := float64(len(words)) / float64(sentences)
	spw := float64(syllables) / float64(len(words))
	return round2(206.835 - 1.3*wps - 60.1*spw)
}

func (e *Extractor) posRatios(words []string) (float64, float64) {
	if len(words) == 0 {
		return 0.0, 0.0
	}

	counts := make(map[domain.POS]int)
	for _, w := range words {
		counts[e.morph.Tag(w)]++
	}

	total := float64(len(words))
	adj := float64(counts[domain.POSAdjFull]+counts[domain.POSAdjShort]) / total
	adv := float64(counts[domain.POSAdverb]) / total
	return adj, adv
}

// RepetitionRatio is the share of the most frequent lower-cased token.
func RepetitionRatio(words []string) float64 {
	if len(words) == 0 {
		return 0.0
	}

	counts := make(map[string]int, len(words))
	top := 0
	for _, w := range words {
		w = strings.ToLower(w)
		counts[w]++
		if counts[w] > top {
			top = counts[w]
		}
	}
	return float64(top) / float64(len(words))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
