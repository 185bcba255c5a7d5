package textfeatures

import (
	"strings"
	"unicode/utf8"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// SuffixMorphology is a dictionary-free Russian analyzer: a closed list of
// function words and short adjectives, then inflection suffix rules.
// It approximates a full morphological dictionary well enough for ratio features.
type SuffixMorphology struct{}

var _ ports.Morphology = SuffixMorphology{}

var functionWords = toSet(
	"и", "в", "во", "на", "не", "ни", "что", "как", "с", "со", "к", "ко", "по", "из", "за", "от", "до",
	"о", "об", "обо", "у", "а", "но", "да", "или", "либо", "же", "ли", "бы", "то", "это", "этот", "эта",
	"эти", "этого", "этой", "этом", "тот", "та", "те", "того", "той", "он", "она", "оно", "они", "его",
	"ее", "её", "их", "им", "ими", "них", "ним", "нему", "ней", "я", "мы", "ты", "вы", "меня", "нас",
	"вас", "мне", "нам", "вам", "себя", "себе", "свой", "своя", "свои", "мой", "моя", "твой", "наш",
	"ваш", "который", "которая", "которое", "которые", "которого", "которой", "котором", "кто", "чем",
	"при", "для", "без", "над", "под", "перед", "через", "между", "если", "чтобы", "когда", "пока",
	"хотя", "также", "тоже", "все", "всё", "весь", "вся", "всех", "всем", "каждый", "другой", "такой",
	"какой", "сам", "сама", "само", "самый", "был", "была", "было", "были", "быть", "есть", "будет",
)

var closedAdverbs = toSet(
	"очень", "уже", "ещё", "еще", "здесь", "там", "тут", "тогда", "всегда", "никогда", "сейчас",
	"потом", "теперь", "почти", "совсем", "вполне", "крайне", "весьма", "довольно", "слишком",
	"вновь", "снова", "опять", "вчера", "сегодня", "завтра", "быстро", "скоро", "рано", "поздно",
	"много", "мало", "далеко", "близко", "высоко", "глубоко", "легко", "тихо", "громко", "плохо",
	"хорошо", "давно", "недавно", "просто", "действительно", "абсолютно", "буквально", "наверняка",
	"практически", "впрочем", "вдруг", "сразу", "вместе", "особенно", "именно", "только", "лишь",
	"около", "вокруг", "наконец", "поэтому", "зачем", "почему", "где", "куда", "откуда", "так",
	"более", "менее", "затем", "сначала", "отсюда", "оттуда", "вряд",
)

// short adjective -> full form
var shortAdjectives = map[string]string{
	"готов": "готовый", "готова": "готовый", "готово": "готовый", "готовы": "готовый",
	"должен": "должный", "должна": "должный", "должно": "должный", "должны": "должный",
	"рад": "радый", "рада": "радый", "рады": "радый",
	"нужен": "нужный", "нужна": "нужный", "нужны": "нужный",
	"прав": "правый", "права": "правый", "правы": "правый",
	"виден": "видный", "видна": "видный", "видны": "видный",
	"известен": "известный", "известна": "известный", "известны": "известный",
	"способен": "способный", "способна": "способный", "способны": "способный",
	"уверен": "уверенный", "уверена": "уверенный", "уверены": "уверенный",
	"согласен": "согласный", "согласна": "согласный", "согласны": "согласный",
	"возможен": "возможный", "возможна": "возможный", "возможны": "возможный",
	"необходим": "необходимый", "необходима": "необходимый", "необходимы": "необходимый",
	"важен": "важный", "важна": "важный", "важны": "важный",
	"интересен": "интересный", "интересна": "интересный", "интересны": "интересный",
	"свободен": "свободный", "свободна": "свободный", "свободны": "свободный",
	"красив": "красивый", "красива": "красивый", "красивы": "красивый",
	"велик": "великий", "велика": "великий", "велики": "великий",
	"опасен": "опасный", "опасна": "опасный", "опасны": "опасный",
}

var nounsEndingInNo = toSet(
	"вино", "окно", "кино", "пятно", "зерно", "полотно", "волокно", "сукно", "бревно", "звено",
	"руно", "дно", "гумно", "судно", "пшено", "толокно", "веретено",
)

var (
	participleSuffixes = []string{
		"ющий", "ющая", "ющее", "ющие", "ющего", "ющей", "ющих", "ющим",
		"ящий", "ящая", "ящее", "ящие", "ящего", "ящей", "ящих", "ящим",
		"ащий", "ащая", "ащее", "ащие", "ащего", "ащей", "ащих", "ащим",
		"ущий", "ущая", "ущее", "ущие", "ущего", "ущей", "ущих", "ущим",
		"вший", "вшая", "вшее", "вшие", "вшего", "вшей", "вших", "вшим",
	}
	adjectiveSuffixes = []string{
		"ого", "его", "ому", "ему", "ыми", "ими", "ый", "ой", "ая", "яя", "ое", "ую", "юю",
		"ые", "ым", "ых", "их", "им", "ий", "ее",
	}
	gerundSuffixes     = []string{"вшись", "ясь", "аясь"}
	infinitiveSuffixes = []string{"ться", "тись", "ть", "ти", "чь"}
	verbSuffixes       = []string{
		"лся", "лась", "лось", "лись", "ется", "ются", "ится", "ятся", "ешь", "ишь", "ете", "ите",
		"ает", "яет", "еет", "ует", "ют", "ут", "ит", "ат", "ят", "ла", "ло", "ли", "ал", "ял", "ил",
		"ел", "ул",
	}
)

// Tag returns a coarse part of speech for a single token.
func (SuffixMorphology) Tag(word string) domain.POS {
	w := strings.ToLower(word)
	n := utf8.RuneCountInString(w)

	switch {
	case functionWords[w]:
		return domain.POSOther
	case closedAdverbs[w]:
		return domain.POSAdverb
	case shortAdjectives[w] != "":
		return domain.POSAdjShort
	case n < 3:
		return domain.POSOther
	case hasAnySuffix(w, participleSuffixes):
		return domain.POSParticip
	case isAdverbByForm(w, n):
		return domain.POSAdverb
	case hasAnySuffix(w, gerundSuffixes):
		return domain.POSGerund
	case hasAnySuffix(w, infinitiveSuffixes):
		return domain.POSInfinit
	case isAdjectiveByForm(w, n):
		return domain.POSAdjFull
	case n > 4 && hasAnySuffix(w, verbSuffixes):
		return domain.POSVerb
	default:
		return domain.POSNoun
	}
}

// Lemma returns an approximate dictionary form in lower case.
func (m SuffixMorphology) Lemma(word string) string {
	w := strings.ToLower(word)
	if full, ok := shortAdjectives[w]; ok {
		return full
	}

	switch m.Tag(w) {
	case domain.POSAdjFull, domain.POSParticip:
		return adjectiveLemma(w)
	default:
		return w
	}
}

func isAdverbByForm(w string, n int) bool {
	if strings.HasSuffix(w, "ски") || strings.HasSuffix(w, "цки") {
		return n > 5
	}
	if !strings.HasSuffix(w, "но") || n < 5 || nounsEndingInNo[w] {
		return false
	}
	prev := []rune(w)[n-3]
	return !strings.ContainsRune(vowels, prev)
}

func isAdjectiveByForm(w string, n int) bool {
	if n < 4 {
		return false
	}
	if strings.HasSuffix(w, "ие") || strings.HasSuffix(w, "ий") {
		// -ние/-тие/-ий nouns: only velar/sibilant stems are adjectival
		prev := []rune(w)[n-3]
		return strings.ContainsRune("кгхжшчщ", prev)
	}
	return hasAnySuffix(w, adjectiveSuffixes)
}

func adjectiveLemma(w string) string {
	for _, suf := range participleSuffixes {
		if strings.HasSuffix(w, suf) {
			marker := string([]rune(suf)[:2])
			return strings.TrimSuffix(w, suf) + marker + "ий"
		}
	}
	for _, suf := range adjectiveSuffixes {
		if !strings.HasSuffix(w, suf) {
			continue
		}
		stem := strings.TrimSuffix(w, suf)
		last, _ := utf8.DecodeLastRuneInString(stem)
		if strings.ContainsRune("кгхжшчщ", last) {
			return stem + "ий"
		}
		return stem + "ый"
	}
	return w
}

func hasAnySuffix(w string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
