package quotes

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// Placeholder replaces every recognised quote in the main text.
const Placeholder = "[ЦИТАТА]"

const minQuoteLen = 3

const (
	speechVerbs = `(?:сказал|заявил|отметил|подчеркнул|сообщил|пояснил|добавил|ответил|уточнил|признал|рассказал|написал|заметил|указал|считает|говорит|заверил|предупредил)[а-яё]*`
	personName  = `([А-ЯЁ][а-яё]+(?:[ \t\x{00A0}\x{202F}]+[А-ЯЁ][а-яё]+){0,1})`
	dashes      = `[—–-]+`
	// ws also matches the no-break spaces news sites put after dashes.
	ws = `[\s\x{00A0}\x{202F}]`
)

var (
	quoteExpr = regexp.MustCompile(`«([^«»]*)»|„([^„“]*)“|“([^“”]*)”|"([^"]*)"`)

	// «…», — сказал Иван Петров
	verbThenName = regexp.MustCompile(`^` + ws + `*[,.!?…]*` + ws + `*` + dashes + ws + `*` + speechVerbs + ws + `+` + personName)
	// «…», — Иван Петров сказал
	nameThenVerb = regexp.MustCompile(`^` + ws + `*[,.!?…]*` + ws + `*` + dashes + ws + `*` + personName + ws + `+` + speechVerbs)
	// Иван Петров заявил: «…»
	introClause = regexp.MustCompile(personName + ws + `+` + speechVerbs + ws + `*[:,]?` + ws + `*$`)

	sentenceEnd = regexp.MustCompile(`[.!?…»“”"]`)
)

// Splitter extracts quoted speech and attributes it to speakers.
type Splitter struct{}

var _ ports.QuoteSplitter = Splitter{}

// NewSplitter returns the rule-based splitter.
func NewSplitter() Splitter {
	return Splitter{}
}

type span struct {
	start, end int
	text       string
}

// FindQuotes returns quotes in document order. Spans shorter than three
// characters are ignored.
func (Splitter) FindQuotes(text string) []domain.Quote {
	spans := findSpans(text)
	out := make([]domain.Quote, 0, len(spans))
	for _, sp := range spans {
		q := domain.Quote{Text: sp.text, Authors: []string{}}
		if author := attribute(text, sp); author != "" {
			q.Authors = append(q.Authors, author)
		}
		out = append(out, q)
	}
	return out
}

// RemoveQuotes replaces every quote returned by FindQuotes, marks included,
// with Placeholder.
func (Splitter) RemoveQuotes(text string) string {
	spans := findSpans(text)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, sp := range spans {
		b.WriteString(text[last:sp.start])
		b.WriteString(Placeholder)
		last = sp.end
	}
	b.WriteString(text[last:])
	return b.String()
}

func findSpans(text string) []span {
	var out []span
	for _, m := range quoteExpr.FindAllStringSubmatchIndex(text, -1) {
		inner := ""
		for g := 1; g < len(m)/2; g++ {
			if m[2*g] >= 0 {
				inner = strings.TrimSpace(text[m[2*g]:m[2*g+1]])
				break
			}
		}
		if utf8.RuneCountInString(inner) < minQuoteLen {
			continue
		}
		out = append(out, span{start: m[0], end: m[1], text: inner})
	}
	return out
}

func attribute(text string, sp span) string {
	after := text[sp.end:]
	if m := verbThenName.FindStringSubmatch(after); m != nil {
		return speaker(m[1])
	}
	if m := nameThenVerb.FindStringSubmatch(after); m != nil {
		return speaker(m[1])
	}

	before := text[:sp.start]
	if locs := sentenceEnd.FindAllStringIndex(before, -1); len(locs) > 0 {
		before = before[locs[len(locs)-1][1]:]
	}
	if m := introClause.FindStringSubmatch(before); m != nil {
		return speaker(m[1])
	}
	return ""
}

// speaker joins name parts with plain spaces.
func speaker(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
