package freshness

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// DefaultRecentDays is the oldest age, in days, still reported as recent.
const DefaultRecentDays = 7

var layouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// Evaluator buckets a publish timestamp by calendar-day age.
type Evaluator struct {
	loc        *time.Location
	recentDays int
	clock      func() time.Time
}

var _ ports.FreshnessEvaluator = (*Evaluator)(nil)

// NewEvaluator compares calendar days in loc; nil means UTC.
func NewEvaluator(loc *time.Location, recentDays int) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	if recentDays <= 0 {
		recentDays = DefaultRecentDays
	}
	return &Evaluator{loc: loc, recentDays: recentDays, clock: time.Now}
}

// Assess never fails: missing, unparsable and future dates are "unknown".
func (e *Evaluator) Assess(publishedAt *string) domain.FreshnessResult {
	ref := e.clock().In(e.loc)
	result := domain.FreshnessResult{
		Status:        domain.FreshnessUnknown,
		ReferenceDate: ref.Format(time.RFC3339),
	}

	if publishedAt == nil || strings.TrimSpace(*publishedAt) == "" {
		result.Message = "Дата публикации не указана"
		return result
	}

	published, err := e.parse(strings.TrimSpace(*publishedAt))
	if err != nil {
		result.Message = fmt.Sprintf("Не удалось распознать дату публикации: %q", *publishedAt)
		return result
	}
	source := published.Format(time.RFC3339)
	result.SourceDate = &source

	refDay := now.With(ref).BeginningOfDay()
	pubDay := now.With(published).BeginningOfDay()
	age := int(math.Round(refDay.Sub(pubDay).Hours() / 24))
	if age < 0 {
		result.Message = fmt.Sprintf("Дата публикации в будущем: %s", source)
		return result
	}
	result.AgeDays = &age

	switch {
	case age == 0:
		result.Status = domain.FreshnessToday
		result.Message = "Статья опубликована сегодня"
	case age == 1:
		result.Status = domain.FreshnessYesterday
		result.Message = "Статья опубликована вчера"
	case age <= e.recentDays:
		result.Status = domain.FreshnessRecent
		result.Message = fmt.Sprintf("Статья опубликована %d дн. назад", age)
	default:
		result.Status = domain.FreshnessStale
		result.Message = fmt.Sprintf("Статья устарела: опубликована %d дн. назад", age)
	}
	return result
}

func (e *Evaluator) parse(value string) (time.Time, error) {
	cfg := &now.Config{
		WeekStartDay: time.Monday,
		TimeLocation: e.loc,
		TimeFormats:  layouts,
	}
	t, err := cfg.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse publish date: %w", err)
	}
	return t.In(e.loc), nil
}
