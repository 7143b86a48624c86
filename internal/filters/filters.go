// Package filters implements the template filters registered by the site
// configuration: long-form localized dates, ISO-8601 metadata dates and a
// reading-time estimate.
//
// Filters never fail. A value they cannot interpret degrades to a string
// fallback so a single bad frontmatter field cannot abort a build.
package filters

import (
	"fmt"
	"html/template"
	"math"
	"regexp"
	"strings"
)

// Registered filter names.
const (
	DateFilter        = "dateFr"
	ISODateFilter     = "isoDate"
	ReadingTimeFilter = "readingTime"
)

const (
	DefaultLocale         = "fr-FR"
	DefaultWordsPerMinute = 200
	// DefaultReadingTime is returned for empty content.
	DefaultReadingTime = "1 min"
	isoLayout          = "2006-01-02T15:04:05.000Z"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// FallbackFunc is notified whenever a filter could not interpret its input.
type FallbackFunc func(filter string, value any)

// Options configures a filter Set. Zero values select the defaults.
type Options struct {
	Locale         string
	WordsPerMinute int
	OnFallback     FallbackFunc
}

// Set is a configured group of filters sharing a locale and reading speed.
type Set struct {
	locale         dateLocale
	wordsPerMinute int
	onFallback     FallbackFunc
}

// NewSet builds a filter set for opts.
func NewSet(opts Options) *Set {
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = DefaultWordsPerMinute
	}
	return &Set{
		locale:         resolveLocale(opts.Locale),
		wordsPerMinute: opts.WordsPerMinute,
		onFallback:     opts.OnFallback,
	}
}

// FormatDate renders value as "12 février 2023" in the set's locale.
// Unparsable input is returned in its default string form.
func (s *Set) FormatDate(value any) string {
	t, ok := ParseDate(value)
	if !ok {
		s.fallback(DateFilter, value)
		return fmt.Sprint(value)
	}
	return s.locale.format(t)
}

// ISODate renders value as a UTC ISO-8601 timestamp with millisecond
// precision. Empty or unparsable input yields "".
func (s *Set) ISODate(value any) string {
	if isEmptyValue(value) {
		return ""
	}
	t, ok := ParseDate(value)
	if !ok {
		s.fallback(ISODateFilter, value)
		return ""
	}
	return t.UTC().Format(isoLayout)
}

// ReadingTime estimates minutes of reading for rendered content as "<n> min".
// Tags are stripped, whitespace-separated words counted and the count divided
// by the reading speed, rounded up. Empty content yields DefaultReadingTime.
func (s *Set) ReadingTime(content any) string {
	text := contentString(content)
	if text == "" {
		return DefaultReadingTime
	}
	words := CountWords(text)
	minutes := int(math.Ceil(float64(words) / float64(s.wordsPerMinute)))
	return fmt.Sprintf("%d min", minutes)
}

// CountWords strips markup tags and counts whitespace-separated tokens.
func CountWords(content string) int {
	return len(strings.Fields(tagPattern.ReplaceAllString(content, "")))
}

// FuncMap exposes the filters under their registered names.
func (s *Set) FuncMap() template.FuncMap {
	return template.FuncMap{
		DateFilter:        s.FormatDate,
		ISODateFilter:     s.ISODate,
		ReadingTimeFilter: s.ReadingTime,
	}
}

func (s *Set) fallback(filter string, value any) {
	if s.onFallback != nil {
		s.onFallback(filter, value)
	}
}

func contentString(content any) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	case template.HTML:
		return string(c)
	case []byte:
		return string(c)
	case fmt.Stringer:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}
