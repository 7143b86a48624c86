package filters

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// dateLocale renders the long form "day month year" of a date.
type dateLocale struct {
	tag    language.Tag
	months [12]string
	layout func(day int, month string, year int) string
}

func (l dateLocale) format(t time.Time) string {
	return l.layout(t.Day(), l.months[t.Month()-1], t.Year())
}

func dayMonthYear(day int, month string, year int) string {
	return fmt.Sprintf("%d %s %d", day, month, year)
}

// The first entry is the fallback for unsupported locales.
var dateLocales = []dateLocale{
	{
		tag: language.French,
		months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		layout: dayMonthYear,
	},
	{
		tag: language.AmericanEnglish,
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		layout: func(day int, month string, year int) string {
			return fmt.Sprintf("%s %d, %d", month, day, year)
		},
	},
	{
		tag: language.BritishEnglish,
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		layout: dayMonthYear,
	},
	{
		tag: language.German,
		months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		layout: func(day int, month string, year int) string {
			return fmt.Sprintf("%d. %s %d", day, month, year)
		},
	},
	{
		tag: language.Spanish,
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		layout: func(day int, month string, year int) string {
			return fmt.Sprintf("%d de %s de %d", day, month, year)
		},
	},
	{
		tag: language.Italian,
		months: [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
			"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
		layout: dayMonthYear,
	},
	{
		tag: language.Dutch,
		months: [12]string{"januari", "februari", "maart", "april", "mei", "juni",
			"juli", "augustus", "september", "oktober", "november", "december"},
		layout: dayMonthYear,
	},
	{
		tag: language.Portuguese,
		months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		layout: func(day int, month string, year int) string {
			return fmt.Sprintf("%d de %s de %d", day, month, year)
		},
	},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLocales))
	for i, l := range dateLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// resolveLocale picks the closest supported locale for a BCP 47 tag such as "fr-FR".
func resolveLocale(raw string) dateLocale {
	tag, err := language.Parse(raw)
	if err != nil {
		return dateLocales[0]
	}
	_, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return dateLocales[0]
	}
	return dateLocales[idx]
}
