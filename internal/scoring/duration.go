package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/cv-screener/internal/resume"
)

// now is replaced in tests.
var now = time.Now

var (
	dashes       = strings.NewReplacer("–", "-", "—", "-", "‒", "-")
	rangeWords   = regexp.MustCompile(`\bto\b|\buntil\b|đến`)
	presentWords = regexp.MustCompile(`\bpresent\b|\bnow\b|\bcurrent\b|\bcurrently\b|hiện tại|\bnay\b`)
	monthPrefix  = regexp.MustCompile(`^(?:tháng|from|since)\s+`)
	yearToken    = regexp.MustCompile(`\b\d{4}\b`)
	septAbbr     = regexp.MustCompile(`\bsept\b`)

	monthLayouts = []string{
		"Jan 2006",
		"January 2006",
		"Jan. 2006",
		"Jan, 2006",
		"January, 2006",
		"01/2006",
		"1/2006",
		"2006/01",
		"2006/1",
		"01.2006",
		"1.2006",
		"1 2006",
	}
)

type yearMonth struct {
	year  int
	month time.Month
}

func (ym yearMonth) after(other yearMonth) bool {
	return ym.year > other.year || (ym.year == other.year && ym.month > other.month)
}

// YearsOfExperience sums the durations of the experience entries in years, rounded to one
// decimal. A nil slice means the experience field was absent or malformed.
func YearsOfExperience(entries []resume.Experience) float64 {
	current := now()
	months := 0
	for _, entry := range entries {
		months += durationMonths(entry.Duration, current)
	}

	return math.Round(float64(months)/12*10) / 10
}

// durationMonths parses ranges such as "Jan 2020 - Dec 2021" or "03/2019 to present".
// Both ends count as worked months. When an end is not a month/year, the distance between
// the first and last four-digit years is used instead.
func durationMonths(duration string, current time.Time) int {
	s := normalizeDuration(duration, current)
	if s == "" {
		return 0
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0
	}

	start, okStart := parseMonth(parts[0])
	end, okEnd := parseMonth(parts[1])
	if !okStart || !okEnd {
		return yearsFallback(s)
	}

	today := yearMonth{year: current.Year(), month: current.Month()}
	if end.after(today) {
		end = today
	}

	months := (end.year-start.year)*12 + int(end.month-start.month) + 1
	return max(months, 0)
}

func normalizeDuration(duration string, current time.Time) string {
	s := strings.ToLower(strings.TrimSpace(duration))
	if s == "" {
		return ""
	}

	s = dashes.Replace(s)
	s = rangeWords.ReplaceAllString(s, "-")
	s = presentWords.ReplaceAllString(s, strings.ToLower(current.Format("Jan 2006")))

	return strings.Join(strings.Fields(s), " ")
}

func parseMonth(part string) (yearMonth, bool) {
	part = strings.TrimSpace(part)
	part = monthPrefix.ReplaceAllString(part, "")
	part = septAbbr.ReplaceAllString(part, "sep")

	for _, layout := range monthLayouts {
		t, err := time.Parse(layout, part)
		if err == nil {
			return yearMonth{year: t.Year(), month: t.Month()}, true
		}
	}

	return yearMonth{}, false
}

func yearsFallback(s string) int {
	tokens := yearToken.FindAllString(s, -1)
	if len(tokens) < 2 {
		return 0
	}

	first, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0
	}
	last, err := strconv.Atoi(tokens[len(tokens)-1])
	if err != nil {
		return 0
	}

	return max((last-first)*12, 0)
}
