package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/cv-screener/internal/resume"
)

func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestYearsOfExperience(t *testing.T) {
	freezeNow(t, time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		duration string
		want     float64
	}{
		{name: "month range", duration: "Jan 2020 - Dec 2021", want: 2.0},
		{name: "full month names", duration: "January 2020 - December 2021", want: 2.0},
		{name: "to keyword", duration: "Jan 2020 to Dec 2021", want: 2.0},
		{name: "en dash", duration: "Jan 2020 – Dec 2021", want: 2.0},
		{name: "numeric months", duration: "01/2020 - 12/2021", want: 2.0},
		{name: "vietnamese", duration: "Tháng 1/2020 đến tháng 12/2021", want: 2.0},
		{name: "single month", duration: "Mar 2021 - Mar 2021", want: 0.1},
		{name: "present", duration: "03/2019 - present", want: 5.3},
		{name: "vietnamese present", duration: "03/2019 - hiện tại", want: 5.3},
		{name: "sept abbreviation", duration: "Sept 2023 - Feb 2024", want: 0.5},
		{name: "bare years fall back", duration: "2019 - 2022", want: 3.0},
		{name: "year to present falls back", duration: "2019 - present", want: 5.0},
		{name: "future end is clamped", duration: "Jan 2020 - Dec 2030", want: 4.5},
		{name: "reversed range is zero", duration: "Dec 2021 - Jan 2020", want: 0},
		{name: "no separator", duration: "2020", want: 0},
		{name: "garbage", duration: "foo - bar", want: 0},
		{name: "empty", duration: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := YearsOfExperience([]resume.Experience{{Duration: tt.duration}})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestYearsOfExperienceSumsEntries(t *testing.T) {
	freezeNow(t, time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC))

	entries := []resume.Experience{
		{Company: "Acme", Duration: "Jan 2020 - Dec 2021"},
		{Company: "Beta", Duration: "2015 - 2018"},
		{Company: "Gamma"},
	}

	assert.InDelta(t, 5.0, YearsOfExperience(entries), 1e-9)
	assert.Zero(t, YearsOfExperience(nil))
	assert.Zero(t, YearsOfExperience([]resume.Experience{}))
}
