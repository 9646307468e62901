package screening

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spigell/cv-screener/internal/scoring"
)

type Report struct {
	Job         scoring.Job       `json:"job"`
	Weights     scoring.Weights   `json:"weights"`
	GeneratedAt time.Time         `json:"generated_at"`
	Screening   []Status          `json:"screening,omitempty"`
	Candidates  []ReportCandidate `json:"candidates"`
}

type ReportCandidate struct {
	Rank          int               `json:"rank"`
	Path          string            `json:"path"`
	Digest        string            `json:"digest,omitempty"`
	Name          string            `json:"name,omitempty"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Score         scoring.Breakdown `json:"score"`
	Years         float64           `json:"years_of_experience"`
	MissingSkills []string          `json:"missing_skills,omitempty"`
	FromCache     bool              `json:"from_cache,omitempty"`
}

// NewReport ranks the candidates and snapshots them together with the scoring setup.
func NewReport(engine *scoring.Engine, steps []Filter, c *Candidates) *Report {
	report := &Report{
		Job:         engine.Job(),
		Weights:     engine.Weights(),
		GeneratedAt: time.Now().UTC(),
		Screening:   Describe(steps),
		Candidates:  make([]ReportCandidate, 0, c.Len()),
	}

	for idx, candidate := range c.Ranked() {
		entry := ReportCandidate{
			Rank:          idx + 1,
			Path:          candidate.Path,
			Digest:        candidate.Digest,
			Score:         candidate.Score,
			Years:         candidate.Years,
			MissingSkills: candidate.MissingSkills,
			FromCache:     candidate.FromCache,
		}
		if candidate.Resume != nil {
			entry.Name = candidate.Resume.Name
			entry.Email = candidate.Resume.Email
			entry.Phone = candidate.Resume.Phone
		}
		report.Candidates = append(report.Candidates, entry)
	}

	return report
}

// WriteFile stores the report as indented JSON, creating parent directories when needed.
func (r *Report) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return err
	}
	return file.Close()
}
