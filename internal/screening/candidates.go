package screening

import (
	"cmp"
	"slices"

	"github.com/spigell/cv-screener/internal/resume"
	"github.com/spigell/cv-screener/internal/scoring"
)

// Candidate is a processed and scored resume file.
type Candidate struct {
	Path          string
	Digest        string
	FromCache     bool
	Resume        *resume.Resume
	Score         scoring.Breakdown
	Years         float64
	MissingSkills []string
	Err           error
}

func (c *Candidate) Failed() bool {
	return c.Err != nil || c.Score.Failed()
}

type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

// Exclude removes every candidate matching drop and returns the removed paths.
func (c *Candidates) Exclude(drop func(*Candidate) bool) []string {
	var excluded []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if drop(candidate) {
			excluded = append(excluded, candidate.Path)
			continue
		}
		kept = append(kept, candidate)
	}
	clear(c.Items[len(kept):])
	c.Items = kept
	return excluded
}

// Ranked returns the candidates ordered by total score, highest first. Ties are ordered by path.
func (c *Candidates) Ranked() []*Candidate {
	ranked := slices.Clone(c.Items)
	slices.SortStableFunc(ranked, func(a, b *Candidate) int {
		if n := cmp.Compare(b.Score.TotalScore, a.Score.TotalScore); n != 0 {
			return n
		}
		return cmp.Compare(a.Path, b.Path)
	})
	return ranked
}
