package scoring

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spigell/cv-screener/internal/resume"
)

const maxScore = 100.0

// Engine scores resumes against a single job. It is safe for concurrent use.
type Engine struct {
	job      Job
	weights  Weights
	required map[string]struct{}
	nice     map[string]struct{}
	degrees  []string
}

func NewEngine(job *Job, weights Weights) *Engine {
	if job == nil {
		job = &Job{}
	}

	return &Engine{
		job:      *job,
		weights:  weights,
		required: normalizeSet(job.RequiredSkills),
		nice:     normalizeSet(job.NiceToHaveSkills),
		degrees:  normalizeList(job.RequiredDegrees),
	}
}

func (e *Engine) Job() Job {
	return e.job
}

func (e *Engine) Weights() Weights {
	return e.weights
}

// ScoreSkills rates the share of required skills present plus a capped bonus for
// nice-to-have skills. A nil slice scores 0.
func (e *Engine) ScoreSkills(skills []string) float64 {
	if skills == nil {
		return 0
	}

	have := normalizeSet(skills)

	score := maxScore
	if len(e.required) > 0 {
		score = maxScore * float64(intersection(e.required, have)) / float64(len(e.required))
	}

	bonus := math.Min(5*float64(intersection(e.nice, have)), 25)

	return math.Min(score+bonus, maxScore)
}

// MissingSkills returns the required skills not present in skills, in job order.
func (e *Engine) MissingSkills(skills []string) []string {
	have := normalizeSet(skills)

	var missing []string
	seen := make(map[string]struct{})
	for _, skill := range e.job.RequiredSkills {
		key := normalize(skill)
		if key == "" {
			continue
		}
		if _, ok := have[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		missing = append(missing, strings.TrimSpace(skill))
	}
	return missing
}

func (e *Engine) YearsOfExperience(entries []resume.Experience) float64 {
	return YearsOfExperience(entries)
}

func (e *Engine) ScoreExperience(entries []resume.Experience) float64 {
	required := e.job.RequiredExperienceYears
	if required <= 0 {
		return maxScore
	}

	years := YearsOfExperience(entries)
	return math.Min(maxScore*years/required, maxScore)
}

// ScoreEducation is all or nothing: 100 when any degree contains a required degree.
func (e *Engine) ScoreEducation(entries []resume.Education) float64 {
	if len(e.degrees) == 0 {
		return maxScore
	}
	if entries == nil {
		return 0
	}

	for _, entry := range entries {
		degree := strings.ToLower(entry.Degree)
		for _, required := range e.degrees {
			if strings.Contains(degree, required) {
				return maxScore
			}
		}
	}
	return 0
}

// Breakdown is the per-candidate score. When Error is set only the error and a zero
// total are reported.
type Breakdown struct {
	SkillsScore     float64 `json:"skills_score"`
	ExperienceScore float64 `json:"experience_score"`
	EducationScore  float64 `json:"education_score"`
	TotalScore      float64 `json:"total_score"`
	Error           string  `json:"error,omitempty"`
}

func (b Breakdown) Failed() bool {
	return b.Error != ""
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	if b.Failed() {
		return json.Marshal(struct {
			Error      string  `json:"error"`
			TotalScore float64 `json:"total_score"`
		}{Error: b.Error})
	}

	type plain Breakdown
	return json.Marshal(plain(b))
}

// CalculateTotalScore combines the weighted sub-scores. A processing error short-circuits
// scoring and is carried into the breakdown.
func (e *Engine) CalculateTotalScore(r *resume.Resume, procErr error) Breakdown {
	if procErr != nil {
		return Breakdown{Error: procErr.Error()}
	}
	if r == nil {
		r = &resume.Resume{}
	}

	skills := e.ScoreSkills(r.Skills)
	experience := e.ScoreExperience(r.Experience)
	education := e.ScoreEducation(r.Education)

	total := skills*e.weights.Skills + experience*e.weights.Experience + education*e.weights.Education

	return Breakdown{
		SkillsScore:     round2(skills),
		ExperienceScore: round2(experience),
		EducationScore:  round2(education),
		TotalScore:      round2(math.Min(total, maxScore)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if key := normalize(item); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func normalizeList(items []string) []string {
	var result []string
	for _, item := range items {
		if key := normalize(item); key != "" {
			result = append(result, key)
		}
	}
	return result
}

func intersection(a, b map[string]struct{}) int {
	n := 0
	for key := range a {
		if _, ok := b[key]; ok {
			n++
		}
	}
	return n
}
