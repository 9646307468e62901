// Package scoring computes how well a structured resume matches a job description.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Job lists the requirements a resume is scored against.
type Job struct {
	Title                   string   `mapstructure:"title" json:"title"`
	RequiredSkills          []string `mapstructure:"required-skills" json:"required_skills"`
	NiceToHaveSkills        []string `mapstructure:"nice-to-have-skills" json:"nice_to_have_skills"`
	RequiredExperienceYears float64  `mapstructure:"required-experience-years" json:"required_experience_years"`
	RequiredDegrees         []string `mapstructure:"required-degrees" json:"required_degrees"`
	Description             string   `mapstructure:"description" json:"description"`
}

// Weights are the multipliers of the sub-scores in the total. Zero means ignored.
type Weights struct {
	Skills     float64 `mapstructure:"skills" json:"skills"`
	Experience float64 `mapstructure:"experience" json:"experience"`
	Education  float64 `mapstructure:"education" json:"education"`
}

// DefaultWeights are the configuration defaults.
var DefaultWeights = Weights{Skills: 0.5, Experience: 0.3, Education: 0.2}

// WeightsFromMap picks the recognized keys out of m; other keys are ignored.
func WeightsFromMap(m map[string]float64) Weights {
	w := Weights{}
	for key, value := range m {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "skills":
			w.Skills = value
		case "experience":
			w.Experience = value
		case "education":
			w.Education = value
		}
	}
	return w
}

// LoadJob reads a job description from a YAML, JSON or TOML file.
func LoadJob(path string) (*Job, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("job file is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}

	var job Job
	if err := v.Unmarshal(&job); err != nil {
		return nil, fmt.Errorf("decode job file: %w", err)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return &job, nil
}

func (j *Job) Validate() error {
	if j.RequiredExperienceYears < 0 {
		return fmt.Errorf("required experience years must not be negative, got %v", j.RequiredExperienceYears)
	}
	return nil
}
