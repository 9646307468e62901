package screening

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const disabledByConfigMsg = "disabled in config"

// toggle is embedded by filters that can be switched off at runtime.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type failedFilter struct {
	toggle
	logger *zap.Logger
}

// NewFailed creates a filter that removes candidates whose processing failed.
func NewFailed(enabled bool, logger *zap.Logger) Filter {
	f := &failedFilter{logger: nopIfNil(logger)}
	if !enabled {
		f.Disable(disabledByConfigMsg)
	}
	return f
}

func (f *failedFilter) Name() string { return "failed" }

func (f *failedFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(candidate *Candidate) bool {
		return candidate.Failed()
	})
	if len(excluded) > 0 {
		f.logger.Info("excluding candidates that could not be processed",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *failedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minimumScoreFilter struct {
	toggle
	minimum float64
	logger  *zap.Logger
}

// NewMinimumScore creates a filter that removes candidates with a total score below minimum.
// A non-positive minimum disables the filter.
func NewMinimumScore(minimum float64, logger *zap.Logger) Filter {
	f := &minimumScoreFilter{minimum: minimum, logger: nopIfNil(logger)}
	if minimum <= 0 {
		f.Disable("minimum score is not set")
	}
	return f
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(candidate *Candidate) bool {
		return candidate.Score.TotalScore < f.minimum
	})
	if len(excluded) > 0 {
		f.logger.Info("excluding candidates below minimum score",
			zap.Float64("minimum_score", f.minimum),
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.FormatFloat(f.minimum, 'f', -1, 64)},
	}
}

type requiredSkillsFilter struct {
	toggle
	logger *zap.Logger
}

// NewRequiredSkills creates a filter that removes candidates missing any required skill.
// It relies on Candidate.MissingSkills being filled in by the caller.
func NewRequiredSkills(enabled bool, logger *zap.Logger) Filter {
	f := &requiredSkillsFilter{logger: nopIfNil(logger)}
	if !enabled {
		f.Disable(disabledByConfigMsg)
	}
	return f
}

func (f *requiredSkillsFilter) Name() string { return "required_skills_all" }

func (f *requiredSkillsFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(candidate *Candidate) bool {
		return candidate.Failed() || len(candidate.MissingSkills) > 0
	})
	if len(excluded) > 0 {
		f.logger.Info("excluding candidates without all required skills",
			zap.Strings("excluded_candidates", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *requiredSkillsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

// Defaults returns the standard screening steps in execution order.
func Defaults(dropFailed bool, minimumScore float64, requireAllSkills bool, logger *zap.Logger) []Filter {
	return []Filter{
		NewFailed(dropFailed, logger),
		NewMinimumScore(minimumScore, logger),
		NewRequiredSkills(requireAllSkills, logger),
	}
}

// Summary renders statuses as "name=on" pairs for logging.
func Summary(statuses []Status) string {
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		state := "on"
		if !status.Enabled {
			state = "off"
		}
		parts = append(parts, status.Name+"="+state)
	}
	return strings.Join(parts, ",")
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
