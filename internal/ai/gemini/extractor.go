package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/resume"
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Extractor structures resume text with a Gemini model.
type Extractor struct {
	generator jsonGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	textPlaceholder     = "{{CV_TEXT}}"
)

var _ ai.Extractor = (*Extractor)(nil)

func NewExtractor(generator jsonGenerator, maxLogLength int, log *zap.Logger) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Extractor{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// Extract sends text to the model and decodes its answer.
// Every failure is returned as an *ai.Error; no network call is made for blank text.
func (e *Extractor) Extract(ctx context.Context, text string) (*resume.Resume, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ai.ErrEmptyText
	}

	prompt := buildPrompt(text)

	e.logger.Debug("gemini extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Truncate(text, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		if isResponseError(err) {
			return nil, ai.Parse(err)
		}
		return nil, ai.Transport(err)
	}

	e.logger.Debug("gemini extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Truncate(raw, e.maxLogLen)),
	)

	parsed, err := parseResponse(raw)
	if err != nil {
		e.logger.Warn("gemini answer is not a resume object", zap.Error(err))
		return nil, ai.Parse(err)
	}

	return parsed, nil
}

func buildPrompt(text string) string {
	template := promptTemplate
	if !strings.Contains(template, textPlaceholder) {
		template = "Extract the resume below as a JSON object.\n\n" + textPlaceholder
	}
	return strings.Replace(template, textPlaceholder, strings.TrimSpace(text), 1)
}

// isResponseError reports whether err means the provider answered but the envelope was unusable.
func isResponseError(err error) bool {
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func parseResponse(raw string) (*resume.Resume, error) {
	return resume.Parse([]byte(extractJSON(raw)))
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
