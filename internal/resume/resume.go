// Package resume holds the structured representation of a parsed CV.
package resume

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Resume is the structured form of a CV as returned by the extraction model.
//
// A nil list means the field was absent or was not a list in the model answer.
// An empty non-nil list means the model returned an empty list.
type Resume struct {
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
}

type Experience struct {
	Position string `json:"position" mapstructure:"position"`
	Company  string `json:"company" mapstructure:"company"`
	Duration string `json:"duration" mapstructure:"duration"`
}

type Education struct {
	University string `json:"university" mapstructure:"university"`
	Degree     string `json:"degree" mapstructure:"degree"`
	Duration   string `json:"duration" mapstructure:"duration"`
}

// Parse decodes a JSON object into a Resume, tolerating missing or mistyped fields.
func Parse(raw []byte) (*Resume, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("resume payload is not an object")
	}

	return FromMap(data)
}

// FromMap builds a Resume from a loosely typed map such as a decoded model answer.
func FromMap(data map[string]any) (*Resume, error) {
	r := &Resume{
		Name:   coerceString(data["name"]),
		Email:  coerceString(data["email"]),
		Phone:  coerceString(data["phone"]),
		Skills: coerceStrings(data["skills"]),
	}

	if items, ok := data["experience"].([]any); ok {
		r.Experience = make([]Experience, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			var e Experience
			if err := weakDecode(entry, &e); err != nil {
				continue
			}
			r.Experience = append(r.Experience, e.trimmed())
		}
	}

	if items, ok := data["education"].([]any); ok {
		r.Education = make([]Education, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			var e Education
			if err := weakDecode(entry, &e); err != nil {
				continue
			}
			r.Education = append(r.Education, e.trimmed())
		}
	}

	return r, nil
}

func (e Experience) trimmed() Experience {
	return Experience{
		Position: strings.TrimSpace(e.Position),
		Company:  strings.TrimSpace(e.Company),
		Duration: strings.TrimSpace(e.Duration),
	}
}

func (e Education) trimmed() Education {
	return Education{
		University: strings.TrimSpace(e.University),
		Degree:     strings.TrimSpace(e.Degree),
		Duration:   strings.TrimSpace(e.Duration),
	}
}

func weakDecode(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       stringifyHook,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// stringifyHook turns any non-string value aimed at a string field into text, so one
// oddly shaped field does not drop the whole entry.
func stringifyHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return v, nil
	case []any:
		return strings.Join(coerceStrings(v), ", "), nil
	case map[string]any:
		start, end := coerceString(v["start"]), coerceString(v["end"])
		if start != "" && end != "" {
			return start + " - " + end, nil
		}
		return coerceString(v), nil
	default:
		return coerceString(v), nil
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case float64, bool, int:
		return fmt.Sprintf("%v", val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
