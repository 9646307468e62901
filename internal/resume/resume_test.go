package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullAnswer(t *testing.T) {
	raw := `{
		"name": " Nguyen Van A ",
		"email": "a@example.com",
		"phone": null,
		"skills": ["Python", " Django ", "", 42],
		"experience": [
			{"position": "Backend Engineer", "company": "Acme", "duration": "Jan 2020 - Dec 2021"},
			{"position": null, "company": "Beta", "duration": 2019},
			"not an object"
		],
		"education": [
			{"university": "HUST", "degree": "Bachelor of Computer Science", "duration": "2014 - 2018"}
		]
	}`

	r, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Nguyen Van A", r.Name)
	assert.Equal(t, "a@example.com", r.Email)
	assert.Empty(t, r.Phone)
	assert.Equal(t, []string{"Python", "Django", "42"}, r.Skills)

	require.Len(t, r.Experience, 2)
	assert.Equal(t, Experience{Position: "Backend Engineer", Company: "Acme", Duration: "Jan 2020 - Dec 2021"}, r.Experience[0])
	assert.Equal(t, Experience{Company: "Beta", Duration: "2019"}, r.Experience[1])

	require.Len(t, r.Education, 1)
	assert.Equal(t, "Bachelor of Computer Science", r.Education[0].Degree)
}

func TestParseKeepsAbsentListsNil(t *testing.T) {
	r, err := Parse([]byte(`{"name": "x", "skills": "python", "experience": {"a": 1}}`))
	require.NoError(t, err)

	assert.Nil(t, r.Skills)
	assert.Nil(t, r.Experience)
	assert.Nil(t, r.Education)
}

func TestParseKeepsEmptyListsEmpty(t *testing.T) {
	r, err := Parse([]byte(`{"skills": [], "experience": [], "education": []}`))
	require.NoError(t, err)

	assert.NotNil(t, r.Skills)
	assert.Empty(t, r.Skills)
	assert.NotNil(t, r.Experience)
	assert.NotNil(t, r.Education)
}

func TestParseToleratesOddlyTypedEntryFields(t *testing.T) {
	raw := `{
		"name": "Le C",
		"skills": ["Go"],
		"experience": [
			{"position": "Dev", "company": {"name": "Acme"}, "duration": {"start": "Jan 2020", "end": "Dec 2021"}}
		],
		"education": [
			{"university": "HUST", "degree": ["Bachelor", "Master"], "duration": 2018}
		]
	}`

	r, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "Le C", r.Name)
	assert.Equal(t, []string{"Go"}, r.Skills)

	require.Len(t, r.Experience, 1)
	assert.Equal(t, "Dev", r.Experience[0].Position)
	assert.Equal(t, `{"name":"Acme"}`, r.Experience[0].Company)
	assert.Equal(t, "Jan 2020 - Dec 2021", r.Experience[0].Duration)

	require.Len(t, r.Education, 1)
	assert.Equal(t, "Bachelor, Master", r.Education[0].Degree)
	assert.Equal(t, "2018", r.Education[0].Duration)
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `"text"`, `null`, `not json`} {
		_, err := Parse([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestJSONRoundTripPreservesNilLists(t *testing.T) {
	original := &Resume{Name: "A", Skills: []string{"go"}}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Resume
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.Skills, restored.Skills)
	assert.Nil(t, restored.Experience)
	assert.Nil(t, restored.Education)
}
