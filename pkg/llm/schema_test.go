package llm

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

var testQuestionGroup = Schema{Fields: []Field{
	Required("target", KindString),
	Required("questions", KindStringList),
}}

var testDirecting = Schema{Fields: []Field{
	Required("issues", KindStringList),
	ObjectList("questions", testQuestionGroup),
	Required("angles", KindStringList),
	Required("interpretation", KindString),
	Required("additionalPoints", KindStringList),
	Required("checklist", KindStringList),
}}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr
}

func TestValidate_Complete(t *testing.T) {
	value := Extract(`{
		"issues": ["a"],
		"questions": [{"target": "경찰", "questions": ["q1"]}],
		"angles": [],
		"interpretation": "x",
		"additionalPoints": ["p"],
		"checklist": ["c"],
		"extra": 1
	}`).Value

	assert.Equal(t, nil, Validate(value, testDirecting))
}

func TestValidate_ReportsFirstMissingField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "only issues", input: `{"issues":["a"]}`, field: "questions"},
		{name: "empty object", input: `{}`, field: "issues"},
		{
			name:  "missing checklist",
			input: `{"issues":[],"questions":[],"angles":[],"interpretation":"","additionalPoints":[]}`,
			field: "checklist",
		},
		{
			name:  "missing interpretation after angles",
			input: `{"issues":[],"questions":[],"angles":[],"additionalPoints":[],"checklist":[]}`,
			field: "interpretation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := validationError(t, Validate(Extract(tt.input).Value, testDirecting))
			assert.Equal(t, tt.field, verr.MissingField)
			assert.Equal(t, "$", verr.Path)
		})
	}
}

func TestValidate_ScalarInListSlot(t *testing.T) {
	value := Extract(`{"issues":"not a list","questions":[],"angles":[],"interpretation":"","additionalPoints":[],"checklist":[]}`).Value

	verr := validationError(t, Validate(value, testDirecting))
	assert.Equal(t, "issues", verr.MissingField)
	assert.Equal(t, "expected list of strings, got string", verr.Reason)
}

func TestValidate_NonStringElement(t *testing.T) {
	value := Extract(`{"issues":["a",3],"questions":[],"angles":[],"interpretation":"","additionalPoints":[],"checklist":[]}`).Value

	verr := validationError(t, Validate(value, testDirecting))
	assert.Equal(t, "issues", verr.MissingField)
}

func TestValidate_NullRequiredField(t *testing.T) {
	value := Extract(`{"issues":[],"questions":[],"angles":[],"interpretation":null,"additionalPoints":[],"checklist":[]}`).Value

	verr := validationError(t, Validate(value, testDirecting))
	assert.Equal(t, "interpretation", verr.MissingField)
	assert.Equal(t, "expected string, got null", verr.Reason)
}

func TestValidate_NestedMissingFieldAbortsRecord(t *testing.T) {
	value := Extract(`{
		"issues": [],
		"questions": [
			{"target": "경찰", "questions": ["q1"]},
			{"target": "목격자"}
		],
		"angles": [],
		"interpretation": "",
		"additionalPoints": [],
		"checklist": []
	}`).Value

	verr := validationError(t, Validate(value, testDirecting))
	assert.Equal(t, "questions", verr.MissingField)
	assert.Equal(t, "$.questions[1]", verr.Path)
}

func TestValidate_NestedElementNotObject(t *testing.T) {
	value := Extract(`{"issues":[],"questions":["plain"],"angles":[],"interpretation":"","additionalPoints":[],"checklist":[]}`).Value

	verr := validationError(t, Validate(value, testDirecting))
	assert.Equal(t, "$.questions[0]", verr.Path)
	assert.Equal(t, "expected object, got string", verr.Reason)
}

func TestValidate_TopLevelArray(t *testing.T) {
	verr := validationError(t, Validate(Extract(`[{"issues":[]}]`).Value, testDirecting))
	assert.Equal(t, "$", verr.Path)
	assert.Equal(t, "", verr.MissingField)
}

func TestValidate_OptionalField(t *testing.T) {
	schema := Schema{Fields: []Field{
		Required("title", KindString),
		Optional("framing", KindString),
	}}

	assert.Equal(t, nil, Validate(Extract(`{"title":"t"}`).Value, schema))
	assert.Equal(t, nil, Validate(Extract(`{"title":"t","framing":null}`).Value, schema))
	assert.Equal(t, nil, Validate(Extract(`{"title":"t","framing":"f"}`).Value, schema))

	verr := validationError(t, Validate(Extract(`{"title":"t","framing":["f"]}`).Value, schema))
	assert.Equal(t, "framing", verr.MissingField)
}

func TestSchema_FieldNames(t *testing.T) {
	assert.Equal(t, []string{"issues", "questions", "angles", "interpretation", "additionalPoints", "checklist"}, testDirecting.FieldNames())
}
