package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func testSchema() *Schema {
	return Object(map[string]*Schema{
		"name":  String(),
		"day":   Integer(),
		"kcal":  Number(),
		"level": String("Easy", "Hard"),
		"tags":  ArrayOf(String()),
	}, "name", "day", "kcal", "level", "tags")
}

func decodeRaw(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("bad fixture %s: %v", s, err)
	}
	return v
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"Valid", `{"name":"a","day":1,"kcal":12.5,"level":"Easy","tags":["x"],"extra":true}`, ""},
		{"IntegralFloatIsInteger", `{"name":"a","day":2.0,"kcal":1,"level":"Hard","tags":[]}`, ""},
		{"MissingField", `{"name":"a","day":1,"kcal":1,"level":"Easy"}`, `missing required field "tags"`},
		{"WrongType", `{"name":"a","day":"one","kcal":1,"level":"Easy","tags":[]}`, "$.day: expected integer"},
		{"FractionalInteger", `{"name":"a","day":1.5,"kcal":1,"level":"Easy","tags":[]}`, "$.day: expected integer"},
		{"EnumViolation", `{"name":"a","day":1,"kcal":1,"level":"Medium","tags":[]}`, `"Medium" is not one of`},
		{"NullField", `{"name":null,"day":1,"kcal":1,"level":"Easy","tags":[]}`, "got null"},
		{"NestedItem", `{"name":"a","day":1,"kcal":1,"level":"Easy","tags":["x",3]}`, "$.tags[1]: expected string"},
		{"NotAnObject", `[1,2]`, "$: expected object"},
	}

	schema := testSchema()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(decodeRaw(t, tt.input))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSchemaJSON(t *testing.T) {
	out := testSchema().JSON()
	for _, want := range []string{`"type": "object"`, `"enum": [`, `"required": [`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected schema JSON to contain %s, got:\n%s", want, out)
		}
	}
}
