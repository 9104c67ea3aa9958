package llm

import (
	"errors"
	"testing"
)

type record struct {
	Name  string   `json:"name"`
	Day   int      `json:"day"`
	Kcal  float64  `json:"kcal"`
	Level string   `json:"level"`
	Tags  []string `json:"tags"`
}

func TestDecode(t *testing.T) {
	valid := `{"name":"soup","day":3,"kcal":420,"level":"Easy","tags":["warm"]}`

	t.Run("Plain", func(t *testing.T) {
		var r record
		if err := Decode(valid, testSchema(), &r); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if r.Name != "soup" || r.Day != 3 || r.Kcal != 420 || len(r.Tags) != 1 {
			t.Errorf("Unexpected record: %+v", r)
		}
	})

	t.Run("CodeFence", func(t *testing.T) {
		var r record
		if err := Decode("```json\n"+valid+"\n```", testSchema(), &r); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if r.Name != "soup" {
			t.Errorf("Expected name 'soup', got %q", r.Name)
		}
	})

	t.Run("SurroundingProse", func(t *testing.T) {
		var r record
		if err := Decode("Here you go: "+valid+" Enjoy!", testSchema(), &r); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
	})

	for name, input := range map[string]string{
		"Empty":     "",
		"NotJSON":   "sorry, I cannot help with that",
		"Truncated": `{"name":"soup","day":3`,
		"Schema":    `{"name":"soup"}`,
	} {
		t.Run(name, func(t *testing.T) {
			var r record
			if err := Decode(input, testSchema(), &r); err == nil {
				t.Errorf("Expected an error for %q", input)
			}
		})
	}
}

func TestDecodeOrFormatError(t *testing.T) {
	var r record
	err := DecodeOrFormatError("not json", testSchema(), &r, "The AI provided an invalid response format.")

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected *FormatError, got %T (%v)", err, err)
	}
	if formatErr.Message != "The AI provided an invalid response format." {
		t.Errorf("Unexpected message %q", formatErr.Message)
	}
	if formatErr.Raw != "not json" {
		t.Errorf("Expected raw reply to be kept, got %q", formatErr.Raw)
	}
	if formatErr.Unwrap() == nil {
		t.Error("Expected an underlying cause")
	}
}
