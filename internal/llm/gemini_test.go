package llm

import (
	"context"
	"os"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestToGenaiSchema(t *testing.T) {
	schema := Object(map[string]*Schema{
		"difficulty": String("Easy", "Medium", "Hard"),
		"steps":      ArrayOf(String()),
		"calories":   Number(),
		"day":        Integer(),
	}, "difficulty", "steps")

	got := toGenaiSchema(schema)
	if got.Type != genai.TypeObject {
		t.Fatalf("Expected object type, got %v", got.Type)
	}
	if len(got.Required) != 2 {
		t.Errorf("Expected 2 required fields, got %v", got.Required)
	}
	if d := got.Properties["difficulty"]; d.Type != genai.TypeString || len(d.Enum) != 3 || d.Format != "enum" {
		t.Errorf("Unexpected difficulty schema %+v", d)
	}
	if s := got.Properties["steps"]; s.Type != genai.TypeArray || s.Items == nil || s.Items.Type != genai.TypeString {
		t.Errorf("Unexpected steps schema %+v", s)
	}
	if got.Properties["calories"].Type != genai.TypeNumber || got.Properties["day"].Type != genai.TypeInteger {
		t.Error("Unexpected numeric types")
	}
	if toGenaiSchema(nil) != nil {
		t.Error("Expected nil for a nil schema")
	}
}

func TestGeminiClientLive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live Gemini call in short mode")
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := NewGeminiClient(ctx, apiKey, "gemini-3-flash-preview", 0)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	schema := Object(map[string]*Schema{"fruit": String()}, "fruit")
	resp, err := client.GenerateStructured(ctx, "Name one fruit.", schema)
	if err != nil {
		t.Fatalf("GenerateStructured failed: %v", err)
	}

	var out struct {
		Fruit string `json:"fruit"`
	}
	if err := Decode(resp.Content, schema, &out); err != nil {
		t.Fatalf("Decode failed: %v (raw: %s)", err, resp.Content)
	}
	if out.Fruit == "" {
		t.Error("Expected a fruit")
	}
}
