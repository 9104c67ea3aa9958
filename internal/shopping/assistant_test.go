package shopping

import (
	"context"
	"errors"
	"strings"
	"testing"

	"nutrigenie/internal/llm"
	"nutrigenie/internal/planner"
)

type MockGenerator struct {
	Content    string
	Err        error
	LastPrompt string
	Calls      int
}

func (m *MockGenerator) GenerateStructured(ctx context.Context, prompt string, schema *llm.Schema) (llm.ContentResponse, error) {
	m.Calls++
	m.LastPrompt = prompt
	if m.Err != nil {
		return llm.ContentResponse{}, m.Err
	}
	return llm.ContentResponse{Content: m.Content}, nil
}

const groceryReply = `{"categories": [
	{"category": "Vegetables", "items": [{"name": "Spinach", "quantity": "2 bunches"}, {"name": "Carrots", "quantity": "1kg"}]},
	{"category": "Spices & Pantry", "items": [{"name": "Cumin", "quantity": "1 jar"}]}
]}`

func TestRequestGroceryList(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		gen := &MockGenerator{Content: groceryReply}
		categories, meta, err := NewAssistant(gen).RequestGroceryList(ctx, "Lentil soup on Monday")
		if err != nil {
			t.Fatalf("RequestGroceryList failed: %v", err)
		}
		if len(categories) != 2 || categories[0].Category != CategoryVegetables {
			t.Fatalf("Unexpected categories %+v", categories)
		}
		if ItemCount(categories) != 3 {
			t.Errorf("Expected 3 items, got %d", ItemCount(categories))
		}
		if !meta.Success {
			t.Error("Expected a successful meta")
		}
		for _, want := range []string{"1 person for 7 days", "Dairy & Alternatives", "Lentil soup on Monday"} {
			if !strings.Contains(gen.LastPrompt, want) {
				t.Errorf("Expected prompt to contain %q", want)
			}
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		gen := &MockGenerator{Content: groceryReply}
		_, _, err := NewAssistant(gen).RequestGroceryList(ctx, "   ")
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Expected ErrEmptyInput, got %v", err)
		}
		if gen.Calls != 0 {
			t.Error("Expected no model call for empty input")
		}
	})

	for name, content := range map[string]string{
		"Malformed":       `{"categories": [{"category": "Vegetables"`,
		"UnknownCategory": `{"categories": [{"category": "Snacks", "items": []}]}`,
		"MissingQuantity": `{"categories": [{"category": "Fruit", "items": [{"name": "Apple"}]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := NewAssistant(&MockGenerator{Content: content}).RequestGroceryList(ctx, "plan")
			var formatErr *llm.FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Expected *llm.FormatError, got %T (%v)", err, err)
			}
			if formatErr.Message != ErrInvalidFormat {
				t.Errorf("Unexpected message %q", formatErr.Message)
			}
		})
	}

	t.Run("TransportError", func(t *testing.T) {
		_, meta, err := NewAssistant(&MockGenerator{Err: errors.New("timeout")}).RequestGroceryList(ctx, "plan")
		if err == nil || meta.Success {
			t.Errorf("Expected a failed call, got err=%v meta=%+v", err, meta)
		}
	})
}

func TestPlanText(t *testing.T) {
	if _, err := PlanText(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for a nil plan, got %v", err)
	}

	plan := &planner.WeeklyPlan{
		Days: []planner.DayPlan{{DayNumber: 1, DayName: "Monday", Meals: []planner.Meal{{Title: "Oats"}}}},
	}
	text, err := PlanText(plan)
	if err != nil {
		t.Fatalf("PlanText failed: %v", err)
	}
	if !strings.Contains(text, `"weeklyPlan"`) || !strings.Contains(text, "Oats") {
		t.Errorf("Unexpected plan text %s", text)
	}
}
