package shopping

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"nutrigenie/internal/llm"
	"nutrigenie/internal/planner"
	"nutrigenie/internal/shared"
)

//go:embed grocery_prompt.md
var groceryPrompt string

var promptTemplate = template.Must(template.New("GroceryAssistant").Parse(groceryPrompt))

// ErrInvalidFormat is the message of every malformed grocery reply.
const ErrInvalidFormat = "Failed to generate grocery list."

// ErrEmptyInput is returned when there is nothing to build a list from.
var ErrEmptyInput = errors.New("grocery input is empty")

// Assistant turns a meal plan or free text into a categorized grocery list.
type Assistant struct {
	gen llm.StructuredGenerator
}

func NewAssistant(gen llm.StructuredGenerator) *Assistant {
	return &Assistant{gen: gen}
}

// ListSchema is the response schema of a grocery request.
func ListSchema() *llm.Schema {
	item := llm.Object(map[string]*llm.Schema{
		"name":     llm.String(),
		"quantity": llm.String(),
	}, "name", "quantity")

	category := llm.Object(map[string]*llm.Schema{
		"category": llm.String(Categories...),
		"items":    llm.ArrayOf(item),
	}, "category", "items")

	return llm.Object(map[string]*llm.Schema{
		"categories": llm.ArrayOf(category),
	}, "categories")
}

// RequestGroceryList builds a grocery list from planText, which may be a
// serialized WeeklyPlan or any text describing meals.
func (a *Assistant) RequestGroceryList(ctx context.Context, planText string) ([]Category, shared.AgentMeta, error) {
	start := time.Now()
	if strings.TrimSpace(planText) == "" {
		return nil, shared.AgentMeta{AgentName: shared.AgentGroceryAssistant}, ErrEmptyInput
	}

	prompt, err := BuildPrompt(planText)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: shared.AgentGroceryAssistant}, err
	}

	resp, err := a.gen.GenerateStructured(ctx, prompt, ListSchema())
	if err != nil {
		meta := shared.NewAgentMeta(shared.AgentGroceryAssistant, resp.Usage, start, false)
		return nil, meta, fmt.Errorf("failed to generate grocery list: %w", err)
	}

	var list List
	if err := llm.DecodeOrFormatError(resp.Content, ListSchema(), &list, ErrInvalidFormat); err != nil {
		return nil, shared.NewAgentMeta(shared.AgentGroceryAssistant, resp.Usage, start, false), err
	}

	return list.Categories, shared.NewAgentMeta(shared.AgentGroceryAssistant, resp.Usage, start, true), nil
}

// BuildPrompt renders the grocery prompt around planText.
func BuildPrompt(planText string) (string, error) {
	data := struct {
		Categories string
		PlanText   string
	}{
		Categories: strings.Join(Categories, ", "),
		PlanText:   planText,
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render grocery prompt: %w", err)
	}
	return buf.String(), nil
}

// PlanText serializes a weekly plan as grocery input.
func PlanText(plan *planner.WeeklyPlan) (string, error) {
	if plan == nil {
		return "", ErrEmptyInput
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal meal plan: %w", err)
	}
	return string(data), nil
}
