package tracker

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"nutrigenie/internal/llm"
	"nutrigenie/internal/shared"
)

//go:embed tracking_prompt.md
var trackingPrompt string

var promptTemplate = template.Must(template.New("IntakeTracker").Parse(trackingPrompt))

// ErrInvalidFormat is the message of every malformed analysis reply.
const ErrInvalidFormat = "Failed to analyze intake."

// ErrEmptyInput is returned when no intake was described.
var ErrEmptyInput = errors.New("intake description is empty")

// Macros are grams of each macronutrient.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// IntakeAnalysis is the model's estimate of a day's food intake.
type IntakeAnalysis struct {
	TotalCalories float64  `json:"totalCalories"`
	Macros        Macros   `json:"macros"`
	Analysis      string   `json:"analysis"`
	Suggestions   []string `json:"suggestions"`
}

// Tracker estimates calories and macros from a free-text intake description.
type Tracker struct {
	gen llm.StructuredGenerator
}

func NewTracker(gen llm.StructuredGenerator) *Tracker {
	return &Tracker{gen: gen}
}

// AnalysisSchema is the response schema of an intake request.
func AnalysisSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"totalCalories": llm.Number(),
		"macros": llm.Object(map[string]*llm.Schema{
			"protein": llm.Number(),
			"carbs":   llm.Number(),
			"fats":    llm.Number(),
		}, "protein", "carbs", "fats"),
		"analysis":    llm.String(),
		"suggestions": llm.ArrayOf(llm.String()),
	}, "totalCalories", "macros", "analysis", "suggestions")
}

// RequestIntakeAnalysis estimates freeText against calorieGoal.
func (t *Tracker) RequestIntakeAnalysis(ctx context.Context, freeText string, calorieGoal int) (*IntakeAnalysis, shared.AgentMeta, error) {
	start := time.Now()
	freeText = strings.TrimSpace(freeText)
	if freeText == "" {
		return nil, shared.AgentMeta{AgentName: shared.AgentIntakeTracker}, ErrEmptyInput
	}

	prompt, err := BuildPrompt(freeText, calorieGoal)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: shared.AgentIntakeTracker}, err
	}

	resp, err := t.gen.GenerateStructured(ctx, prompt, AnalysisSchema())
	if err != nil {
		meta := shared.NewAgentMeta(shared.AgentIntakeTracker, resp.Usage, start, false)
		return nil, meta, fmt.Errorf("failed to analyze intake: %w", err)
	}

	var analysis IntakeAnalysis
	if err := llm.DecodeOrFormatError(resp.Content, AnalysisSchema(), &analysis, ErrInvalidFormat); err != nil {
		return nil, shared.NewAgentMeta(shared.AgentIntakeTracker, resp.Usage, start, false), err
	}

	return &analysis, shared.NewAgentMeta(shared.AgentIntakeTracker, resp.Usage, start, true), nil
}

// BuildPrompt renders the intake prompt.
func BuildPrompt(freeText string, calorieGoal int) (string, error) {
	data := struct {
		Intake      string
		CalorieGoal int
	}{Intake: freeText, CalorieGoal: calorieGoal}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render tracking prompt: %w", err)
	}
	return buf.String(), nil
}
