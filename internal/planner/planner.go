package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"nutrigenie/internal/llm"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/shared"

	"github.com/go-playground/validator/v10"
)

//go:embed meal_planner_prompt.md
var mealPlannerPrompt string

var promptTemplate = template.Must(template.New("MealPlanner").Parse(mealPlannerPrompt))

// ErrInvalidFormat is the message of every malformed meal plan reply.
const ErrInvalidFormat = "The AI provided an invalid response format."

// Planner requests weekly meal plans from the model.
type Planner struct {
	gen      llm.StructuredGenerator
	validate *validator.Validate
}

// NewPlanner creates a new Planner instance.
func NewPlanner(gen llm.StructuredGenerator) *Planner {
	return &Planner{
		gen:      gen,
		validate: validator.New(),
	}
}

// RequestMealPlan asks for a 7-day plan matching prefs. A reply that is not
// a well-formed 7-day plan is reported as *llm.FormatError; no partial plan
// is ever returned.
func (p *Planner) RequestMealPlan(ctx context.Context, prefs profile.Preferences) (*WeeklyPlan, shared.AgentMeta, error) {
	start := time.Now()

	prompt, err := BuildPrompt(prefs)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: shared.AgentMealPlanner}, err
	}

	resp, err := p.gen.GenerateStructured(ctx, prompt, WeeklyPlanSchema())
	if err != nil {
		meta := shared.NewAgentMeta(shared.AgentMealPlanner, resp.Usage, start, false)
		return nil, meta, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	var plan WeeklyPlan
	if err := llm.DecodeOrFormatError(resp.Content, WeeklyPlanSchema(), &plan, ErrInvalidFormat); err != nil {
		return nil, shared.NewAgentMeta(shared.AgentMealPlanner, resp.Usage, start, false), err
	}

	if err := p.validate.Struct(plan); err != nil {
		meta := shared.NewAgentMeta(shared.AgentMealPlanner, resp.Usage, start, false)
		return nil, meta, &llm.FormatError{Message: ErrInvalidFormat, Raw: resp.Content, Err: err}
	}

	return &plan, shared.NewAgentMeta(shared.AgentMealPlanner, resp.Usage, start, true), nil
}

// BuildPrompt renders the meal plan prompt for prefs.
func BuildPrompt(prefs profile.Preferences) (string, error) {
	data := struct {
		DietType    string
		CalorieGoal int
		MealsPerDay int
		Allergies   string
	}{
		DietType:    prefs.DietType,
		CalorieGoal: prefs.CalorieGoal,
		MealsPerDay: prefs.MealsPerDay,
		Allergies:   prefs.AllergiesOrNone(),
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render meal plan prompt: %w", err)
	}
	return buf.String(), nil
}
