package planner

import "nutrigenie/internal/llm"

// MealSchema describes one meal; every field is required.
func MealSchema() *llm.Schema {
	return llm.Object(map[string]*llm.Schema{
		"type":         llm.String(),
		"title":        llm.String(),
		"description":  llm.String(),
		"calories":     llm.Number(),
		"ingredients":  llm.ArrayOf(llm.String()),
		"alternatives": llm.ArrayOf(llm.String()),
		"cookingSteps": llm.ArrayOf(llm.String()),
		"cookingTime":  llm.String(),
		"difficulty":   llm.String(DifficultyEasy, DifficultyMedium, DifficultyHard),
	},
		"type", "title", "description", "calories", "ingredients",
		"alternatives", "cookingSteps", "cookingTime", "difficulty",
	)
}

// WeeklyPlanSchema is the response schema of a meal plan request.
func WeeklyPlanSchema() *llm.Schema {
	day := llm.Object(map[string]*llm.Schema{
		"dayNumber":     llm.Integer(),
		"dayName":       llm.String(),
		"meals":         llm.ArrayOf(MealSchema()),
		"totalCalories": llm.Number(),
	}, "dayNumber", "dayName", "meals", "totalCalories")

	return llm.Object(map[string]*llm.Schema{
		"weeklyPlan":    llm.ArrayOf(day),
		"nutritionTips": llm.ArrayOf(llm.String()),
	}, "weeklyPlan", "nutritionTips")
}
