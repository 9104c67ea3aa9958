package tracker

import (
	"fmt"
	"math"
)

const (
	StatusOver  = "Over"
	StatusUnder = "Under"
)

// GoalStatus compares a day's total against the calorie goal.
type GoalStatus struct {
	Difference float64 `json:"difference"`
	Label      string  `json:"label"`
}

func (s GoalStatus) String() string {
	return fmt.Sprintf("%.0f %s", s.Difference, s.Label)
}

// CompareToGoal reports |goal - total|, labelled Over only when total
// exceeds goal. Meeting the goal exactly counts as Under.
func CompareToGoal(total float64, goal int) GoalStatus {
	label := StatusUnder
	if total > float64(goal) {
		label = StatusOver
	}
	return GoalStatus{Difference: math.Abs(float64(goal) - total), Label: label}
}

// MacroSplit is the share of energy (percent) from each macronutrient.
type MacroSplit struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// Energy per gram of each macronutrient.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// SplitMacros converts grams into percentages of totalCalories. A zero
// total is treated as 1 to avoid dividing by zero.
func SplitMacros(m Macros, totalCalories float64) MacroSplit {
	total := totalCalories
	if total == 0 {
		total = 1
	}
	return MacroSplit{
		Protein: m.Protein * kcalPerGramProtein / total * 100,
		Carbs:   m.Carbs * kcalPerGramCarbs / total * 100,
		Fats:    m.Fats * kcalPerGramFat / total * 100,
	}
}

// EnergyMeter is the fill level (0-100) of a meal's energy bar, relative
// to an 800 kcal meal.
func EnergyMeter(calories float64) float64 {
	pct := calories / 800 * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
