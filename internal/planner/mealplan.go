package planner

// Difficulty of preparing a meal.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// DaysPerPlan is the fixed length of a weekly plan.
const DaysPerPlan = 7

// Meal is a single suggested dish. Its title identifies it in favorites.
type Meal struct {
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Calories     float64  `json:"calories" validate:"gte=0"`
	Ingredients  []string `json:"ingredients"`
	Alternatives []string `json:"alternatives"`
	CookingSteps []string `json:"cookingSteps"`
	CookingTime  string   `json:"cookingTime"`
	Difficulty   string   `json:"difficulty" validate:"oneof=Easy Medium Hard"`
}

// DayPlan is one day of the weekly plan. TotalCalories is the model's own
// figure and is not checked against the meals.
type DayPlan struct {
	DayNumber     int     `json:"dayNumber" validate:"gte=1,lte=7"`
	DayName       string  `json:"dayName"`
	TotalCalories float64 `json:"totalCalories" validate:"gte=0"`
	Meals         []Meal  `json:"meals" validate:"dive"`
}

// WeeklyPlan is the result of a meal plan request.
type WeeklyPlan struct {
	Days          []DayPlan `json:"weeklyPlan" validate:"len=7,unique=DayNumber,dive"`
	NutritionTips []string  `json:"nutritionTips"`
}

// MealCalories sums the calories of the day's meals.
func (d DayPlan) MealCalories() float64 {
	var sum float64
	for _, m := range d.Meals {
		sum += m.Calories
	}
	return sum
}

// ShortName is the first three letters of the day name, e.g. "Mon".
func (d DayPlan) ShortName() string {
	r := []rune(d.DayName)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// Day returns the plan for dayNumber.
func (p *WeeklyPlan) Day(dayNumber int) (*DayPlan, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Days {
		if p.Days[i].DayNumber == dayNumber {
			return &p.Days[i], true
		}
	}
	return nil, false
}

// FirstTip is the tip shown alongside the plan, empty when there is none.
func (p *WeeklyPlan) FirstTip() string {
	if p == nil || len(p.NutritionTips) == 0 {
		return ""
	}
	return p.NutritionTips[0]
}

// FindMeal looks a meal up by title across the whole week.
func (p *WeeklyPlan) FindMeal(title string) (Meal, bool) {
	if p == nil {
		return Meal{}, false
	}
	for _, d := range p.Days {
		for _, m := range d.Meals {
			if m.Title == title {
				return m, true
			}
		}
	}
	return Meal{}, false
}
