package profile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Diet categories offered to the user.
const (
	DietStandard      = "Standard (Everything)"
	DietVegetarian    = "Vegetarian"
	DietVegan         = "Vegan"
	DietKeto          = "Keto"
	DietPaleo         = "Paleo"
	DietMediterranean = "Mediterranean"
	DietPescatarian   = "Pescatarian"
)

// Diets lists every accepted diet category in display order.
var Diets = []string{
	DietStandard,
	DietVegetarian,
	DietVegan,
	DietKeto,
	DietPaleo,
	DietMediterranean,
	DietPescatarian,
}

// WaterGoalOptions are the daily hydration targets (ml) offered in settings.
var WaterGoalOptions = []int{1500, 2000, 2500, 3000}

const (
	MinCalorieGoal = 1000
	MaxCalorieGoal = 5000
	MinMealsPerDay = 2
	MaxMealsPerDay = 5
)

// Preferences are the user's dietary settings. JSON names are the
// persisted format and must not change.
type Preferences struct {
	DietType    string `json:"dietType" validate:"required,diet"`
	CalorieGoal int    `json:"calorieGoal" validate:"gte=1000,lte=5000"`
	MealsPerDay int    `json:"mealsPerDay" validate:"gte=2,lte=5"`
	Allergies   string `json:"allergies"`
	WaterGoal   int    `json:"waterGoal" validate:"gt=0"`
}

// DefaultPreferences returns the settings used before the user saves any.
func DefaultPreferences() Preferences {
	return Preferences{
		DietType:    DietVegetarian,
		CalorieGoal: 2000,
		MealsPerDay: 3,
		Allergies:   "",
		WaterGoal:   2000,
	}
}

// Normalize clamps numeric fields into their accepted ranges and fills
// empty or non-positive values with defaults. Unknown diets are left for
// Validate to report.
func (p Preferences) Normalize() Preferences {
	def := DefaultPreferences()

	p.DietType = strings.TrimSpace(p.DietType)
	if p.DietType == "" {
		p.DietType = def.DietType
	}
	p.CalorieGoal = clamp(p.CalorieGoal, MinCalorieGoal, MaxCalorieGoal)
	p.MealsPerDay = clamp(p.MealsPerDay, MinMealsPerDay, MaxMealsPerDay)
	p.Allergies = strings.TrimSpace(p.Allergies)
	if p.WaterGoal <= 0 {
		p.WaterGoal = def.WaterGoal
	}
	return p
}

// AllergiesOrNone is the allergy text as it appears in prompts.
func (p Preferences) AllergiesOrNone() string {
	if p.Allergies == "" {
		return "None"
	}
	return p.Allergies
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("diet", func(fl validator.FieldLevel) bool {
		return IsDiet(fl.Field().String())
	})
	return v
}

// Validate checks the preferences against their tags.
func (p Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

// IsDiet reports whether name is one of the accepted diet categories.
func IsDiet(name string) bool {
	for _, d := range Diets {
		if d == name {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
