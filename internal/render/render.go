// Package render formats meal plans, grocery lists and reports as
// Telegram-flavoured Markdown for the bot and the command line.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"nutrigenie/internal/planner"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/session"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/tracker"
)

// MaxMessageLen stays below Telegram's 4096 character limit.
const MaxMessageLen = 4000

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// Escape protects model-generated text from being read as Markdown.
func Escape(s string) string {
	return markdownEscaper.Replace(s)
}

// Bar draws a ten-segment progress bar for pct (0-100).
func Bar(pct float64) string {
	filled := int(pct/10 + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}

// Calendar renders the day chips of a plan, marking the active day.
func Calendar(plan *planner.WeeklyPlan, activeDay int) string {
	var sb strings.Builder
	for _, d := range plan.Days {
		marker := "  "
		if d.DayNumber == activeDay {
			marker = "▶ "
		}
		sb.WriteString(fmt.Sprintf("%s%s %d · %.0f kcal\n", marker, Escape(d.ShortName()), d.DayNumber, d.TotalCalories))
	}
	return sb.String()
}

// MealCard renders one meal. index is the number used by /steps and /fav.
func MealCard(m planner.Meal, index int, expanded, favorite bool) string {
	var sb strings.Builder

	star := ""
	if favorite {
		star = " ⭐"
	}
	sb.WriteString(fmt.Sprintf("*%d. %s*%s\n", index, Escape(m.Title), star))
	sb.WriteString(fmt.Sprintf("_%s · %s · %s_\n", Escape(m.Type), Escape(m.Difficulty), Escape(m.CookingTime)))
	sb.WriteString(fmt.Sprintf("🔥 %.0f kcal %s\n", m.Calories, Bar(tracker.EnergyMeter(m.Calories))))
	if m.Description != "" {
		sb.WriteString(Escape(m.Description) + "\n")
	}
	if len(m.Ingredients) > 0 {
		sb.WriteString("🥕 " + Escape(strings.Join(m.Ingredients, ", ")) + "\n")
	}
	if len(m.Alternatives) > 0 {
		sb.WriteString("🔁 " + Escape(strings.Join(m.Alternatives, ", ")) + "\n")
	}
	if expanded {
		sb.WriteString("👩‍🍳 *Steps*\n")
		for i, step := range m.CookingSteps {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, Escape(step)))
		}
	}
	return sb.String()
}

// Day renders the menu of one day.
func Day(d *planner.DayPlan, expanded, favorites map[string]bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Day %d · %s* (%.0f kcal)\n\n", d.DayNumber, Escape(d.DayName), d.TotalCalories))
	for i, m := range d.Meals {
		sb.WriteString(MealCard(m, i+1, expanded[m.Title], favorites[m.Title]))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Plan renders the plan view: tip, calendar and the active day.
func Plan(st session.State, favorites map[string]bool) string {
	if st.Plan == nil {
		msg := "🥗 *No plan yet.* Set your preferences and generate one with /plan."
		if st.Error != "" {
			msg = "❌ " + Escape(st.Error) + "\n\n" + msg
		}
		return msg
	}

	var sb strings.Builder
	if st.Error != "" {
		sb.WriteString("❌ " + Escape(st.Error) + "\n\n")
	}
	sb.WriteString("🗓 *Your Weekly Plan*\n\n")
	if tip := st.Plan.FirstTip(); tip != "" {
		sb.WriteString("💡 _" + Escape(tip) + "_\n\n")
	}
	sb.WriteString(Calendar(st.Plan, st.ActiveDay))
	sb.WriteString("\n")
	if day, ok := st.CurrentDay(); ok {
		sb.WriteString(Day(day, st.Expanded, favorites))
	}
	return sb.String()
}

// Grocery renders the grocery checklist in the model's category order.
func Grocery(categories []shopping.Category) string {
	if len(categories) == 0 {
		return "🛒 _Your grocery list is empty._"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Grocery List* (%d items)\n", shopping.ItemCount(categories)))
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", Escape(c.Category)))
		for _, item := range c.Items {
			sb.WriteString(fmt.Sprintf("☐ %s — %s\n", Escape(item.Name), Escape(item.Quantity)))
		}
	}
	return sb.String()
}

// Analysis renders an intake analysis against the calorie goal.
func Analysis(a *tracker.IntakeAnalysis, goal int) string {
	status := tracker.CompareToGoal(a.TotalCalories, goal)
	split := tracker.SplitMacros(a.Macros, a.TotalCalories)

	var sb strings.Builder
	sb.WriteString("📊 *Daily Intake*\n\n")
	sb.WriteString(fmt.Sprintf("Total: *%.0f kcal* of %d (%s)\n\n", a.TotalCalories, goal, status))
	sb.WriteString(fmt.Sprintf("Protein: %.0fg (%.0f%%)\n", a.Macros.Protein, split.Protein))
	sb.WriteString(fmt.Sprintf("Carbs: %.0fg (%.0f%%)\n", a.Macros.Carbs, split.Carbs))
	sb.WriteString(fmt.Sprintf("Fats: %.0fg (%.0f%%)\n\n", a.Macros.Fats, split.Fats))
	sb.WriteString(Escape(a.Analysis) + "\n")
	if len(a.Suggestions) > 0 {
		sb.WriteString("\n*Suggestions*\n")
		for _, s := range a.Suggestions {
			sb.WriteString("• " + Escape(s) + "\n")
		}
	}
	return sb.String()
}

// Favorites renders the saved meals.
func Favorites(meals []planner.Meal) string {
	if len(meals) == 0 {
		return "⭐ _No saved meals yet._"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⭐ *Saved Meals* (%d)\n\n", len(meals)))
	for i, m := range meals {
		sb.WriteString(MealCard(m, i+1, false, true))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Profile renders the user and their preferences.
func Profile(u session.User, p profile.Preferences) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👤 *%s* (@%s)\n\n", Escape(u.Name), Escape(u.Username)))
	sb.WriteString(fmt.Sprintf("Diet: %s\n", Escape(p.DietType)))
	sb.WriteString(fmt.Sprintf("Calorie goal: %d kcal\n", p.CalorieGoal))
	sb.WriteString(fmt.Sprintf("Meals per day: %d\n", p.MealsPerDay))
	sb.WriteString(fmt.Sprintf("Allergies: %s\n", Escape(p.AllergiesOrNone())))
	sb.WriteString(fmt.Sprintf("Water goal: %d ml\n", p.WaterGoal))
	return sb.String()
}

// Water renders hydration progress.
func Water(s tracker.WaterStatus) string {
	return fmt.Sprintf("💧 %d / %d ml %s %d%%", s.Current, s.Goal, Bar(float64(s.Percent)), s.Percent)
}

// Chunks splits text on line boundaries into pieces no longer than max.
// A single longer line is cut on a rune boundary.
func Chunks(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > max {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut := runeCut(line, max)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > max {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// runeCut returns the largest index <= max that starts a rune in s. A first
// rune wider than max is kept whole.
func runeCut(s string, max int) int {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		_, cut = utf8.DecodeRuneInString(s)
	}
	return cut
}
