package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"nutrigenie/internal/favorites"
	"nutrigenie/internal/planner"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/render"
	"nutrigenie/internal/session"
)

const helpText = `🥗 *NutriGenie*

/login <user> <password> [name] - start a session
/plan - generate your weekly meal plan
/day <1-7> - show a day of the plan
/steps <n> - show or hide the cooking steps of meal n
/fav <n> - save or remove meal n
/grocery [meals or link] - build a grocery list
/track <what you ate> - analyze today's intake
/saved - your saved meals
/profile - your settings
/set <diet|calories|meals|allergies|water|name|username> <value>
/water [+250|-250|reset] - log water
/logout - end the session`

func (b *Bot) handleLogin(sessionID string, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.reply(chatID, "Usage: /login <user> <password> [name]")
		return
	}

	st, err := b.app.Login(sessionID, fields[0], fields[1], strings.Join(fields[2:], " "))
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, fmt.Sprintf("👋 Welcome, *%s*! Send /plan to get your weekly menu.", render.Escape(st.User.Name)))
}

func (b *Bot) handlePlan(ctx context.Context, sessionID string, chatID int64) {
	if _, err := b.app.State(sessionID); err != nil {
		b.replyError(chatID, err)
		return
	}

	messageID := b.status(chatID, "🧑‍🍳 *Thinking...*\n(Generating your weekly plan)")
	if _, err := b.app.GeneratePlan(ctx, sessionID, nil); err != nil {
		b.replace(chatID, messageID, "❌ "+render.Escape(userMessage(err)))
		return
	}
	b.replace(chatID, messageID, b.planView(ctx, sessionID))
}

func (b *Bot) handleDay(ctx context.Context, sessionID string, chatID int64, args string) {
	day, err := strconv.Atoi(args)
	if err != nil {
		b.reply(chatID, "Usage: /day <1-7>")
		return
	}
	if err := b.app.SetView(sessionID, string(session.ViewPlan)); err != nil {
		b.replyError(chatID, err)
		return
	}
	if err := b.app.SelectDay(sessionID, day); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, b.planView(ctx, sessionID))
}

func (b *Bot) handleSteps(ctx context.Context, sessionID string, chatID int64, args string) {
	meal, err := b.mealAt(sessionID, args)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if _, err := b.app.ToggleSteps(sessionID, meal.Title); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, b.planView(ctx, sessionID))
}

func (b *Bot) handleFavorite(ctx context.Context, sessionID string, chatID int64, args string) {
	meal, err := b.mealAt(sessionID, args)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	saved, err := b.app.ToggleFavorite(ctx, sessionID, meal)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if saved {
		b.reply(chatID, fmt.Sprintf("⭐ Saved *%s*.", render.Escape(meal.Title)))
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed *%s* from your saved meals.", render.Escape(meal.Title)))
}

func (b *Bot) handleGrocery(ctx context.Context, sessionID string, chatID int64, args string) {
	if _, err := b.app.State(sessionID); err != nil {
		b.replyError(chatID, err)
		return
	}

	messageID := b.status(chatID, "🛒 *Organizing your grocery list...*")
	categories, err := b.app.BuildGroceryList(ctx, sessionID, args)
	if err != nil {
		b.replace(chatID, messageID, "❌ "+render.Escape(userMessage(err)))
		return
	}
	b.replace(chatID, messageID, render.Grocery(categories))
}

func (b *Bot) handleTrack(ctx context.Context, sessionID string, chatID int64, args string) {
	if err := b.app.SetView(sessionID, string(session.ViewTrack)); err != nil {
		b.replyError(chatID, err)
		return
	}
	if strings.TrimSpace(args) == "" {
		b.reply(chatID, "Usage: /track <what you ate today>")
		return
	}

	messageID := b.status(chatID, "📊 *Analyzing your intake...*")
	report, err := b.app.TrackIntake(ctx, sessionID, args)
	if err != nil {
		b.replace(chatID, messageID, "❌ "+render.Escape(userMessage(err)))
		return
	}
	b.replace(chatID, messageID, render.Analysis(report.Analysis, report.Goal))
}

func (b *Bot) handleSaved(ctx context.Context, sessionID string, chatID int64) {
	if err := b.app.SetView(sessionID, string(session.ViewSaved)); err != nil {
		b.replyError(chatID, err)
		return
	}
	meals, err := b.app.Favorites(ctx, sessionID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, render.Favorites(meals))
}

func (b *Bot) handleProfile(ctx context.Context, sessionID string, chatID int64) {
	if err := b.app.SetView(sessionID, string(session.ViewProfile)); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, b.profileView(ctx, sessionID))
}

// handleSet changes one setting: a preference or the session's name.
func (b *Bot) handleSet(ctx context.Context, sessionID string, chatID int64, args string) {
	field, value, _ := strings.Cut(args, " ")
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)
	if field == "" {
		b.reply(chatID, "Usage: /set <diet|calories|meals|allergies|water|name|username> <value>")
		return
	}

	switch field {
	case "name", "username":
		if value == "" {
			b.reply(chatID, fmt.Sprintf("Please give a valid %s.", field))
			return
		}
		var err error
		if field == "name" {
			_, err = b.app.UpdateProfile(sessionID, value, "")
		} else {
			_, err = b.app.UpdateProfile(sessionID, "", value)
		}
		if err != nil {
			b.replyError(chatID, err)
			return
		}
	default:
		prefs, err := b.app.Preferences(ctx, sessionID)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		if err := applySetting(&prefs, field, value); err != nil {
			b.reply(chatID, "❌ "+render.Escape(err.Error()))
			return
		}
		if _, err := b.app.SavePreferences(ctx, sessionID, prefs); err != nil {
			b.replyError(chatID, err)
			return
		}
	}

	b.reply(chatID, "✅ Saved.\n\n"+b.profileView(ctx, sessionID))
}

// applySetting parses value into the preference named by field. Numbers
// are clamped later when the preferences are saved.
func applySetting(p *profile.Preferences, field, value string) error {
	switch field {
	case "diet":
		diet, ok := matchDiet(value)
		if !ok {
			return fmt.Errorf("unknown diet %q. Choose one of: %s", value, strings.Join(profile.Diets, ", "))
		}
		p.DietType = diet
	case "calories", "meals", "water":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		switch field {
		case "calories":
			p.CalorieGoal = n
		case "meals":
			p.MealsPerDay = n
		default:
			p.WaterGoal = n
		}
	case "allergies":
		if strings.EqualFold(value, "none") {
			value = ""
		}
		p.Allergies = value
	default:
		return fmt.Errorf("unknown setting %q", field)
	}
	return nil
}

// matchDiet finds the diet whose name starts with value, ignoring case.
func matchDiet(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	for _, d := range profile.Diets {
		if strings.HasPrefix(strings.ToLower(d), value) {
			return d, true
		}
	}
	return "", false
}

// handleWater adds or removes water. Without arguments it shows the day's
// progress.
func (b *Bot) handleWater(ctx context.Context, sessionID string, chatID int64, args string) {
	var err error
	switch {
	case args == "":
	case strings.EqualFold(args, "reset"):
		_, err = b.app.ResetWater(ctx, sessionID)
	default:
		amount, convErr := strconv.Atoi(strings.TrimPrefix(args, "+"))
		if convErr != nil {
			b.reply(chatID, "Usage: /water [+250|-250|reset]")
			return
		}
		_, err = b.app.AddWater(ctx, sessionID, amount)
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	status, err := b.app.Water(ctx, sessionID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, render.Water(status))
}

// mealAt returns the meal numbered arg (1-based) of the active day.
func (b *Bot) mealAt(sessionID, arg string) (planner.Meal, error) {
	st, err := b.app.State(sessionID)
	if err != nil {
		return planner.Meal{}, err
	}
	day, ok := st.CurrentDay()
	if !ok {
		return planner.Meal{}, session.ErrNoPlan
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(day.Meals) {
		return planner.Meal{}, fmt.Errorf("%w: meal %q", errNoSuchMeal, arg)
	}
	return day.Meals[n-1], nil
}

func (b *Bot) planView(ctx context.Context, sessionID string) string {
	st, err := b.app.State(sessionID)
	if err != nil {
		return "❌ " + render.Escape(userMessage(err))
	}
	meals, _ := b.app.Favorites(ctx, sessionID)
	return render.Plan(st, favorites.Titles(meals))
}

func (b *Bot) profileView(ctx context.Context, sessionID string) string {
	st, err := b.app.State(sessionID)
	if err != nil {
		return "❌ " + render.Escape(userMessage(err))
	}
	prefs, err := b.app.Preferences(ctx, sessionID)
	if err != nil {
		return "❌ " + render.Escape(userMessage(err))
	}
	water, err := b.app.Water(ctx, sessionID)
	if err != nil {
		return "❌ " + render.Escape(userMessage(err))
	}
	return render.Profile(st.User, prefs) + "\n" + render.Water(water)
}
