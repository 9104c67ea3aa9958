package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"nutrigenie/internal/clipper"
	"nutrigenie/internal/favorites"
	"nutrigenie/internal/planner"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/session"
	"nutrigenie/internal/shared"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/tracker"
)

// MetricsRecorder stores the metadata of each generation call.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// PageFetcher reads a web page as plain text.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*clipper.Page, error)
}

// Deps are the components the App orchestrates. Metrics and Fetcher are
// optional.
type Deps struct {
	Sessions    *session.Manager
	Preferences *profile.Store
	Favorites   *favorites.Store
	Planner     *planner.Planner
	Grocery     *shopping.Assistant
	Tracker     *tracker.Tracker
	Fetcher     PageFetcher
	Metrics     MetricsRecorder
}

// App holds the application's dependencies and implements the user-level
// actions shared by every surface.
type App struct {
	sessions    *session.Manager
	preferences *profile.Store
	favorites   *favorites.Store
	planner     *planner.Planner
	grocery     *shopping.Assistant
	tracker     *tracker.Tracker
	fetcher     PageFetcher
	metrics     MetricsRecorder
}

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	return &App{
		sessions:    d.Sessions,
		preferences: d.Preferences,
		favorites:   d.Favorites,
		planner:     d.Planner,
		grocery:     d.Grocery,
		tracker:     d.Tracker,
		fetcher:     d.Fetcher,
		metrics:     d.Metrics,
	}
}

// Sessions exposes the session manager to surfaces that need snapshots.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

func (a *App) Login(sessionID, username, password, name string) (session.State, error) {
	st, err := a.sessions.Login(sessionID, username, password, name)
	if err != nil {
		return session.State{}, err
	}
	log.Printf("User %s logged in (session %s)", st.User.Username, st.ID)
	return st, nil
}

// Logout ends the session. Preferences and favorites stay in storage.
func (a *App) Logout(sessionID string) {
	a.sessions.Logout(sessionID)
}

func (a *App) State(sessionID string) (session.State, error) {
	return a.sessions.Get(sessionID)
}

func (a *App) SetView(sessionID, name string) error {
	v, err := session.ParseView(name)
	if err != nil {
		return err
	}
	return a.sessions.Update(sessionID, func(s *session.State) error {
		s.SetView(v)
		return nil
	})
}

func (a *App) SelectDay(sessionID string, day int) error {
	return a.sessions.Update(sessionID, func(s *session.State) error {
		return s.SelectDay(day)
	})
}

// ToggleSteps expands or collapses the cooking steps of a meal card.
func (a *App) ToggleSteps(sessionID, title string) (bool, error) {
	var expanded bool
	err := a.sessions.Update(sessionID, func(s *session.State) error {
		expanded = s.ToggleExpanded(title)
		return nil
	})
	return expanded, err
}

// UpdateProfile edits the session user. Changing the username switches the
// storage namespace used for preferences and favorites.
func (a *App) UpdateProfile(sessionID, name, username string) (session.User, error) {
	var user session.User
	err := a.sessions.Update(sessionID, func(s *session.State) error {
		if err := s.UpdateUser(strings.TrimSpace(name), strings.TrimSpace(username)); err != nil {
			return err
		}
		user = s.User
		return nil
	})
	return user, err
}

func (a *App) namespace(sessionID string) (string, error) {
	st, err := a.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	return st.User.Namespace(), nil
}

// Preferences loads the user's settings, falling back to defaults.
func (a *App) Preferences(ctx context.Context, sessionID string) (profile.Preferences, error) {
	ns, err := a.namespace(sessionID)
	if err != nil {
		return profile.Preferences{}, err
	}
	return a.preferences.LoadPreferences(ctx, ns), nil
}

// SavePreferences normalizes and stores the user's settings.
func (a *App) SavePreferences(ctx context.Context, sessionID string, p profile.Preferences) (profile.Preferences, error) {
	ns, err := a.namespace(sessionID)
	if err != nil {
		return profile.Preferences{}, err
	}
	saved, err := a.preferences.SavePreferences(ctx, ns, p)
	if err != nil {
		return profile.Preferences{}, &UserError{Message: "Could not save your settings: " + err.Error(), Err: err}
	}
	return saved, nil
}

// GeneratePlan requests a new weekly plan. When prefs is given it is saved
// first; otherwise the stored preferences are used. On failure the previous
// plan is kept and the error message is remembered in the session.
func (a *App) GeneratePlan(ctx context.Context, sessionID string, prefs *profile.Preferences) (*planner.WeeklyPlan, error) {
	var p profile.Preferences
	var err error
	if prefs != nil {
		p, err = a.SavePreferences(ctx, sessionID, *prefs)
	} else {
		p, err = a.Preferences(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}

	if err := a.sessions.Update(sessionID, func(s *session.State) error {
		s.Error = ""
		return nil
	}); err != nil {
		return nil, err
	}

	plan, meta, err := a.planner.RequestMealPlan(ctx, p)
	a.record(ctx, meta)
	if err != nil {
		log.Printf("Meal plan generation failed for session %s: %v", sessionID, err)
		userErr := wrap(err, MsgPlanFailed)
		if err := a.sessions.Update(sessionID, func(s *session.State) error {
			s.Error = UserMessage(userErr)
			return nil
		}); err != nil {
			log.Printf("Warning: could not keep plan error for session %s: %v", sessionID, err)
		}
		return nil, userErr
	}

	if err := a.sessions.Update(sessionID, func(s *session.State) error {
		s.SetPlan(plan)
		return nil
	}); err != nil {
		return nil, err
	}
	return plan, nil
}

// BuildGroceryList organizes input into a grocery list. Empty input uses
// the current plan; a URL is fetched and its text used.
func (a *App) BuildGroceryList(ctx context.Context, sessionID, input string) ([]shopping.Category, error) {
	st, err := a.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input)
	switch {
	case text == "":
		if st.Plan == nil {
			return nil, &UserError{Message: MsgNoGroceryInput, Err: shopping.ErrEmptyInput}
		}
		if text, err = shopping.PlanText(st.Plan); err != nil {
			return nil, wrap(err, MsgGroceryFailed)
		}
	case clipper.IsURL(text) && a.fetcher != nil:
		page, err := a.fetcher.Fetch(ctx, text)
		if err != nil {
			log.Printf("Failed to fetch grocery source %s: %v", text, err)
			return nil, &UserError{Message: MsgFetchFailed, Err: err}
		}
		text = page.Text
	}

	categories, meta, err := a.grocery.RequestGroceryList(ctx, text)
	a.record(ctx, meta)
	if err != nil {
		log.Printf("Grocery list generation failed for session %s: %v", sessionID, err)
		return nil, wrap(err, MsgGroceryFailed)
	}

	if err := a.sessions.Update(sessionID, func(s *session.State) error {
		s.Grocery = categories
		s.SetView(session.ViewGrocery)
		return nil
	}); err != nil {
		return nil, err
	}
	return categories, nil
}

// IntakeReport is an analysis together with the goal it was compared to.
type IntakeReport struct {
	Analysis *tracker.IntakeAnalysis `json:"analysis"`
	Goal     int                     `json:"goal"`
	Status   tracker.GoalStatus      `json:"status"`
	Split    tracker.MacroSplit      `json:"split"`
}

// NewIntakeReport derives the goal status and macro split of an analysis.
func NewIntakeReport(analysis *tracker.IntakeAnalysis, goal int) IntakeReport {
	return IntakeReport{
		Analysis: analysis,
		Goal:     goal,
		Status:   tracker.CompareToGoal(analysis.TotalCalories, goal),
		Split:    tracker.SplitMacros(analysis.Macros, analysis.TotalCalories),
	}
}

// TrackIntake analyzes a free-text description of today's food against the
// user's calorie goal.
func (a *App) TrackIntake(ctx context.Context, sessionID, input string) (*IntakeReport, error) {
	prefs, err := a.Preferences(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	analysis, meta, err := a.tracker.RequestIntakeAnalysis(ctx, input, prefs.CalorieGoal)
	a.record(ctx, meta)
	if err != nil {
		log.Printf("Intake analysis failed for session %s: %v", sessionID, err)
		return nil, wrap(err, MsgTrackingFailed)
	}

	if err := a.sessions.Update(sessionID, func(s *session.State) error {
		s.Analysis = analysis
		return nil
	}); err != nil {
		return nil, err
	}

	report := NewIntakeReport(analysis, prefs.CalorieGoal)
	return &report, nil
}

// Favorites lists the user's saved meals.
func (a *App) Favorites(ctx context.Context, sessionID string) ([]planner.Meal, error) {
	ns, err := a.namespace(sessionID)
	if err != nil {
		return nil, err
	}
	return a.favorites.Load(ctx, ns), nil
}

// ToggleFavorite saves or removes meal and reports whether it is now saved.
func (a *App) ToggleFavorite(ctx context.Context, sessionID string, meal planner.Meal) (bool, error) {
	ns, err := a.namespace(sessionID)
	if err != nil {
		return false, err
	}
	saved, err := a.favorites.Toggle(ctx, ns, meal)
	if err != nil {
		return false, &UserError{Message: "Could not update your saved meals.", Err: err}
	}
	return saved, nil
}

// ToggleFavoriteByTitle finds the meal in the current plan, or among the
// saved meals, and toggles it.
func (a *App) ToggleFavoriteByTitle(ctx context.Context, sessionID, title string) (planner.Meal, bool, error) {
	st, err := a.sessions.Get(sessionID)
	if err != nil {
		return planner.Meal{}, false, err
	}

	meal, ok := st.Plan.FindMeal(title)
	if !ok {
		for _, m := range a.favorites.Load(ctx, st.User.Namespace()) {
			if m.Title == title {
				meal, ok = m, true
				break
			}
		}
	}
	if !ok {
		return planner.Meal{}, false, &UserError{Message: fmt.Sprintf("No meal called %q.", title)}
	}

	saved, err := a.ToggleFavorite(ctx, sessionID, meal)
	return meal, saved, err
}

// AddWater adds amount ml to today's intake (negative removes, floored at 0).
func (a *App) AddWater(ctx context.Context, sessionID string, amount int) (tracker.WaterStatus, error) {
	if err := a.sessions.Update(sessionID, func(s *session.State) error {
		s.AddWater(amount)
		return nil
	}); err != nil {
		return tracker.WaterStatus{}, err
	}
	return a.Water(ctx, sessionID)
}

func (a *App) ResetWater(ctx context.Context, sessionID string) (tracker.WaterStatus, error) {
	if err := a.sessions.Update(sessionID, func(s *session.State) error {
		s.ResetWater()
		return nil
	}); err != nil {
		return tracker.WaterStatus{}, err
	}
	return a.Water(ctx, sessionID)
}

// Water reports progress towards the stored water goal.
func (a *App) Water(ctx context.Context, sessionID string) (tracker.WaterStatus, error) {
	st, err := a.sessions.Get(sessionID)
	if err != nil {
		return tracker.WaterStatus{}, err
	}
	prefs := a.preferences.LoadPreferences(ctx, st.User.Namespace())
	return tracker.Water(st.Water, prefs.WaterGoal), nil
}

func (a *App) record(ctx context.Context, meta shared.AgentMeta) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}
