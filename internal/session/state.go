package session

import (
	"errors"
	"fmt"

	"nutrigenie/internal/planner"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/storage"
	"nutrigenie/internal/tracker"
)

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("username and password are required")
	ErrInvalidUsername    = fmt.Errorf("%w: username cannot be used as a profile name", ErrInvalidCredentials)
	ErrUnknownView        = errors.New("unknown view")
	ErrNoPlan             = errors.New("no meal plan generated yet")
	ErrNoSuchDay          = errors.New("no such day in the current plan")
)

// View is the screen the user is looking at.
type View string

const (
	ViewPlan    View = "plan"
	ViewTrack   View = "track"
	ViewGrocery View = "grocery"
	ViewSaved   View = "saved"
	ViewProfile View = "profile"
)

// Views lists every view in navigation order.
var Views = []View{ViewPlan, ViewTrack, ViewGrocery, ViewSaved, ViewProfile}

// ParseView validates a view name.
func ParseView(name string) (View, error) {
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// User is the mock-authenticated user of a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Namespace is the storage namespace holding the user's preferences and
// favorites.
func (u User) Namespace() string {
	return u.Username
}

// State is everything a session remembers between requests. Generation
// results only live here and are lost on logout.
type State struct {
	ID        string                  `json:"id"`
	User      User                    `json:"user"`
	View      View                    `json:"view"`
	Plan      *planner.WeeklyPlan     `json:"plan,omitempty"`
	ActiveDay int                     `json:"activeDay"`
	Grocery   []shopping.Category     `json:"grocery,omitempty"`
	Analysis  *tracker.IntakeAnalysis `json:"analysis,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Expanded  map[string]bool         `json:"expanded"`
	Water     int                     `json:"water"`
}

func newState(id string, user User) *State {
	return &State{
		ID:       id,
		User:     user,
		View:     ViewPlan,
		Expanded: map[string]bool{},
	}
}

// SetView switches views. Expanded cards collapse only when the view
// actually changes.
func (s *State) SetView(v View) {
	if s.View != v {
		s.Expanded = map[string]bool{}
	}
	s.View = v
}

// SetPlan installs a freshly generated plan and shows its first day.
func (s *State) SetPlan(plan *planner.WeeklyPlan) {
	s.Plan = plan
	s.ActiveDay = 1
	s.Error = ""
	s.SetView(ViewPlan)
}

// SelectDay makes dayNumber the active day of the current plan.
func (s *State) SelectDay(dayNumber int) error {
	if s.Plan == nil {
		return ErrNoPlan
	}
	if _, ok := s.Plan.Day(dayNumber); !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchDay, dayNumber)
	}
	s.ActiveDay = dayNumber
	return nil
}

// CurrentDay is the active day of the current plan.
func (s *State) CurrentDay() (*planner.DayPlan, bool) {
	if s.Plan == nil {
		return nil, false
	}
	return s.Plan.Day(s.ActiveDay)
}

// ToggleExpanded shows or hides the cooking steps of the meal with title
// and reports whether they are now shown.
func (s *State) ToggleExpanded(title string) bool {
	if s.Expanded == nil {
		s.Expanded = map[string]bool{}
	}
	if s.Expanded[title] {
		delete(s.Expanded, title)
		return false
	}
	s.Expanded[title] = true
	return true
}

// AddWater adds amount ml (negative to remove), never going below zero.
func (s *State) AddWater(amount int) {
	s.Water = tracker.AddWater(s.Water, amount)
}

func (s *State) ResetWater() {
	s.Water = 0
}

// UpdateUser edits the display name and username. Empty values are kept.
// The username names the storage namespace, so it must be a valid one.
func (s *State) UpdateUser(name, username string) error {
	if username != "" {
		if err := storage.ValidateNamespace(username); err != nil {
			return ErrInvalidUsername
		}
		s.User.Username = username
	}
	if name != "" {
		s.User.Name = name
	}
	return nil
}

func (s *State) clone() State {
	c := *s
	c.Expanded = make(map[string]bool, len(s.Expanded))
	for k, v := range s.Expanded {
		c.Expanded[k] = v
	}
	return c
}
