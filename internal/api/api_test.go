package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nutrigenie/internal/app"
	"nutrigenie/internal/favorites"
	"nutrigenie/internal/llm"
	"nutrigenie/internal/planner"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/session"
	"nutrigenie/internal/shared"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/storage"
	"nutrigenie/internal/tracker"
)

// MockGenerator returns Plan, Grocery or Analysis depending on the prompt.
type MockGenerator struct {
	Plan     string
	Grocery  string
	Analysis string
	Err      error
}

func (m *MockGenerator) GenerateStructured(ctx context.Context, prompt string, schema *llm.Schema) (llm.ContentResponse, error) {
	if m.Err != nil {
		return llm.ContentResponse{}, m.Err
	}
	usage := shared.TokenUsage{PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10}
	switch {
	case strings.Contains(prompt, "7-day meal plan"):
		return llm.ContentResponse{Content: m.Plan, Usage: usage}, nil
	case strings.Contains(prompt, "grocery list"):
		return llm.ContentResponse{Content: m.Grocery, Usage: usage}, nil
	default:
		return llm.ContentResponse{Content: m.Analysis, Usage: usage}, nil
	}
}

func planJSON(t *testing.T) string {
	t.Helper()
	plan := planner.WeeklyPlan{NutritionTips: []string{"Drink water", "Sleep", "Move"}}
	for i := 1; i <= planner.DaysPerPlan; i++ {
		plan.Days = append(plan.Days, planner.DayPlan{
			DayNumber: i, DayName: fmt.Sprintf("Day %d", i), TotalCalories: 1800,
			Meals: []planner.Meal{{
				Type: "Lunch", Title: fmt.Sprintf("Lentil Soup %d", i), Calories: 1800,
				Ingredients: []string{"lentils"}, Alternatives: []string{}, CookingSteps: []string{"Simmer"},
				CookingTime: "30 mins", Difficulty: planner.DifficultyEasy,
			}},
		})
	}
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newTestServer(t *testing.T, gen *MockGenerator, opts Options) *Server {
	t.Helper()
	kv, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	signer, err := session.NewTokenSigner("test-secret", 0)
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}

	application := app.NewApp(app.Deps{
		Sessions:    session.NewManager(0),
		Preferences: profile.NewStore(kv),
		Favorites:   favorites.NewStore(kv),
		Planner:     planner.NewPlanner(gen),
		Grocery:     shopping.NewAssistant(gen),
		Tracker:     tracker.NewTracker(gen),
	})
	return New(application, signer, opts)
}

func do(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	request := httptest.NewRequest(method, path, reader)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func login(t *testing.T, handler http.Handler, username string) string {
	t.Helper()
	rec := do(t, handler, http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("login: decoding response: %v", err)
	}
	if resp.Token == "" || resp.User.Username != username {
		t.Fatalf("login: unexpected response %+v", resp)
	}
	return resp.Token
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body["error"]
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &MockGenerator{}, Options{})
	rec := do(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, &MockGenerator{}, Options{})

	t.Run("MissingToken", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/session", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if msg := errorMessage(t, rec); msg != "Please log in first." {
			t.Errorf("unexpected error message %q", msg)
		}
	})

	t.Run("BadToken", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/session", "not-a-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("EmptyPassword", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"username": "bob"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("UnusableUsername", func(t *testing.T) {
		for _, username := range []string{"ann/bob", ".."} {
			rec := do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"username": username, "password": "pw"})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("login %q: expected 400, got %d", username, rec.Code)
			}
		}

		token := login(t, srv, "ann")
		rec := do(t, srv, http.MethodPut, "/api/profile", token, map[string]string{"username": ".."})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("profile: expected 400, got %d", rec.Code)
		}
		if msg := errorMessage(t, rec); !strings.Contains(msg, "username can't be used") {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("LogoutInvalidatesToken", func(t *testing.T) {
		token := login(t, srv, "bob")
		if rec := do(t, srv, http.MethodPost, "/api/logout", token, nil); rec.Code != http.StatusNoContent {
			t.Fatalf("logout: expected 204, got %d", rec.Code)
		}
		if rec := do(t, srv, http.MethodGet, "/api/session", token, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 after logout, got %d", rec.Code)
		}
	})
}

func TestPreferences(t *testing.T) {
	srv := newTestServer(t, &MockGenerator{}, Options{})
	token := login(t, srv, "carol")

	rec := do(t, srv, http.MethodGet, "/api/preferences", token, nil)
	var prefs profile.Preferences
	json.NewDecoder(rec.Body).Decode(&prefs)
	if prefs != profile.DefaultPreferences() {
		t.Errorf("expected defaults, got %+v", prefs)
	}

	rec = do(t, srv, http.MethodPut, "/api/preferences", token, `{"dietType":"Keto","calorieGoal":0,"mealsPerDay":4,"waterGoal":2500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	json.NewDecoder(rec.Body).Decode(&prefs)
	if prefs.CalorieGoal < profile.MinCalorieGoal || prefs.CalorieGoal > profile.MaxCalorieGoal {
		t.Errorf("calorie goal %d outside allowed range", prefs.CalorieGoal)
	}
	if prefs.DietType != profile.DietKeto || prefs.MealsPerDay != 4 {
		t.Errorf("unexpected saved preferences %+v", prefs)
	}

	rec = do(t, srv, http.MethodPut, "/api/preferences", token, `{"dietType":"Carnivore"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown diet: expected 400, got %d", rec.Code)
	}
}

func TestPlanWorkflow(t *testing.T) {
	gen := &MockGenerator{
		Plan:     planJSON(t),
		Grocery:  `{"categories":[{"category":"Grains & Legumes","items":[{"name":"Lentils","quantity":"1 kg"}]}]}`,
		Analysis: `{"totalCalories":2200,"macros":{"protein":90,"carbs":300,"fats":60},"analysis":"Over.","suggestions":[]}`,
	}
	srv := newTestServer(t, gen, Options{})
	token := login(t, srv, "dana")

	t.Run("GroceryWithoutPlan", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/grocery", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if msg := errorMessage(t, rec); msg != app.MsgNoGroceryInput {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("GeneratePlan", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/plan", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var plan planner.WeeklyPlan
		json.NewDecoder(rec.Body).Decode(&plan)
		if len(plan.Days) != planner.DaysPerPlan {
			t.Errorf("expected 7 days, got %d", len(plan.Days))
		}
	})

	t.Run("Navigation", func(t *testing.T) {
		if rec := do(t, srv, http.MethodPut, "/api/session/day", token, map[string]int{"day": 3}); rec.Code != http.StatusOK {
			t.Errorf("select day: expected 200, got %d", rec.Code)
		}
		if rec := do(t, srv, http.MethodPut, "/api/session/day", token, map[string]int{"day": 9}); rec.Code != http.StatusBadRequest {
			t.Errorf("select day 9: expected 400, got %d", rec.Code)
		}
		if rec := do(t, srv, http.MethodPut, "/api/session/view", token, map[string]string{"view": "nowhere"}); rec.Code != http.StatusBadRequest {
			t.Errorf("unknown view: expected 400, got %d", rec.Code)
		}
		rec := do(t, srv, http.MethodPost, "/api/session/expand", token, map[string]string{"title": "Lentil Soup 3"})
		var expanded map[string]bool
		json.NewDecoder(rec.Body).Decode(&expanded)
		if !expanded["expanded"] {
			t.Errorf("expected steps to be expanded, got %v", expanded)
		}
	})

	t.Run("FavoriteByTitle", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/favorites/toggle", token, map[string]string{"title": "Lentil Soup 3"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		rec = do(t, srv, http.MethodGet, "/api/favorites", token, nil)
		var meals []planner.Meal
		json.NewDecoder(rec.Body).Decode(&meals)
		if len(meals) != 1 || meals[0].Title != "Lentil Soup 3" {
			t.Errorf("expected one saved meal, got %+v", meals)
		}

		rec = do(t, srv, http.MethodPost, "/api/favorites/toggle", token, map[string]string{"title": "Pizza"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("unknown meal: expected 404, got %d", rec.Code)
		}
	})

	t.Run("GroceryFromPlan", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/grocery", token, `{}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var list shopping.List
		json.NewDecoder(rec.Body).Decode(&list)
		if shopping.ItemCount(list.Categories) != 1 {
			t.Errorf("expected 1 item, got %+v", list)
		}
	})

	t.Run("TrackIntake", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/api/track", token, map[string]string{"input": "pasta and cake"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var report app.IntakeReport
		json.NewDecoder(rec.Body).Decode(&report)
		if report.Status.String() != "200 Over" {
			t.Errorf("expected '200 Over', got %q", report.Status.String())
		}

		rec = do(t, srv, http.MethodPost, "/api/track", token, map[string]string{"input": "  "})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("empty intake: expected 400, got %d", rec.Code)
		}
	})

	t.Run("Water", func(t *testing.T) {
		do(t, srv, http.MethodPost, "/api/water", token, map[string]int{"amount": tracker.WaterBottle})
		rec := do(t, srv, http.MethodPost, "/api/water", token, map[string]int{"amount": tracker.WaterGlass})
		var status tracker.WaterStatus
		json.NewDecoder(rec.Body).Decode(&status)
		if status.Current != 750 || status.Percent != 38 {
			t.Errorf("expected 750 ml (38%%), got %+v", status)
		}

		rec = do(t, srv, http.MethodDelete, "/api/water", token, nil)
		json.NewDecoder(rec.Body).Decode(&status)
		if status.Current != 0 {
			t.Errorf("expected reset to 0, got %+v", status)
		}
	})

	t.Run("Session", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/session", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp struct {
			View      string            `json:"view"`
			ActiveDay int               `json:"activeDay"`
			Tip       string            `json:"tip"`
			Favorites map[string]bool   `json:"favorites"`
			Intake    *app.IntakeReport `json:"intake"`
		}
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.View != "grocery" || resp.ActiveDay != 3 || resp.Tip != "Drink water" {
			t.Errorf("unexpected session %+v", resp)
		}
		if !resp.Favorites["Lentil Soup 3"] {
			t.Errorf("expected favorite marker, got %v", resp.Favorites)
		}
		if resp.Intake == nil || resp.Intake.Goal != 2000 {
			t.Errorf("expected intake report against 2000 kcal, got %+v", resp.Intake)
		}
	})
}

func TestGenerationFailures(t *testing.T) {
	t.Run("MalformedReply", func(t *testing.T) {
		srv := newTestServer(t, &MockGenerator{Plan: `{"weeklyPlan": [`}, Options{})
		token := login(t, srv, "erin")

		rec := do(t, srv, http.MethodPost, "/api/plan", token, nil)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if msg := errorMessage(t, rec); msg != planner.ErrInvalidFormat {
			t.Errorf("expected %q, got %q", planner.ErrInvalidFormat, msg)
		}
	})

	t.Run("TransportError", func(t *testing.T) {
		srv := newTestServer(t, &MockGenerator{Err: fmt.Errorf("connection reset")}, Options{})
		token := login(t, srv, "erin")

		rec := do(t, srv, http.MethodPost, "/api/track", token, map[string]string{"input": "toast"})
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if msg := errorMessage(t, rec); msg != app.MsgTrackingFailed {
			t.Errorf("expected %q, got %q", app.MsgTrackingFailed, msg)
		}
	})
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, &MockGenerator{Plan: planJSON(t)}, Options{RateLimitPerMinute: 1, RateLimitBurst: 1})
	token := login(t, srv, "finn")

	if rec := do(t, srv, http.MethodPost, "/api/plan", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	rec := do(t, srv, http.MethodPost, "/api/plan", token, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != msgRateLimited {
		t.Errorf("unexpected message %q", msg)
	}

	// Non-generation routes are not limited.
	if rec := do(t, srv, http.MethodGet, "/api/preferences", token, nil); rec.Code != http.StatusOK {
		t.Errorf("preferences: expected 200, got %d", rec.Code)
	}
}
