package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"nutrigenie/internal/app"
	"nutrigenie/internal/favorites"
	"nutrigenie/internal/llm"
	"nutrigenie/internal/planner"
	"nutrigenie/internal/profile"
	"nutrigenie/internal/session"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/tracker"

	"github.com/go-playground/validator/v10"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

type viewRequest struct {
	View string `json:"view" validate:"required"`
}

type dayRequest struct {
	Day int `json:"day" validate:"min=1,max=7"`
}

type titleRequest struct {
	Title string `json:"title" validate:"required"`
}

type profileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type groceryRequest struct {
	Text string `json:"text"`
	URL  string `json:"url" validate:"omitempty,url"`
}

type trackRequest struct {
	Input string `json:"input"`
}

type favoriteRequest struct {
	Meal  *planner.Meal `json:"meal"`
	Title string        `json:"title" validate:"required_without=Meal"`
}

type waterRequest struct {
	Amount int `json:"amount" validate:"required"`
}

type sessionResponse struct {
	session.State
	WaterStatus tracker.WaterStatus `json:"waterStatus"`
	Tip         string              `json:"tip,omitempty"`
	Intake      *app.IntakeReport   `json:"intake,omitempty"`
	Favorites   map[string]bool     `json:"favorites"`
}

func (server *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !server.decode(w, r, &req) {
		return
	}

	st, err := server.app.Login("", req.Username, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := server.signer.Sign(st)
	if err != nil {
		log.Printf("Failed to sign session token: %v", err)
		server.app.Logout(st.ID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: st.User})
}

func (server *Server) Logout(w http.ResponseWriter, r *http.Request) {
	server.app.Logout(SessionID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (server *Server) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := SessionID(ctx)

	st, err := server.app.State(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	water, err := server.app.Water(ctx, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := server.app.Favorites(ctx, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sessionResponse{
		State:       st,
		WaterStatus: water,
		Tip:         st.Plan.FirstTip(),
		Favorites:   favorites.Titles(saved),
	}
	if st.Analysis != nil {
		prefs, err := server.app.Preferences(ctx, sessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		report := app.NewIntakeReport(st.Analysis, prefs.CalorieGoal)
		resp.Intake = &report
	}
	writeJSON(w, http.StatusOK, resp)
}

func (server *Server) SetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !server.decode(w, r, &req) {
		return
	}
	if err := server.app.SetView(SessionID(r.Context()), req.View); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"view": req.View})
}

func (server *Server) SelectDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if !server.decode(w, r, &req) {
		return
	}
	if err := server.app.SelectDay(SessionID(r.Context()), req.Day); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"activeDay": req.Day})
}

func (server *Server) ToggleSteps(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !server.decode(w, r, &req) {
		return
	}
	expanded, err := server.app.ToggleSteps(SessionID(r.Context()), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"expanded": expanded})
}

func (server *Server) Preferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := server.app.Preferences(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (server *Server) SavePreferences(w http.ResponseWriter, r *http.Request) {
	// Preferences are normalized and validated by the app.
	var req profile.Preferences
	if !readJSON(w, r, &req) {
		return
	}
	saved, err := server.app.SavePreferences(r.Context(), SessionID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (server *Server) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !server.decode(w, r, &req) {
		return
	}
	user, err := server.app.UpdateProfile(SessionID(r.Context()), req.Name, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GeneratePlan accepts an optional Preferences body. Without one the
// stored preferences are used.
func (server *Server) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var prefs *profile.Preferences

	var req profile.Preferences
	err := json.NewDecoder(r.Body).Decode(&req)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	default:
		prefs = &req
	}

	plan, err := server.app.GeneratePlan(r.Context(), SessionID(r.Context()), prefs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// BuildGroceryList uses url when set, then text, then the current plan.
func (server *Server) BuildGroceryList(w http.ResponseWriter, r *http.Request) {
	var req groceryRequest
	if !server.decodeOptional(w, r, &req) {
		return
	}

	input := req.Text
	if strings.TrimSpace(req.URL) != "" {
		input = req.URL
	}

	categories, err := server.app.BuildGroceryList(r.Context(), SessionID(r.Context()), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shopping.List{Categories: categories})
}

func (server *Server) TrackIntake(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !server.decode(w, r, &req) {
		return
	}
	report, err := server.app.TrackIntake(r.Context(), SessionID(r.Context()), req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (server *Server) Favorites(w http.ResponseWriter, r *http.Request) {
	meals, err := server.app.Favorites(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

// ToggleFavorite takes either a full meal or the title of a meal in the
// current plan or the saved list.
func (server *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !server.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	sessionID := SessionID(ctx)

	var (
		meal  planner.Meal
		saved bool
		err   error
	)
	if req.Meal != nil {
		if strings.TrimSpace(req.Meal.Title) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meal title is required"})
			return
		}
		meal = *req.Meal
		saved, err = server.app.ToggleFavorite(ctx, sessionID, meal)
	} else {
		meal, saved, err = server.app.ToggleFavoriteByTitle(ctx, sessionID, req.Title)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": meal.Title, "saved": saved})
}

func (server *Server) AddWater(w http.ResponseWriter, r *http.Request) {
	var req waterRequest
	if !server.decode(w, r, &req) {
		return
	}
	status, err := server.app.AddWater(r.Context(), SessionID(r.Context()), req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (server *Server) ResetWater(w http.ResponseWriter, r *http.Request) {
	status, err := server.app.ResetWater(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// decode reads a JSON body into dst and validates it, answering 400 on
// failure.
func (server *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !readJSON(w, r, dst) {
		return false
	}
	return server.check(w, dst)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// decodeOptional is decode for endpoints where an empty body is allowed.
func (server *Server) decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return server.check(w, dst)
}

func (server *Server) check(w http.ResponseWriter, dst any) bool {
	if err := server.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid field: " + strings.ToLower(fieldErrs[0].Field())})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("API error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": app.UserMessage(err)})
}

// statusFor maps an action error onto an HTTP status.
func statusFor(err error) int {
	var formatErr *llm.FormatError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrUnknownView),
		errors.Is(err, session.ErrNoSuchDay),
		errors.Is(err, session.ErrNoPlan),
		errors.Is(err, shopping.ErrEmptyInput),
		errors.Is(err, tracker.ErrEmptyInput),
		errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &formatErr):
		return http.StatusBadGateway
	}

	var userErr *app.UserError
	if errors.As(err, &userErr) {
		switch userErr.Message {
		case app.MsgPlanFailed, app.MsgGroceryFailed, app.MsgTrackingFailed, app.MsgFetchFailed:
			return http.StatusBadGateway
		}
		if userErr.Err == nil {
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}
