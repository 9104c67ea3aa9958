package app

import (
	"errors"

	"nutrigenie/internal/llm"
	"nutrigenie/internal/session"
	"nutrigenie/internal/shopping"
	"nutrigenie/internal/tracker"
)

// Messages shown when an action fails for a reason other than a malformed
// model reply.
const (
	MsgPlanFailed     = "Something went wrong while generating your plan."
	MsgGroceryFailed  = "Failed to organize the grocery list."
	MsgTrackingFailed = "Error analyzing intake. Please try again."
	MsgNoGroceryInput = "Generate a meal plan or enter the meals to shop for first."
	MsgNoIntakeInput  = "Describe what you ate today first."
	MsgFetchFailed    = "Could not read that web page."
)

// UserError is a failure scoped to one action, carrying a message meant
// for the user.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// UserMessage extracts the message to show for err.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return "Please log in first."
	case errors.Is(err, session.ErrInvalidUsername):
		return "That username can't be used. Avoid / and \\ and names like \"..\"."
	case errors.Is(err, session.ErrInvalidCredentials):
		return "Please enter a username and password."
	case errors.Is(err, session.ErrNoPlan):
		return "Generate a meal plan first."
	case errors.Is(err, session.ErrNoSuchDay):
		return "That day is not part of your plan."
	case errors.Is(err, session.ErrUnknownView):
		return "Unknown view."
	}
	return err.Error()
}

// wrap turns a generation failure into a UserError. Malformed replies keep
// their own message, everything else gets fallback.
func wrap(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var formatErr *llm.FormatError
	switch {
	case errors.As(err, &formatErr):
		return &UserError{Message: formatErr.Message, Err: err}
	case errors.Is(err, shopping.ErrEmptyInput):
		return &UserError{Message: MsgNoGroceryInput, Err: err}
	case errors.Is(err, tracker.ErrEmptyInput):
		return &UserError{Message: MsgNoIntakeInput, Err: err}
	case errors.Is(err, session.ErrNotLoggedIn):
		return err
	}
	return &UserError{Message: fallback, Err: err}
}
