package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one generation call.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
	// Success is false when the call failed or its reply was unusable.
	Success bool
}

// NewAgentMeta stamps the latency since start.
func NewAgentMeta(agent string, usage TokenUsage, start time.Time, success bool) AgentMeta {
	return AgentMeta{
		AgentName: agent,
		Usage:     usage,
		Latency:   time.Since(start),
		Success:   success,
	}
}

// Names of the generation agents, as recorded in metrics.
const (
	AgentMealPlanner      = "MealPlanner"
	AgentGroceryAssistant = "GroceryAssistant"
	AgentIntakeTracker    = "IntakeTracker"
)
