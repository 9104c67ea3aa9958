package shared

import (
	"testing"
	"time"
)

func TestNewAgentMeta(t *testing.T) {
	start := time.Now().Add(-50 * time.Millisecond)
	meta := NewAgentMeta(AgentMealPlanner, TokenUsage{TotalTokens: 12, Model: "m"}, start, true)

	if meta.AgentName != AgentMealPlanner || !meta.Success {
		t.Errorf("Unexpected meta %+v", meta)
	}
	if meta.Latency < 50*time.Millisecond {
		t.Errorf("Expected latency of at least 50ms, got %v", meta.Latency)
	}
	if meta.Usage.TotalTokens != 12 {
		t.Errorf("Expected usage to be kept, got %+v", meta.Usage)
	}
}
