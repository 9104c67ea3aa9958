package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FormatError reports a reply that could not be turned into the requested
// record: empty, not JSON, or not matching the schema.
type FormatError struct {
	// Message is safe to show to the user.
	Message string
	// Raw is the reply as received from the model.
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Decode extracts the JSON object from content, validates it against schema
// and unmarshals it into target.
func Decode(content string, schema *Schema, target any) error {
	payload := extractJSON(content)
	if payload == "" {
		return errors.New("response does not contain a JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			return fmt.Errorf("response does not match schema: %w", err)
		}
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// DecodeOrFormatError is Decode with any failure wrapped in a FormatError
// carrying message.
func DecodeOrFormatError(content string, schema *Schema, target any, message string) error {
	if err := Decode(content, schema, target); err != nil {
		return &FormatError{Message: message, Raw: content, Err: err}
	}
	return nil
}

// extractJSON strips Markdown code fences and any prose around the outermost
// JSON object.
func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return trimmed[start : end+1]
}
