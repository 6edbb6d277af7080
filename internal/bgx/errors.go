package bgx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is the normalized form of every non-2xx API response. Field
// errors keep the server's per-field message arrays; non-field failures
// (the backend reports them under "detail" or "non_field_errors") and
// transport-level failures land in General.
type APIError struct {
	StatusCode int
	Fields     map[string][]string
	General    []string
}

func (e *APIError) Error() string {
	var parts []string
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	parts = append(parts, e.General...)
	if len(parts) == 0 {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return "api error: " + strings.Join(parts, "; ")
}

// FieldError reports the first message for a field, or "" when clean.
func (e *APIError) FieldError(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// GeneralError reports the first non-field message, or "" when clean.
func (e *APIError) GeneralError() string {
	if len(e.General) > 0 {
		return e.General[0]
	}
	return ""
}

// decodeAPIError normalizes an error response body. The backend's shape
// varies: {"field": ["msg", ...]}, {"field": "msg"}, {"detail": "msg"},
// {"non_field_errors": ["msg"]}. Anything that does not parse becomes a
// generic transport error so the flows always have something to render.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Fields:     make(map[string][]string),
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		apiErr.General = []string{"The server could not be reached. Please try again."}
		return apiErr
	}

	for key, val := range raw {
		msgs := decodeMessages(val)
		if len(msgs) == 0 {
			continue
		}
		switch key {
		case "detail", "non_field_errors", "message", "general":
			apiErr.General = append(apiErr.General, msgs...)
		default:
			apiErr.Fields[key] = msgs
		}
	}

	if len(apiErr.Fields) == 0 && len(apiErr.General) == 0 {
		apiErr.General = []string{fmt.Sprintf("Request failed with status %d.", status)}
	}
	return apiErr
}

// decodeMessages accepts either a single string or an array of strings.
func decodeMessages(val json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(val, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(val, &many); err == nil {
		return many
	}
	return nil
}
