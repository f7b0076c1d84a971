package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// nonFieldErrorsKey is DRF's conventional bucket for errors that belong
// to no particular form field; its items appear unprefixed.
const nonFieldErrorsKey = "non_field_errors"

// AuthError is a normalized server error: a single human-readable
// message plus a per-field breakdown the UI can attach to form controls.
type AuthError struct {
	Message     string
	FieldErrors map[string]string
	Status      int
}

func (e *AuthError) Error() string {
	return e.Message
}

// parseAuthError normalizes the heterogeneous error bodies the API
// returns: a bare JSON string, a flat object of field -> message, an
// object of field -> [messages], or arrays whose items are objects
// carrying a "message" field. Message parts are collected in the body's
// own key order and joined with "; ".
func parseAuthError(status int, body []byte, fallback string) *AuthError {
	out := &AuthError{
		Message:     fallback,
		FieldErrors: make(map[string]string),
		Status:      status,
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return out
	}

	// Bare string body is used verbatim
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		if s != "" {
			out.Message = s
		}
		return out
	}

	parts := collectOrdered(body, out.FieldErrors)
	if len(parts) > 0 {
		out.Message = strings.Join(parts, "; ")
	}
	return out
}

// collectOrdered walks a JSON object preserving its key order, which a
// map round-trip would destroy. Each key's messages land in fields and
// the flattened parts come back in encounter order.
func collectOrdered(body []byte, fields map[string]string) []string {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var parts []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return parts
		}
		key, ok := keyTok.(string)
		if !ok {
			return parts
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return parts
		}

		var fieldParts []string
		switch v := value.(type) {
		case []interface{}:
			for _, item := range v {
				msg := itemMessage(item)
				fieldParts = append(fieldParts, msg)
				if key == nonFieldErrorsKey {
					parts = append(parts, msg)
				} else {
					parts = append(parts, fmt.Sprintf("%s: %s", key, msg))
				}
			}
		case string:
			fieldParts = append(fieldParts, v)
			parts = append(parts, fmt.Sprintf("%s: %s", key, v))
		default:
			raw, _ := json.Marshal(value)
			fieldParts = append(fieldParts, string(raw))
			parts = append(parts, fmt.Sprintf("%s: %s", key, raw))
		}

		if len(fieldParts) > 0 {
			fields[key] = strings.Join(fieldParts, "; ")
		}
	}
	return parts
}

// itemMessage renders one array entry: objects carrying a "message"
// field contribute it, everything else is stringified.
func itemMessage(item interface{}) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	raw, _ := json.Marshal(item)
	return string(raw)
}
