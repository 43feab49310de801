package types

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Payload is the opaque engine payload attached to a suggestion. Fields are
// probed by type at read time; nothing about its schema is assumed.
type Payload map[string]any

// String returns a non-blank string field.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Number returns a finite numeric field.
func (p Payload) Number(key string) (float64, bool) {
	return toFloat(p[key])
}

// Suggestion is a single overlay suggestion as returned by the backend.
type Suggestion struct {
	ID        int64    `json:"id"`
	Code      string   `json:"code"`
	Status    string   `json:"status,omitempty"`
	Severity  string   `json:"severity,omitempty"`
	Payload   Payload  `json:"engine_payload,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
	Title     string   `json:"title,omitempty"`
	Rationale string   `json:"rationale,omitempty"`
}

// UnmarshalJSON decodes a suggestion without failing on missing, null or
// wrongly-typed fields. Both snake_case and camelCase keys are accepted.
// Only syntactically invalid JSON is an error.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Suggestion{}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	s.ID = toInt64(raw["id"])
	s.Code = pickString(raw, "code")
	s.Status = pickString(raw, "status")
	s.Severity = pickString(raw, "severity")
	s.CreatedAt = pickString(raw, "created_at", "createdAt")
	s.UpdatedAt = pickString(raw, "updated_at", "updatedAt")
	s.Title = pickString(raw, "title")
	s.Rationale = pickString(raw, "rationale")
	if f, ok := toFloat(raw["score"]); ok {
		s.Score = &f
	}
	s.Payload = toPayload(pick(raw, "engine_payload", "enginePayload"))
	return nil
}

func pick(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func pickString(raw map[string]any, keys ...string) string {
	s, _ := pick(raw, keys...).(string)
	return s
}

// toPayload accepts an object, or a string holding a JSON object.
func toPayload(v any) Payload {
	switch t := v.(type) {
	case map[string]any:
		return Payload(t)
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(t), &m); err != nil {
			return nil
		}
		return Payload(m)
	default:
		return nil
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int64(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
