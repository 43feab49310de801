package types_test

import (
	"encoding/json"
	"testing"

	"github.com/WSG23/overlayreview/internal/types"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	require.Equal(t, types.StatusPending, types.NormalizeStatus("PENDING"))
	require.Equal(t, types.StatusApproved, types.NormalizeStatus(" approved "))
	require.Equal(t, types.StatusRejected, types.NormalizeStatus("Rejected"))
	require.Equal(t, types.StatusSource, types.NormalizeStatus("proposed"))
	require.Equal(t, types.StatusSource, types.NormalizeStatus(""))
}

func TestStatusPriority(t *testing.T) {
	require.Greater(t, types.StatusPending.Priority(), types.StatusRejected.Priority())
	require.Greater(t, types.StatusRejected.Priority(), types.StatusApproved.Priority())
	require.Greater(t, types.StatusApproved.Priority(), types.StatusSource.Priority())
}

func TestParseStatus(t *testing.T) {
	s, err := types.ParseStatus("Pending")
	require.NoError(t, err)
	require.Equal(t, types.StatusPending, s)

	_, err = types.ParseStatus("done")
	require.Error(t, err)
}

func TestNormalizeSeverity(t *testing.T) {
	require.Equal(t, types.SeverityHigh, types.NormalizeSeverity("HIGH"))
	require.Equal(t, types.SeverityMedium, types.NormalizeSeverity("medium"))
	require.Equal(t, types.SeverityLow, types.NormalizeSeverity("low"))
	require.Equal(t, types.SeverityNone, types.NormalizeSeverity("none"))
	require.Equal(t, types.SeverityNone, types.NormalizeSeverity(""))
	require.Equal(t, types.SeverityNone, types.NormalizeSeverity("critical"))
}

func TestParseDecision(t *testing.T) {
	d, err := types.ParseDecision("approved")
	require.NoError(t, err)
	require.Equal(t, types.DecisionApprove, d)

	d, err = types.ParseDecision("REJECT")
	require.NoError(t, err)
	require.Equal(t, types.DecisionReject, d)

	_, err = types.ParseDecision("maybe")
	require.Error(t, err)
}

func TestSuggestionUnmarshalTolerant(t *testing.T) {
	data := []byte(`{
		"id": "42",
		"code": "unit_space_A1",
		"status": 7,
		"severity": null,
		"enginePayload": {"missing_metric": "front_setback_m", "area_sqm": "twelve"},
		"score": "0.5",
		"createdAt": "2025-01-01T00:00:00Z",
		"updated_at": 12345,
		"title": ["not", "a", "string"]
	}`)

	var s types.Suggestion
	require.NoError(t, json.Unmarshal(data, &s))
	require.Equal(t, int64(42), s.ID)
	require.Equal(t, "unit_space_A1", s.Code)
	require.Empty(t, s.Status)
	require.Empty(t, s.Severity)
	require.Nil(t, s.Score)
	require.Equal(t, "2025-01-01T00:00:00Z", s.CreatedAt)
	require.Empty(t, s.UpdatedAt)
	require.Empty(t, s.Title)

	metric, ok := s.Payload.String("missing_metric")
	require.True(t, ok)
	require.Equal(t, "front_setback_m", metric)
	_, ok = s.Payload.Number("area_sqm")
	require.False(t, ok)
}

func TestSuggestionUnmarshalStringPayload(t *testing.T) {
	var s types.Suggestion
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"engine_payload":"{\"area_sqm\":4.5}"}`), &s))
	area, ok := s.Payload.Number("area_sqm")
	require.True(t, ok)
	require.Equal(t, 4.5, area)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"engine_payload":"not json"}`), &s))
	require.Nil(t, s.Payload)
}

func TestSuggestionUnmarshalNonObject(t *testing.T) {
	var list []types.Suggestion
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"code":"a"}, "junk", null, 3]`), &list))
	require.Len(t, list, 4)
	require.Equal(t, "a", list[0].Code)
	require.Equal(t, types.Suggestion{}, list[1])

	require.Error(t, json.Unmarshal([]byte(`{"id":`), &types.Suggestion{}))
}

func TestSeverityCounts(t *testing.T) {
	var c types.SeverityCounts
	c.Add(types.SeverityHigh)
	c.Add(types.SeverityHigh)
	c.Add(types.SeverityNone)
	require.Equal(t, 2, c.Get(types.SeverityHigh))
	require.Equal(t, 1, c.Get(types.SeverityNone))
	require.Equal(t, 3, c.Total())
}
