package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marshalMap renders v the way it goes over the wire.
func marshalMap(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "cache-1"})
	require.NoError(t, err)

	got := marshalMap(t, result)
	assert.Equal(t, map[string]any{
		"v":       float64(1),
		"success": true,
		"data":    map[string]any{"id": "cache-1"},
	}, got)
}

func TestEnvelopeContract_Error(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "422", &APIError{
		status:  http.StatusUnprocessableEntity,
		Code:    "OUT_OF_RANGE",
		Message: "too far away",
		Details: domainerrors.OutOfRangeDetails{DistanceMeters: 3.5, RadiusMeters: 1},
	})
	require.NoError(t, err)

	got := marshalMap(t, result)
	assert.Equal(t, map[string]any{
		"v":       float64(1),
		"success": false,
		"error":   "too far away",
		"code":    "OUT_OF_RANGE",
		"details": map[string]any{"distance_meters": 3.5, "radius_meters": float64(1)},
	}, got)
}

func TestEnvelopeContract_ErrorStatusWithoutAPIError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "503", map[string]string{"status": "unhealthy"})
	require.NoError(t, err)

	got := marshalMap(t, result)
	assert.Equal(t, false, got["success"])
	assert.Contains(t, got, "data")
}

func TestErrorHandler_Mapping(t *testing.T) {
	RegisterErrorHandler(nil)

	tests := []struct {
		name       string
		status     int
		errs       []error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "domain error keeps its status",
			status:     http.StatusInternalServerError,
			errs:       []error{domainerrors.TokenExpired("invite expired")},
			wantStatus: http.StatusGone,
			wantCode:   "TOKEN_EXPIRED",
		},
		{
			name:       "wrapped domain error",
			status:     http.StatusInternalServerError,
			errs:       []error{errors.Join(errors.New("ctx"), domainerrors.Forbidden("no"))},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "store not found",
			status:     http.StatusInternalServerError,
			errs:       []error{store.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "schema validation becomes 400",
			status:     http.StatusUnprocessableEntity,
			errs:       []error{&huma.ErrorDetail{Location: "body.latitude", Message: "expected number <= 90"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "plain 422 becomes 400",
			status:     http.StatusUnprocessableEntity,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION",
		},
		{
			name:       "unexpected error is hidden",
			status:     http.StatusInternalServerError,
			errs:       []error{errors.New("disk on fire")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := huma.NewError(tt.status, "message", tt.errs...)
			assert.Equal(t, tt.wantStatus, err.GetStatus())

			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.NotContains(t, apiErr.Message, "disk on fire")
		})
	}
}
