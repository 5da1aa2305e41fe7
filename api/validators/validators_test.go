package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/stashkeeper-backend/pkg/errors"
)

type samplePayload struct {
	Name string `json:"name" validate:"required,max=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		details any
		wantErr bool
	}{
		{name: "valid", body: `{"name":"quilt"}`},
		{name: "unknown field", body: `{"name":"a","color":"red"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "missing name", body: `{}`, wantErr: true, details: map[string]string{"name": "is required"}},
		{name: "too long", body: `{"name":"bedspread"}`, wantErr: true, details: map[string]string{"name": "must be at most 5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest samplePayload
			err := DecodeJSONBody(req, &dest)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
			if tc.details != nil {
				assert.Equal(t, tc.details, pkgerrors.As(err).Details())
			}
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&size=abc&big=1000", nil)

	v, err := ParseQueryInt(req, "page", 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ParseQueryInt(req, "missing", 7, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = ParseQueryInt(req, "size", 1, 1, 100)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = ParseQueryInt(req, "big", 1, 1, 100)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}

	id, err := ParseUUIDParam(withParam("0b5d0b6e-4c1c-4bb6-a2cf-7e59d2f0f4a1"), "id")
	require.NoError(t, err)
	assert.Equal(t, "0b5d0b6e-4c1c-4bb6-a2cf-7e59d2f0f4a1", id.String())

	_, err = ParseUUIDParam(withParam("nope"), "id")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
