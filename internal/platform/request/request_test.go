// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/readanddownload/internal/platform/ctxutil"
	"github.com/taibuivan/readanddownload/internal/platform/sec"
	"github.com/taibuivan/readanddownload/internal/platform/validate"
)

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Title string `json:"title"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"1984"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), request, &target))
	assert.Equal(t, "1984", target.Title)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"title":`},
		{"empty", ``},
		{"too large", `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target map[string]any
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSON(httptest.NewRecorder(), request, &target)
			assert.ErrorIs(t, err, validate.ErrInvalidJSON)
		})
	}
}

func TestParam(t *testing.T) {
	router := chi.NewRouter()
	var got string
	router.Get("/downloads/{id}", func(w http.ResponseWriter, r *http.Request) {
		got = Param(r, "id")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/downloads/abc", nil))
	assert.Equal(t, "abc", got)
}

func TestQuery(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/downloads/user/count?userId=%20u1%20", nil)
	assert.Equal(t, "u1", Query(request, "userId"))
	assert.Equal(t, "", Query(request, "missing"))
}

func TestBearerToken(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", BearerToken(request))

	ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u1"}, "raw-token")
	assert.Equal(t, "raw-token", BearerToken(request.WithContext(ctx)))
}
