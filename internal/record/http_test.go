// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package record

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/readanddownload/internal/platform/apperr"
	"github.com/taibuivan/readanddownload/internal/platform/middleware"
	"github.com/taibuivan/readanddownload/internal/platform/notify"
	"github.com/taibuivan/readanddownload/internal/platform/respond"
	"github.com/taibuivan/readanddownload/internal/platform/sec"
)

const scenarioBody = `{"userId":"u1","isbn":"9780451524935","title":"1984","author":"George Orwell","language":"en"}`

type testAPI struct {
	router   http.Handler
	repos    map[string]*memoryRepository
	notifier *recordingNotifier
	tokens   *sec.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	tokens, err := sec.NewHMACTokenService("test-secret", "")
	require.NoError(t, err)

	api := &testAPI{
		repos:    map[string]*memoryRepository{},
		notifier: &recordingNotifier{},
		tokens:   tokens,
	}

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens, nil))
	for _, kind := range []Kind{Downloads, OnlineReadings} {
		repo := &memoryRepository{}
		api.repos[kind.Name] = repo
		NewHandler(newTestService(kind, repo, api.notifier, false)).RegisterRoutes(router)
	}

	api.router = router
	return api
}

func (api *testAPI) token(t *testing.T, role sec.UserRole) string {
	t.Helper()
	token, err := api.tokens.GenerateAccessToken("u1", "ana", string(role), time.Hour)
	require.NoError(t, err)
	return token
}

func (api *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	api.router.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out), recorder.Body.String())
	return out
}

// # Create

func TestHTTP_CreateScenario(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/downloads", api.token(t, sec.RoleUser), scenarioBody)

	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	view := decode[View](t, recorder)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "u1", view.UserID)
	assert.Equal(t, "9780451524935", view.ISBN)
	assert.Equal(t, "1984", view.Title)
	assert.Equal(t, "George Orwell", view.Author)
	assert.Equal(t, "en", view.Language)
	assert.Equal(t, "PDF", view.Format)
	assert.Equal(t, fixedNow.Format(DateLayout), view.Date)
}

func TestHTTP_CreateShortTitle(t *testing.T) {
	api := newTestAPI(t)
	body := strings.Replace(scenarioBody, `"1984"`, `"ab"`, 1)

	recorder := api.do(t, http.MethodPost, "/downloads", api.token(t, sec.RoleUser), body)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decode[respond.ErrorEnvelope](t, recorder)
	assert.Equal(t, "El título debe tener entre 3 y 121 caracteres.", envelope.Message)
	assert.Equal(t, apperr.CodeValidation, envelope.Code)
	assert.Empty(t, api.repos[Downloads.Name].records)
}

func TestHTTP_CreateInvalidISBNPersistsNothing(t *testing.T) {
	api := newTestAPI(t)
	body := strings.Replace(scenarioBody, "9780451524935", "978-0451524935", 1)

	recorder := api.do(t, http.MethodPost, "/downloads", api.token(t, sec.RoleUser), body)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgISBN, decode[respond.ErrorEnvelope](t, recorder).Message)
	assert.Empty(t, api.repos[Downloads.Name].records)
}

func TestHTTP_CreateDuplicateISBN(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, sec.RoleUser)

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/downloads", token, scenarioBody).Code)
	recorder := api.do(t, http.MethodPost, "/downloads", token, scenarioBody)

	require.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, apperr.CodeConflict, decode[respond.ErrorEnvelope](t, recorder).Code)
}

func TestHTTP_CreateMalformedJSON(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodPost, "/downloads", api.token(t, sec.RoleUser), `{"userId":`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, apperr.CodeValidation, decode[respond.ErrorEnvelope](t, recorder).Code)
}

func TestHTTP_OnlineReadingRejectsEPUB(t *testing.T) {
	api := newTestAPI(t)
	body := strings.Replace(scenarioBody, `"language":"en"`, `"language":"en","format":"EPUB"`, 1)

	recorder := api.do(t, http.MethodPost, "/onlineReadings", api.token(t, sec.RoleUser), body)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "El formato debe ser uno de los siguientes: PDF.", decode[respond.ErrorEnvelope](t, recorder).Message)
}

// # Read / Delete

func TestHTTP_RoundTripAndDelete(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, sec.RoleUser)
	admin := api.token(t, sec.RoleAdmin)

	created := decode[View](t, api.do(t, http.MethodPost, "/downloads", user, scenarioBody))

	first := api.do(t, http.MethodGet, "/downloads/"+created.ID, user, "")
	second := api.do(t, http.MethodGet, "/downloads/"+created.ID, user, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, created, decode[View](t, first))

	deleted := api.do(t, http.MethodDelete, "/downloads/"+created.ID, admin, "")
	require.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, "Descarga eliminada", decode[respond.MessageEnvelope](t, deleted).Message)

	gone := api.do(t, http.MethodGet, "/downloads/"+created.ID, user, "")
	require.Equal(t, http.StatusNotFound, gone.Code)
	assert.Equal(t, "Descarga no encontrada", decode[respond.ErrorEnvelope](t, gone).Message)
}

func TestHTTP_DeleteMissingReading(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodDelete, "/onlineReadings/nope", api.token(t, sec.RoleAdmin), "")

	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Lectura en línea no encontrada", decode[respond.ErrorEnvelope](t, recorder).Message)
}

func TestHTTP_GetStoreFailure(t *testing.T) {
	api := newTestAPI(t)
	api.repos[Downloads.Name].failure = apperr.StoreUnavailable(errors.New("connection refused"))

	recorder := api.do(t, http.MethodGet, "/downloads/abc", api.token(t, sec.RoleUser), "")

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	envelope := decode[respond.ErrorEnvelope](t, recorder)
	assert.Equal(t, apperr.CodeStoreUnavailable, envelope.Code)
	assert.NotContains(t, recorder.Body.String(), "connection refused")
}

func TestHTTP_List(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token(t, sec.RoleAdmin)

	empty := api.do(t, http.MethodGet, "/onlineReadings", admin, "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `{"onlineReadings":[]}`, empty.Body.String())

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/downloads", admin, scenarioBody).Code)

	listed := decode[map[string][]View](t, api.do(t, http.MethodGet, "/downloads", admin, ""))
	require.Len(t, listed["downloads"], 1)
	assert.Equal(t, "1984", listed["downloads"][0].Title)
}

func TestHTTP_UpdatePartial(t *testing.T) {
	api := newTestAPI(t)
	admin := api.token(t, sec.RoleAdmin)
	created := decode[View](t, api.do(t, http.MethodPost, "/downloads", admin, scenarioBody))

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		recorder := api.do(t, method, "/downloads/"+created.ID, admin, `{"format":"EPUB"}`)

		require.Equal(t, http.StatusOK, recorder.Code, method)
		updated := decode[View](t, recorder)
		assert.Equal(t, "EPUB", updated.Format)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.Date, updated.Date)
	}
}

// # Authorization matrix

func TestHTTP_Authorization(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, sec.RoleUser)
	guest := api.token(t, sec.UserRole("Guest"))

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
		code   string
	}{
		{"list needs token", http.MethodGet, "/downloads", "", "", http.StatusUnauthorized, apperr.CodeMissingCredential},
		{"list is admin only", http.MethodGet, "/downloads", user, "", http.StatusForbidden, apperr.CodeForbidden},
		{"delete is admin only", http.MethodDelete, "/downloads/x", user, "", http.StatusForbidden, apperr.CodeForbidden},
		{"update is admin only", http.MethodPut, "/onlineReadings/x", user, `{}`, http.StatusForbidden, apperr.CodeForbidden},
		{"create rejects unknown role", http.MethodPost, "/downloads", guest, scenarioBody, http.StatusForbidden, apperr.CodeForbidden},
		{"count needs token", http.MethodGet, "/downloads/count/9780451524935", "", "", http.StatusUnauthorized, apperr.CodeMissingCredential},
		{"bad token", http.MethodGet, "/downloads/x", "garbage", "", http.StatusUnauthorized, apperr.CodeInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := api.do(t, tt.method, tt.path, tt.token, tt.body)

			require.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.code, decode[respond.ErrorEnvelope](t, recorder).Code)
		})
	}
}

func TestHTTP_RoleCompareIgnoresCase(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodGet, "/downloads", api.token(t, sec.UserRole("admin")), "")

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHTTP_NumericUserIDToken(t *testing.T) {
	api := newTestAPI(t)

	// Shape signed by the users service: numeric id, email, rol.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    1,
		"email": "ana@example.com",
		"rol":   "User",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/downloads", token, scenarioBody).Code)

	recorder := api.do(t, http.MethodGet, "/downloads/count/9780451524935", token, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.JSONEq(t, `{"count":1}`, recorder.Body.String())

	require.Len(t, api.notifier.calls, 1)
	assert.Equal(t, token, api.notifier.calls[0].Bearer)
}

// # Counters

func TestHTTP_CountByISBN(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, sec.RoleUser)

	none := api.do(t, http.MethodGet, "/downloads/count/9780451524935", user, "")
	require.Equal(t, http.StatusNotFound, none.Code)
	assert.Equal(t, "No se encontraron descargas para este libro.", decode[respond.ErrorEnvelope](t, none).Message)
	assert.Empty(t, api.notifier.calls)

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/downloads", user, scenarioBody).Code)

	recorder := api.do(t, http.MethodGet, "/downloads/count/9780451524935", user, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"count":1}`, recorder.Body.String())

	require.Len(t, api.notifier.calls, 1)
	call := api.notifier.calls[0]
	assert.Equal(t, notify.Catalogue, call.Service)
	assert.Equal(t, "/api/v1/books/9780451524935/downloads", call.Path)
	assert.Equal(t, user, call.Bearer)
	assert.Equal(t, map[string]int64{"downloadCount": 1}, call.Payload)
}

func TestHTTP_CountByISBN_Invalid(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.do(t, http.MethodGet, "/downloads/count/12AB", api.token(t, sec.RoleUser), "")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, MsgISBN, decode[respond.ErrorEnvelope](t, recorder).Message)
}

func TestHTTP_CountByISBN_DownstreamFailure(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, sec.RoleUser)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/onlineReadings", user, scenarioBody).Code)
	api.notifier.failure = apperr.Downstream("Error al actualizar el servicio de catálogo", "Libro no encontrado", errors.New("404"))

	recorder := api.do(t, http.MethodGet, "/onlineReadings/count/9780451524935", user, "")

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	envelope := decode[respond.ErrorEnvelope](t, recorder)
	assert.Equal(t, apperr.CodeDownstream, envelope.Code)
	assert.Equal(t, "Libro no encontrado", envelope.Error)
}

func TestHTTP_CountByUser(t *testing.T) {
	api := newTestAPI(t)
	user := api.token(t, sec.RoleUser)
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/onlineReadings", user, scenarioBody).Code)

	missing := api.do(t, http.MethodGet, "/onlineReadings/user/count", user, "")
	require.Equal(t, http.StatusBadRequest, missing.Code)

	recorder := api.do(t, http.MethodGet, "/onlineReadings/user/count?userId=u1", user, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decode[UserCountResponse](t, recorder)
	assert.Equal(t, int64(1), body.Count)
	assert.Equal(t, "El usuario u1 tiene 1 lecturas en línea.", body.Message)

	require.Len(t, api.notifier.calls, 1)
	assert.Equal(t, notify.Users, api.notifier.calls[0].Service)
	assert.Equal(t, "/api/v1/users/u1/readings", api.notifier.calls[0].Path)
}
