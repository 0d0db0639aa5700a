package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog-service/internal/shared/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusName(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", StatusName(http.StatusNotFound))
	assert.Equal(t, "NOT_ACCEPTABLE", StatusName(http.StatusNotAcceptable))
	assert.Equal(t, "TOO_MANY_REQUESTS", StatusName(http.StatusTooManyRequests))
}

func TestWrapMapsErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"typed", NotAcceptable("nope"), http.StatusNotAcceptable, "nope"},
		{"plain", errors.New("db exploded"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := Wrap(func(w http.ResponseWriter, r *http.Request) error { return tc.err })
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, rec.Code)
			var p ErrorPayload
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
			assert.Equal(t, tc.status, p.Status)
			assert.Equal(t, StatusName(tc.status), p.Error)
			assert.Equal(t, tc.message, p.Message)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewManager([]byte("k"), time.Minute, time.Hour)
	protected := AuthMiddleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := UserFromCtx(r)
		require.NoError(t, err)
		WriteText(w, uid, http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, _ := tokens.MakeRefresh("alice")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access, _ := tokens.MakeAccess("alice")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestPathInt64(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /posts/{id}", Wrap(func(w http.ResponseWriter, r *http.Request) error {
		id, err := PathInt64(r, "id")
		if err != nil {
			return err
		}
		WriteJSON(w, id, http.StatusOK)
		return nil
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "42", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid post id: abc")
}
