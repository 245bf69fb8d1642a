package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type claims struct{ id uuid.UUID }

func (c claims) GetUserID() uuid.UUID { return c.id }

type fakeValidator struct {
	valid string
	id    uuid.UUID
}

func (f fakeValidator) ValidateToken(token string) (UserIDGetter, error) {
	if token != f.valid {
		return nil, errors.New("invalid token")
	}
	return claims{id: f.id}, nil
}

func TestAuthMiddleware(t *testing.T) {
	id := uuid.New()
	v := fakeValidator{valid: "good", id: id}

	var seen uuid.UUID
	h := AuthMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err := GetUserID(r)
		assert.NoError(t, err)
		seen = got
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "valid bearer", header: "Bearer good", want: http.StatusNoContent},
		{name: "case insensitive scheme", header: "bearer good", want: http.StatusNoContent},
		{name: "query token", query: "?access_token=good", want: http.StatusNoContent},
		{name: "header wins over query", header: "Bearer bad", query: "?access_token=good", want: http.StatusUnauthorized},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", want: http.StatusUnauthorized},
		{name: "extra parts", header: "Bearer good extra", want: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/sessions"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, id, seen)
			}
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	_, err := GetUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
