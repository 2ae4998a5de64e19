package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func sign(t *testing.T, key string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": 7,
		"email":    "admin@example.com",
		"exp":      exp.Unix(),
	})
	s, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func TestParseToken(t *testing.T) {
	claims, err := ParseToken(secret, sign(t, secret, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 7, claims.AdminID)
	assert.Equal(t, "admin@example.com", claims.Email)

	_, err = ParseToken(secret, sign(t, "other", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(secret, sign(t, secret, time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireAdminForWrites(t *testing.T) {
	var seen *Claims
	h := RequireAdminForWrites(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"read is public", http.MethodGet, "", http.StatusNoContent},
		{"write without token", http.MethodPost, "", http.StatusUnauthorized},
		{"write with bad token", http.MethodDelete, "Bearer nope", http.StatusUnauthorized},
		{"write with basic auth", http.MethodPut, "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized},
		{"write with token", http.MethodPatch, "Bearer " + sign(t, secret, time.Now().Add(time.Hour)), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(tt.method, "/api/listings/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["detail"])
			}
			if tt.method == http.MethodPatch {
				require.NotNil(t, seen)
				assert.Equal(t, 7, seen.AdminID)
			}
		})
	}
}
