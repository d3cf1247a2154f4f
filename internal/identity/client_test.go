package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/v1/", "test-key", 5*time.Second, zap.NewNop().Sugar())
}

func TestSignUpSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signUp", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann@example.com", body["email"])
		assert.Equal(t, "secret1", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]string{"localId": "uid-1", "email": "ann@example.com", "idToken": "tok"})
	})

	acct, err := client.SignUp(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, Account{UID: "uid-1", Email: "ann@example.com", IDToken: "tok"}, acct)
}

func TestSignInMapsProviderErrors(t *testing.T) {
	cases := map[string]error{
		"EMAIL_NOT_FOUND":           ErrInvalidCredentials,
		"INVALID_LOGIN_CREDENTIALS": ErrInvalidCredentials,
		"EMAIL_EXISTS":              ErrEmailExists,
		"WEAK_PASSWORD : Password should be at least 6 characters": ErrWeakPassword,
		"TOKEN_EXPIRED": ErrTokenExpired,
	}
	for message, want := range cases {
		t.Run(message, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": message}})
			})
			_, err := client.SignIn(context.Background(), "ann@example.com", "bad")
			require.ErrorIs(t, err, want)
		})
	}
}

func TestSignInUnknownProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := client.SignIn(context.Background(), "ann@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAccountOmitsEmptyFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:update", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "id-token", body["idToken"])
		assert.Equal(t, "newpass", body["password"])
		_, hasEmail := body["email"]
		assert.False(t, hasEmail)
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, client.UpdateAccount(context.Background(), "id-token", "", "newpass"))
}
