package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/seo-audit-console/auth"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

func TestHandleSignIn(t *testing.T) {
	logger := zap.NewNop()
	creds := models.Credentials{Email: "admin@example.com", Password: "correct-horse"}

	t.Run("registers, logs in and remembers email", func(t *testing.T) {
		session := auth.NewSession(logger)
		token := newToken(t, "admin@example.com", time.Now().Add(time.Hour))

		client := new(MockSessionClient)
		client.On("Register", mock.Anything, creds).Return(nil)
		client.On("Login", mock.Anything, creds).Run(func(mock.Arguments) { session.Set(token) }).Return(token, nil)

		remember := new(MockRememberer)
		remember.On("RememberLogin", mock.Anything, "admin@example.com").Return(nil)

		handler := NewSessionHandler(client, session, remember, "Admin@Example.com", logger)
		w := serve(http.MethodPost, "/session", "/session", `{"email":"admin@example.com","password":"correct-horse"}`, handler.HandleSignIn)

		assert.Equal(t, http.StatusOK, w.Code)
		var response SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Authenticated)
		assert.Equal(t, "admin@example.com", response.Email)
		assert.True(t, response.Admin)
		require.NotNil(t, response.ExpiresAt)

		client.AssertExpectations(t)
		remember.AssertExpectations(t)
	})

	t.Run("short password never reaches the backend", func(t *testing.T) {
		client := new(MockSessionClient)
		remember := new(MockRememberer)

		handler := NewSessionHandler(client, auth.NewSession(logger), remember, "", logger)
		w := serve(http.MethodPost, "/session", "/session", `{"email":"a@example.com","password":"short"}`, handler.HandleSignIn)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "password must be at least 8 characters", response.Detail)

		client.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		remember.AssertNotCalled(t, "RememberLogin", mock.Anything, mock.Anything)
	})

	t.Run("rejected login is unauthorized", func(t *testing.T) {
		client := new(MockSessionClient)
		client.On("Register", mock.Anything, creds).Return(nil)
		client.On("Login", mock.Anything, creds).Return("", services.NewAPIError(http.StatusUnauthorized, "Invalid credentials"))

		handler := NewSessionHandler(client, auth.NewSession(logger), new(MockRememberer), "", logger)
		w := serve(http.MethodPost, "/session", "/session", `{"email":"admin@example.com","password":"correct-horse"}`, handler.HandleSignIn)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("remember failure does not fail sign in", func(t *testing.T) {
		session := auth.NewSession(logger)
		client := new(MockSessionClient)
		client.On("Register", mock.Anything, creds).Return(nil)
		client.On("Login", mock.Anything, creds).Run(func(mock.Arguments) { session.Set("opaque") }).Return("opaque", nil)

		remember := new(MockRememberer)
		remember.On("RememberLogin", mock.Anything, mock.Anything).Return(errors.New("read-only"))

		handler := NewSessionHandler(client, session, remember, "admin@example.com", logger)
		w := serve(http.MethodPost, "/session", "/session", `{"email":"admin@example.com","password":"correct-horse"}`, handler.HandleSignIn)

		assert.Equal(t, http.StatusOK, w.Code)
		var response SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Authenticated)
		assert.False(t, response.Admin, "opaque credential carries no identity")
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := NewSessionHandler(new(MockSessionClient), auth.NewSession(logger), new(MockRememberer), "", logger)
		w := serve(http.MethodPost, "/session", "/session", `{"email":`, handler.HandleSignIn)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGetSession(t *testing.T) {
	logger := zap.NewNop()

	t.Run("anonymous", func(t *testing.T) {
		handler := NewSessionHandler(new(MockSessionClient), auth.NewSession(logger), new(MockRememberer), "admin@example.com", logger)
		w := serve(http.MethodGet, "/session", "/session", "", handler.HandleGetSession)

		var response SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.False(t, response.Authenticated)
		assert.False(t, response.Admin)
	})

	t.Run("non admin", func(t *testing.T) {
		session := auth.NewSession(logger)
		session.Set(newToken(t, "user@example.com", time.Now().Add(time.Hour)))

		handler := NewSessionHandler(new(MockSessionClient), session, new(MockRememberer), "admin@example.com", logger)
		w := serve(http.MethodGet, "/session", "/session", "", handler.HandleGetSession)

		var response SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Authenticated)
		assert.Equal(t, "user@example.com", response.Email)
		assert.False(t, response.Admin)
	})
}

func TestHandleSignOut(t *testing.T) {
	client := new(MockSessionClient)
	client.On("Logout").Return()

	handler := NewSessionHandler(client, auth.NewSession(nil), new(MockRememberer), "", zap.NewNop())
	w := serve(http.MethodDelete, "/session", "/session", "", handler.HandleSignOut)

	assert.Equal(t, http.StatusNoContent, w.Code)
	client.AssertExpectations(t)
}
