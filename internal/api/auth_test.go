package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/fridgechef/backend/internal/models"
	"github.com/pageza/fridgechef/backend/internal/service"
)

func TestSignup(t *testing.T) {
	a := newTestAPI(t, nil)
	user := &models.User{ID: uuid.New(), Name: "Cook", Email: "cook@example.com"}
	a.auth.On("Signup", mock.Anything, "Cook", "cook@example.com", "secret1").Return(user, nil).Once()
	a.auth.On("Signup", mock.Anything, "Dup", "dup@example.com", "secret1").Return(nil, service.ErrUserExists).Once()

	tests := []struct {
		name   string
		body   interface{}
		status int
		errMsg string
	}{
		{"created", map[string]string{"name": "Cook", "email": "cook@example.com", "password": "secret1"}, http.StatusCreated, ""},
		{"missing field", map[string]string{"name": "Cook", "email": "cook@example.com"}, http.StatusBadRequest, "All fields are required"},
		{"bad json", "{", http.StatusBadRequest, "Invalid request body"},
		{"duplicate", map[string]string{"name": "Dup", "email": "dup@example.com", "password": "secret1"}, http.StatusConflict, "User with this email already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/api/v1/auth/signup", tt.body, false)
			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, body["error"])
				return
			}
			assert.Equal(t, "User created successfully", body["message"])
			assert.Equal(t, map[string]interface{}{
				"id": user.ID.String(), "name": "Cook", "email": "cook@example.com",
			}, body["user"])
		})
	}
	a.auth.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t, nil)
	user := &models.User{ID: uuid.New(), Name: "Cook", Email: "cook@example.com"}
	a.auth.On("Login", mock.Anything, "cook@example.com", "secret1").Return("signed", user, nil).Once()
	a.auth.On("Login", mock.Anything, "cook@example.com", "wrong").Return("", nil, service.ErrBadLogin).Once()
	a.auth.On("Login", mock.Anything, "db@example.com", "secret1").Return("", nil, errors.New("connection refused")).Once()

	w := a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "cook@example.com", "password": "secret1"}, false)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "signed", body["token"])

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "cook@example.com", "password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "db@example.com", "password": "secret1"}, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "cook@example.com"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	a.auth.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	a := newTestAPI(t, nil)
	a.auth.On("GetUserByID", mock.Anything, a.userID).Return(&models.User{ID: a.userID, Name: "Cook", Email: "cook@example.com"}, nil)

	w := a.do(t, http.MethodGet, "/api/v1/auth/me", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cook", decodeBody(t, w)["user"].(map[string]interface{})["name"])

	w = a.do(t, http.MethodGet, "/api/v1/auth/me", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
