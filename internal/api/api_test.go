package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/mocks"
	"github.com/pageza/fridgechef/backend/internal/types"
)

const testToken = "good-token"

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router  *gin.Engine
	auth    *mocks.MockAuthService
	saved   *mocks.MockSavedRecipeService
	popular *mocks.MockPopularRecipeService
	images  *mocks.MockImageService
	userID  uuid.UUID
}

func newTestAPI(t *testing.T, chat ChatRouter) *testAPI {
	t.Helper()
	a := &testAPI{
		router:  gin.New(),
		auth:    new(mocks.MockAuthService),
		saved:   new(mocks.MockSavedRecipeService),
		popular: new(mocks.MockPopularRecipeService),
		images:  new(mocks.MockImageService),
		userID:  uuid.New(),
	}
	a.auth.On("ValidateToken", testToken).Return(&types.TokenClaims{UserID: a.userID, Email: "cook@example.com"}, nil).Maybe()
	a.auth.On("ValidateToken", mock.Anything).Return(nil, errors.New("token is malformed")).Maybe()

	RegisterRoutes(a.router, Dependencies{
		Auth:         a.auth,
		SavedRecipes: a.saved,
		Popular:      a.popular,
		Images:       a.images,
		Chat:         chat,
		Logger:       zap.NewNop().Sugar(),
	})
	t.Cleanup(func() {
		a.saved.AssertExpectations(t)
		a.popular.AssertExpectations(t)
		a.images.AssertExpectations(t)
	})
	return a
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
