package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

var testSecret = []byte("test-secret")

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	a, err := auth.NewAuthority(testSecret, 30*time.Minute)
	require.NoError(t, err)
	svc := services.NewUserService(nil, repomanager.NewInMemoryRepositoryManager(), a, services.NewBcryptHasher(bcrypt.MinCost), logging.NopLogger{})
	return NewRouter(svc, logging.NopLogger{})
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) (int, map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]string{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func registerAlice(t *testing.T, h http.Handler) string {
	t.Helper()
	code, body := do(t, h, http.MethodPost, "/api/auth/register", registerRequest{
		Name: "alice_w", Email: "alice@example.com", Password: "Abcdefghijk1!",
	})
	require.Equal(t, http.StatusOK, code, body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func expiredToken(t *testing.T, id string) string {
	t.Helper()
	past := time.Now().Add(-1801 * time.Second)
	a, err := auth.NewAuthority(testSecret, 30*time.Minute, auth.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	tok, err := a.Issue(&models.Account{ID: id, Username: "alice_w", Email: "alice@example.com"})
	require.NoError(t, err)
	return tok
}

func TestRegisterEndpoint(t *testing.T) {
	h := newTestRouter(t)
	registerAlice(t, h)

	tests := []struct {
		name string
		req  registerRequest
		want string
	}{
		{"duplicate email", registerRequest{"alice_x", "alice@example.com", "Abcdefghijk1!"}, msgEmailExists},
		{"duplicate username", registerRequest{"alice_w", "bob@example.com", "Abcdefghijk1!"}, msgEmailExists},
		{"missing name", registerRequest{"", "c@example.com", "Abcdefghijk1!"}, validation.MsgNameRequired},
		{"bad email", registerRequest{"charlie", "nope", "Abcdefghijk1!"}, validation.MsgEmailRequired},
		{"weak password", registerRequest{"charlie", "c@example.com", "abc"}, validation.MsgPasswordComplexity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, h, http.MethodPost, "/api/auth/register", tt.req)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, body["message"])
		})
	}
}

func TestRegisterEndpoint_MalformedBody(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	h := newTestRouter(t)
	registerAlice(t, h)

	code, body := do(t, h, http.MethodPost, "/api/auth/login", loginRequest{"alice@example.com", "Abcdefghijk1!"})
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])

	code, wrong := do(t, h, http.MethodPost, "/api/auth/login", loginRequest{"alice@example.com", "Wrong-password-1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, msgInvalidCredentials, wrong["message"])

	code, unknown := do(t, h, http.MethodPost, "/api/auth/login", loginRequest{"ghost@example.com", "Abcdefghijk1!"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, wrong, unknown)

	code, body = do(t, h, http.MethodPost, "/api/auth/login", loginRequest{"not-an-email", "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, validation.MsgEmailInvalid, body["message"])
}

func TestValidateTokenEndpoint(t *testing.T) {
	h := newTestRouter(t)
	tok := registerAlice(t, h)

	tests := []struct {
		name     string
		token    string
		wantCode int
		wantMsg  string
	}{
		{"valid", tok, http.StatusOK, msgTokenValid},
		{"missing", "", http.StatusBadRequest, msgNoToken},
		{"garbage", "garbage", http.StatusBadRequest, msgTokenInvalid},
		{"expired", expiredToken(t, "x"), StatusTokenExpired, msgTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, h, http.MethodPost, "/api/auth/validateToken", validateRequest{Token: tt.token})
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestRefreshEndpoint(t *testing.T) {
	h := newTestRouter(t)
	tok := registerAlice(t, h)

	code, body := do(t, h, http.MethodPost, "/api/auth/refresh", refreshRequest{RefreshToken: tok})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])

	unknown, err := func() (string, error) {
		a, err := auth.NewAuthority(testSecret, 30*time.Minute)
		if err != nil {
			return "", err
		}
		return a.Issue(&models.Account{ID: "gone"})
	}()
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		wantCode int
		wantMsg  string
	}{
		{"missing", "", http.StatusBadRequest, msgRefreshRequired},
		{"garbage", "a.b.c", http.StatusBadRequest, msgTokenInvalid},
		{"expired", expiredToken(t, "x"), StatusTokenExpired, msgTokenExpired},
		{"account gone", unknown, http.StatusBadRequest, msgRefreshInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, h, http.MethodPost, "/api/auth/refresh", refreshRequest{RefreshToken: tt.token})
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestUserEndpoints(t *testing.T) {
	h := newTestRouter(t)
	tok := registerAlice(t, h)

	_, body := do(t, h, http.MethodPost, "/api/auth/validateToken", validateRequest{Token: tok})
	require.Equal(t, msgTokenValid, body["message"])

	// recover the id from the token claims
	a, err := auth.NewAuthority(testSecret, 30*time.Minute)
	require.NoError(t, err)
	claims, err := a.Verify(tok)
	require.NoError(t, err)

	code, body := do(t, h, http.MethodGet, "/api/users/"+claims.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, claims.ID, body["_id"])
	assert.Equal(t, "alice_w", body["username"])

	code, body = do(t, h, http.MethodGet, "/api/users/nobody", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, msgUserNotFound, body["message"])

	t.Run("secure", func(t *testing.T) {
		path := "/api/users/secure/" + claims.ID

		code, body := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, msgNoToken, body["message"])

		code, body = do(t, h, http.MethodGet, path, nil, "Authorization", "Bearer junk")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, msgTokenInvalid, body["message"])

		code, _ = do(t, h, http.MethodGet, path, nil, "Authorization", "Bearer "+expiredToken(t, claims.ID))
		assert.Equal(t, StatusTokenExpired, code)

		code, body = do(t, h, http.MethodGet, path, nil, "Authorization", "Bearer "+tok)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "alice_w", body["username"])
	})
}

// failingService answers every call with a store failure.
type failingService struct{}

func (failingService) Register(context.Context, validation.RegisterInput) (string, error) {
	return "", common.ErrStore
}
func (failingService) Login(context.Context, validation.LoginInput) (string, error) {
	return "", common.ErrStore
}
func (failingService) VerifyToken(context.Context, string) (*auth.UserClaims, error) {
	return &auth.UserClaims{ID: "u"}, nil
}
func (failingService) RefreshToken(context.Context, string) (string, error) {
	return "", common.ErrStore
}
func (failingService) GetUser(context.Context, string) (*models.Account, error) {
	return nil, common.ErrStore
}

func TestEndpoints_StoreFailureIs500(t *testing.T) {
	h := NewRouter(failingService{}, logging.NopLogger{})

	for _, path := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh"} {
		code, body := do(t, h, http.MethodPost, path, map[string]string{"refreshToken": "x"})
		assert.Equal(t, http.StatusInternalServerError, code, path)
		assert.Equal(t, msgServerError, body["message"], path)
	}

	code, body := do(t, h, http.MethodGet, "/api/users/any", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, msgServerError, body["message"])
}

func TestNotFoundRoute(t *testing.T) {
	h := newTestRouter(t)
	code, _ := do(t, h, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
