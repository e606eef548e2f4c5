package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/moneyon/moneyon_server/internal/apperr"
	"github.com/moneyon/moneyon_server/internal/config"
	"github.com/moneyon/moneyon_server/internal/identity"
	"github.com/moneyon/moneyon_server/internal/logging"
)

type testEnv struct {
	app   *fiber.App
	mr    *miniredis.Miniredis
	users identity.Repository
}

func setupTestApp(t *testing.T) testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { cache.Close() })

	logger := logging.Discard()
	users := identity.NewMemoryRepository()
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(logger)})
	err := Setup(app, Deps{
		Cfg: config.Config{
			AppEnv:         "test",
			StoreDriver:    config.StoreMemory,
			CORSOrigin:     "*",
			LoginRateLimit: 3,
			IdempotencyTTL: time.Minute,
		},
		Users:  users,
		Hasher: identity.BcryptHasher{Cost: bcrypt.MinCost},
		Cache:  cache,
		Logger: logger,
	})
	require.NoError(t, err)
	return testEnv{app: app, mr: mr, users: users}
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(payload)
}

func TestSetupRequiresStore(t *testing.T) {
	err := Setup(fiber.New(), Deps{})
	assert.Error(t, err)
}

func TestLiveness(t *testing.T) {
	env := setupTestApp(t)

	resp, body := do(t, env.app, fiber.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, livenessMessage, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestHealthz(t *testing.T) {
	env := setupTestApp(t)

	resp, body := do(t, env.app, fiber.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decoded struct {
		Status map[string]string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, map[string]string{"memory": "ok", "redis": "ok"}, decoded.Status)

	env.mr.Close()
	resp, _ = do(t, env.app, fiber.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	env := setupTestApp(t)
	register := `{"name":"Alice","pin":"1234","mobileNumber":"0170000000","email":"a@x.com"}`

	resp, body := do(t, env.app, fiber.MethodPost, "/api/auth/register", register, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.JSONEq(t, `{"message":"User registered successfully. Awaiting admin approval."}`, body)

	resp, body = do(t, env.app, fiber.MethodPost, "/api/auth/register",
		`{"name":"Alice","pin":"1234","mobileNumber":"0181111111","email":"a@x.com"}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User already exists with this mobile number or email","code":"DUPLICATE_USER"}`, body)

	resp, body = do(t, env.app, fiber.MethodPost, "/api/auth/login", `{"emailOrMobile":"a@x.com","pin":"1234"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Alice","mobileNumber":"0170000000","balance":0,"photoURL":"","role":""}`, body)

	resp, body = do(t, env.app, fiber.MethodPost, "/api/auth/login", `{"emailOrMobile":"a@x.com","pin":"9999"}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Invalid credentials","code":"INVALID_CREDENTIALS"}`, body)

	resp, body = do(t, env.app, fiber.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, body)
}

func TestRegisterRetryWithIdempotencyKey(t *testing.T) {
	env := setupTestApp(t)
	register := `{"name":"Dan","pin":"2468","mobileNumber":"0160000000","email":"d@x.com"}`
	headers := map[string]string{"Idempotency-Key": "reg-1"}

	first, firstBody := do(t, env.app, fiber.MethodPost, "/api/auth/register", register, headers)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	retry, retryBody := do(t, env.app, fiber.MethodPost, "/api/auth/register", register, headers)
	assert.Equal(t, http.StatusCreated, retry.StatusCode)
	assert.Equal(t, firstBody, retryBody)

	plain, _ := do(t, env.app, fiber.MethodPost, "/api/auth/register", register, nil)
	assert.Equal(t, http.StatusBadRequest, plain.StatusCode)
}

func TestLoginIsRateLimited(t *testing.T) {
	env := setupTestApp(t)
	attempt := `{"emailOrMobile":"ghost@x.com","pin":"0000"}`

	for i := 0; i < 3; i++ {
		resp, _ := do(t, env.app, fiber.MethodPost, "/api/auth/login", attempt, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	resp, body := do(t, env.app, fiber.MethodPost, "/api/auth/login", attempt, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, apperr.CodeTooManyRequests)
}
