package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/api"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service"
	svcmocks "github.com/IvanChernomyrdin/go-signup-service/internal/server/service/mocks"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/validation"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

const notFoundBody = `{"errors":{"message":["The requested resource does not exist on this server!"]}}`

// memoryUsers — простое хранилище в памяти поверх мока, чтобы
// проверить сквозной сценарий signup -> signup -> list.
type memoryUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memoryUsers) bind(repo *svcmocks.MockUsersRepo) {
	repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, email string) (*models.User, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for _, u := range m.users {
				if u.Email == email {
					u := u
					return &u, nil
				}
			}
			return nil, nil
		})
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(_ context.Context, name, email, password string) (models.InsertResult, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			id := strings.Repeat("0", 23) + string(rune('1'+len(m.users)))
			m.users = append(m.users, models.User{ID: id, Name: name, Email: email, Password: password})
			return models.InsertResult{InsertedID: id, Acknowledged: true}, nil
		})
	repo.EXPECT().List(gomock.Any()).AnyTimes().
		DoAndReturn(func(context.Context) ([]models.User, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return append([]models.User(nil), m.users...), nil
		})
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := svcmocks.NewMockUsersRepo(ctrl)
	(&memoryUsers{}).bind(repo)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	// лёгкий argon2 для тестов
	cfg.Password.Argon2 = config.Argon2Config{Time: 1, MemoryKiB: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}
	// лимит запросов не должен мешать сценарию
	cfg.HTTP.RateLimit.RPS = 1000
	cfg.HTTP.RateLimit.Burst = 1000

	log := logger.NewNop()
	svc := service.NewServices(service.Repositories{Users: repo}, cfg, log)
	h := api.NewHandler(log, validation.New(), cfg.HTTP.MaxBodyBytes)

	return NewRouter(h, svc, cfg.HTTP, log)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_SignupTwiceThenList(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"name":"Ann","email":"ann@example.com","password":"secret1"}`

	rr := do(t, router, http.MethodPost, "/api/v1/signup", payload)
	require.Equal(t, http.StatusOK, rr.Code)

	var ins models.InsertResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ins))
	require.NotEmpty(t, ins.InsertedID)
	require.True(t, ins.Acknowledged)

	rr = do(t, router, http.MethodPost, "/api/v1/signup", payload)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.JSONEq(t, `{"error":"email ann@example.com is taken"}`, rr.Body.String())

	rr = do(t, router, http.MethodPost, "/api/v1/signup", `{"name":"Bob","email":"bob@example.com","password":"secret2"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/api/v1/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, 2)
	// пароль хранится хэшем
	require.True(t, strings.HasPrefix(users[0].Password, "argon2id$"))
}

func TestRouter_ListWithoutTrailingSlash(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodGet, "/api/v1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

// мусор после JSON и тело не-JSON отклоняются до сервиса
func TestRouter_SignupMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/api/v1/signup",
		`{"name":"Ann","email":"ann@example.com","password":"secret1"} trailing-garbage`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Contains(t, body.Error, "trailing characters")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup",
		strings.NewReader(`{"name":"Ann","email":"ann@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "text/plain")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	// пользователь так и не появился
	rr = do(t, router, http.MethodGet, "/api/v1/", "")
	require.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestRouter_SignupValidation(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodPost, "/api/v1/signup", `{"name":"","email":"bad","password":"12"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Contains(t, body.Errors, "name")
	require.Contains(t, body.Errors, "email")
	require.Contains(t, body.Errors, "password")
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api/v1/nope"},
		{http.MethodDelete, "/api/v1/signup"},
		{http.MethodGet, "/swagger/index.html"},
	} {
		rr := do(t, router, tc.method, tc.path, "")
		require.Equal(t, http.StatusNotFound, rr.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, notFoundBody, strings.TrimSpace(rr.Body.String()))
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/signup", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.MethodPost, rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestRouter_SwaggerEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := svcmocks.NewMockUsersRepo(ctrl)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.HTTP.Swagger = true

	log := logger.NewNop()
	svc := service.NewServices(service.Repositories{Users: repo}, cfg, log)
	router := NewRouter(api.NewHandler(log, validation.New(), 0), svc, cfg.HTTP, log)

	rr := do(t, router, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "/signup")
}
