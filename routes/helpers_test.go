package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskdesk/taskdesk/config"
	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/services"
	"taskdesk/taskdesk/testutils"
	"taskdesk/taskdesk/utils/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "routes-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *database.Database
	svc    Services
}

func testConfig() config.Config {
	return config.Config{
		AppName:               "Task API Boilerplate",
		AllowedOrigins:        "*",
		PageSize:              20,
		MaxPageSize:           100,
		AuthRateLimit:         5,
		AuthRateWindowSeconds: 60,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutils.SetupTestDB(t)
	authService := services.NewAuthService(testSecret, 1).WithCost(bcrypt.MinCost)
	eventService := services.NewEventService(nil)
	userService := services.NewUserService(authService, eventService)
	taskService := services.NewTaskService(eventService)

	svc := Services{
		Auth:   authService,
		Users:  userService,
		Tasks:  taskService,
		Stats:  services.NewStatsService(userService, taskService),
		Events: eventService,
	}

	return &testServer{
		router: SetupRouter(testConfig(), db, svc, nil),
		db:     db,
		svc:    svc,
	}
}

func authFor(t *testing.T, user models.User) string {
	t.Helper()
	tokenString, err := token.GenerateToken(user.ID, user.Username, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tokenString
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}
