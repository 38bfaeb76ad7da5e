package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/internship-portal/internal/api/http/handlers"
	"github.com/spec-kit/internship-portal/internal/auth"
	"github.com/spec-kit/internship-portal/internal/config"
	"github.com/spec-kit/internship-portal/internal/domain"
	"github.com/spec-kit/internship-portal/internal/events"
	"github.com/spec-kit/internship-portal/internal/observability"
	"github.com/spec-kit/internship-portal/internal/service"
	"github.com/spec-kit/internship-portal/internal/storage"
	"github.com/spec-kit/internship-portal/internal/testutils"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testServer struct {
	t       *testing.T
	app     *fiber.App
	store   *testutils.MemoryStore
	authSvc *service.AuthService
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		App:    config.AppConfig{Name: "internship-portal", Env: "test", RequestTimeoutSeconds: 5},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxBytes: 5 * 1024 * 1024},
	}
	logger := zap.NewNop()
	store := testutils.NewMemoryStore()
	resumes, err := storage.NewResumeStore(cfg.Upload.Dir, cfg.Upload.MaxBytes, logger)
	require.NoError(t, err)

	authSvc := service.NewAuthService(cfg.Auth, service.AuthDependencies{UserRepo: store.Users, Logger: logger})
	userSvc := service.NewUserService(service.UserDependencies{UserRepo: store.Users, Logger: logger})
	appSvc := service.NewApplicationService(service.ApplicationDependencies{
		ApplicationRepo: store.Applications,
		Resumes:         resumes,
		Dispatcher:      events.NewInMemoryDispatcher(),
		Logger:          logger,
	})
	metrics := observability.NewMetrics()

	app := NewApp(cfg, logger, metrics, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, "test", okPinger{}, okPinger{}, metrics),
		Auth:           handlers.NewAuthHandler(authSvc),
		Users:          handlers.NewUsersHandler(userSvc),
		Applications:   handlers.NewApplicationsHandler(appSvc),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager()),
	})
	return &testServer{t: t, app: app, store: store, authSvc: authSvc, metrics: metrics}
}

func (s *testServer) do(req *http.Request) (int, []byte) {
	s.t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, body
}

func (s *testServer) json(method, path, token string, payload any) (int, map[string]any) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	status, raw := s.do(req)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &out))
	}
	return status, out
}

func (s *testServer) list(path, token string) (int, []map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, raw := s.do(req)
	var out []map[string]any
	if status == http.StatusOK {
		require.NoError(s.t, json.Unmarshal(raw, &out))
	}
	return status, out
}

func (s *testServer) submit(token string, fields map[string]string, filename string, content []byte) (int, map[string]any) {
	s.t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(s.t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("resume", filename)
		require.NoError(s.t, err)
		_, err = part.Write(content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/applications", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	status, raw := s.do(req)
	out := map[string]any{}
	require.NoError(s.t, json.Unmarshal(raw, &out))
	return status, out
}

// signup registers a user through the API and returns its id and a token for role.
func (s *testServer) signup(name, email string, role domain.Role) (string, string) {
	s.t.Helper()
	status, body := s.json(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(s.t, http.StatusCreated, status)
	id := body["user"].(map[string]any)["id"].(string)
	if role != domain.RoleStudent {
		require.NoError(s.t, s.store.Users.UpdateRole(context.Background(), id, role))
	}
	token, _, err := s.authSvc.TokenManager().GenerateToken(id, role)
	require.NoError(s.t, err)
	return id, token
}

func (s *testServer) submitSample(token, position string) string {
	s.t.Helper()
	status, body := s.submit(token, map[string]string{"position": position, "coverLetter": "Hi"}, "cv.pdf", testutils.SamplePDF)
	require.Equal(s.t, http.StatusCreated, status, body)
	return body["id"].(string)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)

	status, body := s.json(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "Asha", "email": "Asha@Example.com", "password": "secret1", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "student", user["role"])
	assert.Equal(t, "asha@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	status, body = s.json(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name": "Again", "email": "asha@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _ = s.json(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "wrong12"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.json(http.MethodPost, "/api/auth/login", "", map[string]any{"email": "asha@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)
	assert.NotEmpty(t, token)

	status, body = s.json(http.MethodGet, "/api/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["valid"])
	assert.NotEmpty(t, body["token"])
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)
	cases := []map[string]any{
		{"name": "A", "email": "a@example.com", "password": "secret1"},
		{"name": "Asha", "email": "not-an-email", "password": "secret1"},
		{"name": "Asha", "email": "a@example.com", "password": "123"},
	}
	for _, payload := range cases {
		status, body := s.json(http.MethodPost, "/api/auth/signup", "", payload)
		assert.Equal(t, http.StatusBadRequest, status, payload)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	}
}

func TestAuthenticationFailures(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("Asha", "asha@example.com", domain.RoleStudent)

	status, body := s.json(http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = s.json(http.MethodGet, "/api/users/profile", token+"x", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("x-auth-token", token)
	status, _ = s.do(req)
	assert.Equal(t, http.StatusOK, status)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	_, studentToken := s.signup("Asha", "asha@example.com", domain.RoleStudent)
	_, adminToken := s.signup("Priya", "priya@example.com", domain.RoleAdmin)

	status, _ := s.list("/api/applications", studentToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.submit(adminToken, map[string]string{"position": "Backend Intern"}, "cv.pdf", testutils.SamplePDF)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestProfileUpdateCompletesProfile(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("Asha", "asha@example.com", domain.RoleStudent)

	status, body := s.json(http.MethodPut, "/api/users/update-profile", token, map[string]any{
		"university":       "IIT",
		"branch":           "CSE",
		"year":             "3rd Year",
		"cgpa":             8.5,
		"profileCompleted": false,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, true, user["profileCompleted"])
	assert.Equal(t, "8.5", user["cgpa"])

	status, body = s.json(http.MethodPut, "/api/users/update-profile", token, map[string]any{"phone": "12345"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, body = s.json(http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["user"].(map[string]any)["phone"])
}

func TestSetRoleIsAdminOnly(t *testing.T) {
	s := newTestServer(t)
	studentID, studentToken := s.signup("Asha", "asha@example.com", domain.RoleStudent)
	_, adminToken := s.signup("Priya", "priya@example.com", domain.RoleAdmin)

	status, _ := s.json(http.MethodPut, "/api/users/"+studentID+"/role", studentToken, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.json(http.MethodPut, "/api/users/"+studentID+"/role", adminToken, map[string]any{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.json(http.MethodPut, "/api/users/"+studentID+"/role", adminToken, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["user"].(map[string]any)["role"])
}

func TestCreateApplicationValidation(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("Asha", "asha@example.com", domain.RoleStudent)

	status, _ := s.submit(token, map[string]string{"position": "Backend Intern"}, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.submit(token, map[string]string{"coverLetter": "Hi"}, "cv.pdf", testutils.SamplePDF)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.submit(token, map[string]string{"position": "Backend Intern"}, "cv.docx", []byte("PK\x03\x04"))
	assert.Equal(t, http.StatusBadRequest, status)

	oversized := append(append([]byte{}, testutils.SamplePDF...), bytes.Repeat([]byte("0"), 5*1024*1024)...)
	status, _ = s.submit(token, map[string]string{"position": "Backend Intern"}, "big.pdf", oversized)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Zero(t, s.store.ApplicationCount())
}

func TestApplicationLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, studentToken := s.signup("Asha", "asha@example.com", domain.RoleStudent)
	_, otherToken := s.signup("Ravi", "ravi@example.com", domain.RoleStudent)
	_, adminToken := s.signup("Priya", "priya@example.com", domain.RoleAdmin)

	id := s.submitSample(studentToken, "Backend Intern")
	s.submitSample(otherToken, "Frontend Intern")

	status, all := s.list("/api/applications", adminToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, all, 2)
	assert.Equal(t, "Frontend Intern", all[0]["position"])
	assert.Equal(t, "Ravi", all[0]["studentName"])
	assert.Equal(t, "Not specified", all[0]["branch"])
	assert.NotEmpty(t, all[0]["dateApplied"])

	status, mine := s.list("/api/applications/student/mine", studentToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine, 1)
	assert.Equal(t, id, mine[0]["id"])

	status, _ = s.json(http.MethodGet, "/api/applications/"+id, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.json(http.MethodPut, "/api/applications/"+id+"/status", adminToken, map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"].(map[string]any)["message"], "pending, approved, on hold, rejected")

	status, body = s.json(http.MethodGet, "/api/applications/"+id, studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending", body["status"])

	status, body = s.json(http.MethodPut, "/api/applications/"+id+"/status", adminToken, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Status updated successfully", body["message"])
	assert.Equal(t, "approved", body["status"])
	notification := body["notification"].(map[string]any)
	assert.Equal(t, "approved", notification["type"])
	assert.Equal(t, "Your application for Backend Intern has been approved.", notification["message"])
	assert.Equal(t, "Asha", body["application"].(map[string]any)["studentName"])

	status, filtered := s.list("/api/applications?status=approved,on%20hold", adminToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, filtered, 1)
	assert.Equal(t, id, filtered[0]["id"])

	status, body = s.json(http.MethodGet, "/api/applications/"+id, studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", body["status"])

	status, _ = s.json(http.MethodDelete, "/api/applications/"+id, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.json(http.MethodDelete, "/api/applications/"+id, studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Application deleted successfully", body["message"])

	status, _ = s.json(http.MethodDelete, "/api/applications/"+id, studentToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.json(http.MethodGet, "/api/applications/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateStatusListsValidValuesWhenMissing(t *testing.T) {
	s := newTestServer(t)
	_, studentToken := s.signup("Ravi", "ravi@example.com", domain.RoleStudent)
	_, adminToken := s.signup("Priya", "priya@example.com", domain.RoleAdmin)
	id := s.submitSample(studentToken, "Backend Intern")

	for _, payload := range []map[string]any{{"status": ""}, {}} {
		status, body := s.json(http.MethodPut, "/api/applications/"+id+"/status", adminToken, payload)
		require.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
		assert.Contains(t, body["error"].(map[string]any)["message"], "pending, approved, on hold, rejected")
	}
}

func TestResumeDownload(t *testing.T) {
	s := newTestServer(t)
	_, studentToken := s.signup("Asha", "asha@example.com", domain.RoleStudent)
	_, otherToken := s.signup("Ravi", "ravi@example.com", domain.RoleStudent)
	_, adminToken := s.signup("Priya", "priya@example.com", domain.RoleAdmin)

	id := s.submitSample(studentToken, "Backend Intern")
	_, body := s.json(http.MethodGet, "/api/applications/"+id, studentToken, nil)
	resume := body["resume"].(string)
	require.True(t, strings.HasSuffix(resume, "-cv.pdf"))

	req := httptest.NewRequest(http.MethodGet, "/api/applications/resume/"+resume, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, testutils.SamplePDF, content)

	req = httptest.NewRequest(http.MethodGet, "/api/applications/resume/"+resume, nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	status, _ := s.do(req)
	assert.Equal(t, http.StatusForbidden, status)

	req = httptest.NewRequest(http.MethodGet, "/api/applications/resume/unknown.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	status, _ = s.do(req)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.json(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.json(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = s.json(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, errorCode(body))

	status, body = s.json(http.MethodGet, "/health/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, body["totalRequests"].(float64), float64(3))
}

func TestErrorMetricsStayBoundedByRoutes(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.signup("Priya", "priya@example.com", domain.RoleAdmin)

	for i := 0; i < 100; i++ {
		status, _ := s.json(http.MethodGet, fmt.Sprintf("/nope-%d", i), "", nil)
		require.Equal(t, http.StatusNotFound, status)
		status, _ = s.json(http.MethodGet, "/api/applications/"+uuid.NewString(), adminToken, nil)
		require.Equal(t, http.StatusNotFound, status)
	}

	snap := s.metrics.Snapshot()
	errorsByPath := map[string]int64{}
	for _, e := range snap.Errors {
		errorsByPath[e.Path] += e.Count
	}
	assert.Len(t, snap.Errors, 2)
	assert.Equal(t, int64(100), errorsByPath[observability.UnmatchedRoute])
	assert.Equal(t, int64(100), errorsByPath["/api/applications/:id"])
	assert.LessOrEqual(t, len(snap.Requests), 4)
}
