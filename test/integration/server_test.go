package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"user-management-service/internal/database"
	"user-management-service/internal/domain"
	"user-management-service/internal/http/handler"
	"user-management-service/internal/http/router"
	"user-management-service/internal/repository"
	"user-management-service/internal/security"
	"user-management-service/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// captureNotifier records the last verification token instead of sending
// mail so tests can complete the email verification step.
type captureNotifier struct {
	mu    sync.Mutex
	token string
}

func (n *captureNotifier) SendRegistrationEmail(_ context.Context, notification service.RegistrationNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.token = notification.VerificationToken
	return nil
}

func (n *captureNotifier) LastToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token
}

type testServer struct {
	baseURL  string
	client   *http.Client
	db       *gorm.DB
	notifier *captureNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := &captureNotifier{}

	users := repository.NewUserRepository(db)
	audits := repository.NewAuditLogRepository(db)
	userSvc := service.NewUserService(users, audits, notifier, logger, 3)
	jwtMgr := security.NewJWTManager("user-management-service", "user-management-api", "integration-test-secret-0123456789ab")
	tokenSvc := service.NewTokenService(jwtMgr, 15*time.Minute)

	dep := router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(userSvc, tokenSvc),
		UserHandler:      handler.NewUserHandler(userSvc),
		AdminHandler:     handler.NewAdminHandler(userSvc),
		JWTManager:       jwtMgr,
		CORSOrigins:      []string{"http://localhost:3000"},
		APIRateLimitRPM:  10000,
		AuthRateLimitRPM: 10000,
	}
	srv := httptest.NewServer(router.NewRouter(dep))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:  srv.URL,
		client:   srv.Client(),
		db:       db,
		notifier: notifier,
	}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, apiEnvelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// seedAdmin provisions an ADMIN account directly in the database and
// returns its nickname; the password is always "Adm1nPass".
func seedAdmin(t *testing.T, db *gorm.DB) string {
	t.Helper()
	hash, err := security.HashPassword("Adm1nPass")
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	admin := domain.NewUser("root", "root@example.com", hash, "", time.Now().UTC())
	admin.Role = domain.RoleAdmin
	admin.EmailVerified = true
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return "root"
}

// signupAndLogin walks a fresh account through signup, email verification
// and login, returning its id and an access token.
func signupAndLogin(t *testing.T, ts *testServer, nickname string) (string, string) {
	t.Helper()

	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/auth/signup", map[string]string{
		"nickname": nickname,
		"email":    nickname + "@example.com",
		"password": "Str0ngPass",
	}, nil)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("signup failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created user: %v", err)
	}

	resp, env = doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/auth/verify-email", map[string]string{
		"user_id": created.ID,
		"token":   ts.notifier.LastToken(),
	}, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("verify-email failed: status=%d", resp.StatusCode)
	}

	return created.ID, login(t, ts, nickname, "Str0ngPass")
}

func login(t *testing.T, ts *testServer, nickname, password string) string {
	t.Helper()
	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/auth/login", map[string]string{
		"nickname": nickname,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("login failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
	var issued struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &issued); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if issued.AccessToken == "" {
		t.Fatal("expected access token")
	}
	return issued.AccessToken
}
