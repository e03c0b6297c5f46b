package api

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/database"
)

func newTestAuthService(t *testing.T) *auth.Service {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	svc, err := auth.NewService(privatePEM, publicPEM, time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

var loginClock = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func loginRequestFor(username, password string) *http.Request {
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4321"
	return req
}

func TestLogin_IssuesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	newTestStore(t, db)
	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.Create(&database.User{Username: "editor", PasswordHash: hash}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	rdb, mock := redismock.NewClientMock()
	rateKey := "rate:login:192.0.2.10:editor:2024050109"
	mock.ExpectIncr(rateKey).SetVal(1)
	mock.ExpectExpire(rateKey, time.Hour).SetVal(true)
	mock.ExpectTTL("lock:login:editor").SetVal(time.Duration(-2))
	mock.ExpectDel("lock:login:fail:editor").SetVal(0)

	svc := newTestAuthService(t)
	h := NewAuthHandler(db, svc, rdb, LoginLimits{PerHour: 10, LockThreshold: 5, LockTTL: 15 * time.Minute})
	h.now = func() time.Time { return loginClock }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = loginRequestFor("Editor", "s3cret-pass")
	h.Login(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected token response %+v", resp)
	}
	claims, err := svc.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Username != "editor" {
		t.Fatalf("unexpected username %q", claims.Username)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations: %v", err)
	}
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	newTestStore(t, db)

	rdb, mock := redismock.NewClientMock()
	rateKey := "rate:login:192.0.2.10:ghost:2024050109"
	mock.ExpectIncr(rateKey).SetVal(1)
	mock.ExpectExpire(rateKey, time.Hour).SetVal(true)
	mock.ExpectTTL("lock:login:ghost").SetVal(time.Duration(-2))
	mock.ExpectIncr("lock:login:fail:ghost").SetVal(1)
	mock.ExpectExpire("lock:login:fail:ghost", 15*time.Minute).SetVal(true)
	mock.ExpectSet("lock:login:ghost", "1", 15*time.Minute).SetVal("OK")

	h := NewAuthHandler(db, newTestAuthService(t), rdb, LoginLimits{PerHour: 10, LockThreshold: 1, LockTTL: 15 * time.Minute})
	h.now = func() time.Time { return loginClock }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = loginRequestFor("ghost", "whatever")
	h.Login(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations: %v", err)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectIncr("rate:login:192.0.2.10:editor:2024050109").SetVal(11)

	h := NewAuthHandler(db, newTestAuthService(t), rdb, LoginLimits{PerHour: 10})
	h.now = func() time.Time { return loginClock }

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = loginRequestFor("editor", "x")
	h.Login(c)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
}

func TestLogin_StoreNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb, _ := redismock.NewClientMock()
	h := NewAuthHandler(nil, newTestAuthService(t), rdb, LoginLimits{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = loginRequestFor("editor", "x")
	h.Login(c)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestAuthService(t)
	token, _, err := svc.IssueToken(3, "editor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/v1/admin/ping", middleware.AuthMiddleware(svc), func(c *gin.Context) {
		id, username, ok := middleware.UserFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "username": username})
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + token, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/ping", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, w.Code)
			}
			if tc.want == http.StatusOK && !strings.Contains(w.Body.String(), `"username":"editor"`) {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
		})
	}
}
