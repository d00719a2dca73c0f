package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"

	"github.com/gin-gonic/gin"
)

type mockParser struct {
	email string
	err   error
}

func (m *mockParser) ParseAccessToken(token string) (string, error) { return m.email, m.err }

type mockRevoked struct {
	revoked bool
	err     error
}

func (m *mockRevoked) IsRevoked(ctx context.Context, token string) (bool, error) {
	return m.revoked, m.err
}

type mockLedgerChecker struct {
	invalidated bool
}

func (m *mockLedgerChecker) IsInvalidated(ctx context.Context, token string) (bool, error) {
	return m.invalidated, nil
}

type mockUserLoader struct {
	user *model.User
}

func (m *mockUserLoader) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.user, nil
}

func authRouter(parser AccessTokenParser, revoked RevocationChecker, ledger LedgerChecker, users UserLoader) *gin.Engine {
	r := gin.New()
	r.Use(Auth(parser, revoked, ledger, users, messages.New("en")))
	r.GET("/ping", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": user.Username, "role": c.GetString(CtxRole)})
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := authRouter(&mockParser{}, &mockRevoked{}, nil, &mockUserLoader{})

	w := doGet(r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Token not provided")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAuth_BadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := authRouter(&mockParser{err: errors.New("expired")}, &mockRevoked{}, nil, &mockUserLoader{})

	w := doGet(r, "bad")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Verification error")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAuth_RevokedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &model.User{ID: 1, Username: "alice", IsActive: true}
	r := authRouter(&mockParser{email: "a@b.c"}, &mockRevoked{revoked: true}, nil, &mockUserLoader{user: user})

	w := doGet(r, "revoked")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Token revoked")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

// 吊销检查不可用时按已吊销处理。
func TestAuth_RevocationCheckFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &model.User{ID: 1, Username: "alice", IsActive: true}
	r := authRouter(&mockParser{email: "a@b.c"}, &mockRevoked{err: errors.New("redis down")}, nil, &mockUserLoader{user: user})

	w := doGet(r, "tok")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_LedgerEntryRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &model.User{ID: 1, Username: "alice", IsActive: true}
	r := authRouter(&mockParser{email: "a@b.c"}, &mockRevoked{}, &mockLedgerChecker{invalidated: true}, &mockUserLoader{user: user})

	w := doGet(r, "tok")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuth_BannedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &model.User{ID: 1, Username: "alice", IsActive: false}
	r := authRouter(&mockParser{email: "a@b.c"}, &mockRevoked{}, nil, &mockUserLoader{user: user})

	w := doGet(r, "tok")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("ban list")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAuth_SetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := &model.User{ID: 1, Username: "alice", Role: model.RoleModerator, IsActive: true}
	r := authRouter(&mockParser{email: "a@b.c"}, &mockRevoked{}, &mockLedgerChecker{}, &mockUserLoader{user: user})

	w := doGet(r, "tok")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"role":"moderator"`)) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"user":"alice"`)) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
