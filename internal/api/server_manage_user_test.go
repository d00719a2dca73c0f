package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"photoshare/internal/api/middleware"
	"photoshare/internal/config"
	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

type mockUserStore struct {
	byEmail    map[string]*model.User
	byUsername map[string]*model.User

	banCalls      int
	activateCalls int
	roleCalls     int
	lastRole      model.Role
	editCalls     int
	searchResult  []model.User
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmail[email], nil
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.byUsername[username], nil
}

func (m *mockUserStore) EditProfile(ctx context.Context, email, username, avatarURL string) (*model.User, error) {
	m.editCalls++
	user := m.byEmail[email]
	if user == nil {
		return nil, nil
	}
	if username != "" {
		user.Username = username
	}
	if avatarURL != "" {
		user.Avatar = avatarURL
	}
	return user, nil
}

func (m *mockUserStore) GetProfile(ctx context.Context, user *model.User) (*repository.Profile, error) {
	if user == nil {
		return nil, nil
	}
	return &repository.Profile{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}, nil
}

func (m *mockUserStore) Ban(ctx context.Context, email string) (*model.User, error) {
	m.banCalls++
	user := m.byEmail[email]
	if user != nil {
		user.IsActive = false
	}
	return user, nil
}

func (m *mockUserStore) Activate(ctx context.Context, email string) (*model.User, error) {
	m.activateCalls++
	user := m.byEmail[email]
	if user != nil {
		user.IsActive = true
	}
	return user, nil
}

func (m *mockUserStore) ChangeRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	m.roleCalls++
	m.lastRole = role
	user := m.byEmail[email]
	if user != nil {
		user.Role = role
	}
	return user, nil
}

func (m *mockUserStore) Search(ctx context.Context, f repository.UserFilter) ([]model.User, error) {
	return m.searchResult, nil
}

type mockProfileCache struct {
	invalidated []string
	cached      map[string][]byte
}

func (m *mockProfileCache) CacheProfile(ctx context.Context, username string, payload []byte, ttl time.Duration) error {
	if m.cached == nil {
		m.cached = map[string][]byte{}
	}
	m.cached[username] = payload
	return nil
}

func (m *mockProfileCache) CachedProfile(ctx context.Context, username string) ([]byte, error) {
	return m.cached[username], nil
}

func (m *mockProfileCache) InvalidateProfile(ctx context.Context, username string) error {
	m.invalidated = append(m.invalidated, username)
	return nil
}

func newUsersTestServer(users *mockUserStore, cache *mockProfileCache) *Server {
	metrics.InitMetrics()
	return &Server{
		cfg:      &config.Config{Security: config.SecurityConfig{ProfileCacheTTL: time.Minute}},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		catalog:  messages.New("en"),
		users:    users,
		profiles: cache,
	}
}

func manageUser(s *Server, actor *model.User, username string, body any) *httptest.ResponseRecorder {
	r := gin.New()
	r.PATCH("/users/:username", func(c *gin.Context) {
		c.Set(middleware.CtxUser, actor)
		c.Set(middleware.CtxRole, string(actor.Role))
		s.handleManageUser(c)
	})

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPatch, "/users/"+username, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestManageUser_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := &mockUserStore{byEmail: map[string]*model.User{}, byUsername: map[string]*model.User{}}
	s := newUsersTestServer(users, &mockProfileCache{})

	actor := &model.User{ID: 1, Username: "root", Role: model.RoleAdmin}
	w := manageUser(s, actor, "ghost", manageUserRequest{Action: "ban"})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestManageUser_SelfTargetShortCircuits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actor := &model.User{ID: 1, Username: "root", Email: "root@x.y", Role: model.RoleAdmin, IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"root@x.y": actor},
		byUsername: map[string]*model.User{"root": actor},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	w := manageUser(s, actor, "root", manageUserRequest{Action: "ban"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("can't ban yourself")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if users.banCalls != 0 {
		t.Fatalf("expected no ban on self target")
	}
}

func TestManageUser_BanByModerator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", Role: model.RoleUser, IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	cache := &mockProfileCache{}
	s := newUsersTestServer(users, cache)

	actor := &model.User{ID: 1, Username: "mod", Role: model.RoleModerator}
	w := manageUser(s, actor, "bob", manageUserRequest{Action: "ban"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("bob has been banned")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if users.banCalls != 1 {
		t.Fatalf("expected ban call")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "bob" {
		t.Fatalf("expected profile cache invalidated for bob, got %v", cache.invalidated)
	}
}

func TestManageUser_BanAlreadyBanned(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", IsActive: false}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	actor := &model.User{ID: 1, Username: "root", Role: model.RoleAdmin}
	w := manageUser(s, actor, "bob", manageUserRequest{Action: "ban"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if users.banCalls != 0 {
		t.Fatalf("expected no ban call")
	}
}

func TestManageUser_BanByPlainUserDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	actor := &model.User{ID: 1, Username: "eve", Role: model.RoleUser}
	w := manageUser(s, actor, "bob", manageUserRequest{Action: "ban"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestManageUser_ActivateNeedsAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", IsActive: false}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	mod := &model.User{ID: 1, Username: "mod", Role: model.RoleModerator}
	if w := manageUser(s, mod, "bob", manageUserRequest{Action: "activate"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for moderator, got %d", w.Code)
	}

	admin := &model.User{ID: 3, Username: "root", Role: model.RoleAdmin}
	w := manageUser(s, admin, "bob", manageUserRequest{Action: "activate"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
	if users.activateCalls != 1 {
		t.Fatalf("expected activate call")
	}
}

func TestManageUser_ActivateAlreadyActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	admin := &model.User{ID: 1, Username: "root", Role: model.RoleAdmin}
	w := manageUser(s, admin, "bob", manageUserRequest{Action: "activate"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestManageUser_ChangeRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", Role: model.RoleUser, IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	admin := &model.User{ID: 1, Username: "root", Role: model.RoleAdmin}

	// 缺失或非法角色
	if w := manageUser(s, admin, "bob", manageUserRequest{Action: "change_role"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without role, got %d", w.Code)
	}
	if w := manageUser(s, admin, "bob", manageUserRequest{Action: "change_role", Role: "superuser"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", w.Code)
	}

	w := manageUser(s, admin, "bob", manageUserRequest{Action: "change_role", Role: "moderator"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if users.lastRole != model.RoleModerator {
		t.Fatalf("expected moderator role, got %q", users.lastRole)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("changed to moderator")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestManageUser_UnknownAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y", IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	s := newUsersTestServer(users, &mockProfileCache{})

	admin := &model.User{ID: 1, Username: "root", Role: model.RoleAdmin}
	w := manageUser(s, admin, "bob", manageUserRequest{Action: "promote"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Invalid action")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetMe_ReturnsIdentityAndDropsCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	me := &model.User{ID: 5, Username: "alice", Email: "alice@x.y", Role: model.RoleUser, IsActive: true}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"alice@x.y": me},
		byUsername: map[string]*model.User{"alice": me},
	}
	cache := &mockProfileCache{cached: map[string][]byte{"alice": []byte(`{"stale":true}`)}}
	s := newUsersTestServer(users, cache)

	r := gin.New()
	r.GET("/users/me", func(c *gin.Context) {
		c.Set(middleware.CtxUser, me)
		s.handleGetMe(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"username":"alice"`)) {
		t.Fatalf("expected own identity, got %s", w.Body.String())
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "alice" {
		t.Fatalf("expected own cache entry dropped, got %v", cache.invalidated)
	}
}

func TestUserProfile_ServedFromCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := &mockUserStore{byEmail: map[string]*model.User{}, byUsername: map[string]*model.User{}}
	cache := &mockProfileCache{cached: map[string][]byte{"bob": []byte(`{"username":"bob"}`)}}
	s := newUsersTestServer(users, cache)

	r := gin.New()
	r.GET("/users/:username", s.handleUserProfile)

	req := httptest.NewRequest(http.MethodGet, "/users/bob", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != `{"username":"bob"}` {
		t.Fatalf("expected cached payload, got %s", w.Body.String())
	}
}

func TestUserProfile_CachesOnMiss(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := &model.User{ID: 2, Username: "bob", Email: "bob@x.y"}
	users := &mockUserStore{
		byEmail:    map[string]*model.User{"bob@x.y": target},
		byUsername: map[string]*model.User{"bob": target},
	}
	cache := &mockProfileCache{}
	s := newUsersTestServer(users, cache)

	r := gin.New()
	r.GET("/users/:username", s.handleUserProfile)

	req := httptest.NewRequest(http.MethodGet, "/users/bob", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cache.cached["bob"] == nil {
		t.Fatalf("expected profile cached after miss")
	}
}
