package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"

	"github.com/gin-gonic/gin"
)

func rolesRouter(role string, allowed ...model.Role) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CtxRole, role)
	})
	r.Use(RequireRoles(messages.New("en"), allowed...))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireRoles_Allowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := rolesRouter("moderator", model.RoleAdmin, model.RoleModerator)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireRoles_Denied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := rolesRouter("user", model.RoleAdmin, model.RoleModerator)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Operations forbidden")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRequireRoles_MissingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := rolesRouter("", model.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
