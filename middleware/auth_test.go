package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func roleCheckContext(t *testing.T, roles []string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if roles != nil {
		c.Set("user_roles", roles)
	}
	return c, w
}

func TestRoleCheckMiddlewareAllowsMatchingRole(t *testing.T) {
	c, _ := roleCheckContext(t, []string{"student", "instructor"})

	RoleCheckMiddleware([]string{"admin", "instructor"})(c)
	if c.IsAborted() {
		t.Error("expected a matching role to pass the check")
	}
}

func TestRoleCheckMiddlewareRejectsMissingRole(t *testing.T) {
	c, w := roleCheckContext(t, []string{"student"})

	RoleCheckMiddleware([]string{"admin", "instructor"})(c)
	if !c.IsAborted() {
		t.Fatal("expected a non-matching role to be rejected")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRoleCheckMiddlewareRequiresRolesInContext(t *testing.T) {
	c, w := roleCheckContext(t, nil)

	RoleCheckMiddleware([]string{"admin"})(c)
	if !c.IsAborted() || w.Code != http.StatusForbidden {
		t.Errorf("expected 403 when no roles are set, got status %d", w.Code)
	}
}
