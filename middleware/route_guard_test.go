package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/utils"
)

func claimsWithRole(role models.UserRole) *utils.Claims {
	return &utils.Claims{UserID: "u1", Email: "u1@example.com", Role: role}
}

func TestGuardRequest(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		query    string
		claims   *utils.Claims
		allow    bool
		redirect string
	}{
		{
			name:     "lối thoát role=undefined quay về trang chọn",
			path:     PathDashboardJump,
			query:    "role=undefined",
			claims:   claimsWithRole(models.RoleStudent),
			redirect: PathRoleSelect,
		},
		{
			name:  "api không bị guard",
			path:  "/api/user/documents",
			allow: true,
		},
		{
			name:  "websocket không bị guard",
			path:  "/ws/user",
			allow: true,
		},
		{
			name:  "asset không bị guard",
			path:  "/assets/app.js",
			allow: true,
		},
		{
			name:  "health không bị guard",
			path:  "/health",
			allow: true,
		},
		{
			name:  "_ts chặn vòng lặp redirect",
			path:  "/student/dashboard",
			query: "_ts=1756700000000",
			allow: true,
		},
		{
			name:   "_ts cho qua cả khi không có token",
			path:   "/teacher/dashboard",
			query:  "_ts=1",
			claims: nil,
			allow:  true,
		},
		{
			name:     "trang gốc không token về trang chọn",
			path:     PathRoot,
			redirect: PathRoleSelect,
		},
		{
			name:     "trang gốc chưa có role về trang chọn",
			path:     PathRoot,
			claims:   claimsWithRole(""),
			redirect: PathRoleSelect,
		},
		{
			name:     "trang gốc có role về đúng dashboard",
			path:     PathRoot,
			claims:   claimsWithRole(models.RoleTeacher),
			redirect: "/teacher/dashboard",
		},
		{
			name:   "trang chọn role cho qua khi chưa có role",
			path:   PathRoleSelect,
			claims: claimsWithRole(""),
			allow:  true,
		},
		{
			name:     "trang chọn role đẩy đi khi đã có role",
			path:     PathRoleSelect,
			claims:   claimsWithRole(models.RoleStudent),
			redirect: "/student/dashboard",
		},
		{
			name:   "apply-role luôn cho qua kể cả đã có role",
			path:   PathApplyRole,
			claims: claimsWithRole(models.RoleStudent),
			allow:  true,
		},
		{
			name:   "dashboard-redirect cho qua khi role hợp lệ",
			path:   PathDashboardJump,
			query:  "role=student",
			claims: claimsWithRole(models.RoleStudent),
			allow:  true,
		},
		{
			name:     "trang bảo vệ không token về trang chọn",
			path:     "/student/dashboard",
			redirect: PathRoleSelect,
		},
		{
			name:     "namespace cần role, chưa chọn thì về trang chọn",
			path:     "/teacher/dashboard",
			claims:   claimsWithRole(""),
			redirect: PathRoleSelect,
		},
		{
			name:     "sai khu vực thì về dashboard của mình",
			path:     "/admin/dashboard",
			claims:   claimsWithRole(models.RoleStudent),
			redirect: "/student/dashboard",
		},
		{
			name:   "đúng khu vực thì cho qua",
			path:   "/teacher/dashboard",
			claims: claimsWithRole(models.RoleTeacher),
			allow:  true,
		},
		{
			name:   "prefix namespace không khớp nhầm",
			path:   "/studentzone",
			claims: claimsWithRole(models.RoleTeacher),
			allow:  true,
		},
		{
			name:   "trang ngoài namespace chỉ cần token",
			path:   "/settings",
			claims: claimsWithRole(""),
			allow:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			d := GuardRequest(tt.path, q, tt.claims)
			assert.Equal(t, tt.allow, d.Allow)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, "/student/dashboard", DashboardPath(models.RoleStudent))
	assert.Equal(t, "/teacher/dashboard", DashboardPath(models.RoleTeacher))
	assert.Equal(t, "/admin/dashboard", DashboardPath(models.RoleAdmin))
	assert.Equal(t, PathRoleSelect, DashboardPath(""))
}

func TestRouteGuardMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RouteGuard())
	r.GET("/student/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	t.Run("không cookie thì redirect", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, PathRoleSelect, w.Header().Get("Location"))
	})

	t.Run("cookie hỏng coi như không có", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, PathRoleSelect, w.Header().Get("Location"))
	})

	t.Run("token đúng role thì vào được", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "u1@example.com", models.RoleStudent, false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("token sai khu vực thì bị đưa về dashboard của mình", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "u1@example.com", models.RoleTeacher, false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/student/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/teacher/dashboard", w.Header().Get("Location"))
	})
}
