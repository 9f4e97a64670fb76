package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/notes-ninja-backend/middleware"
	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/utils"
)

func TestDashboardRedirect(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET(middleware.PathDashboardJump, DashboardRedirect)

	t.Run("không session thì về trang chọn", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, middleware.PathDashboardJump, nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, middleware.PathRoleSelect, w.Header().Get("Location"))
	})

	t.Run("token có role thì về đúng dashboard", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "u1@example.com", models.RoleTeacher, false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, middleware.PathDashboardJump, nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/teacher/dashboard", w.Header().Get("Location"))
	})

	t.Run("token chưa chọn role thì về trang chọn", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "u1@example.com", "", false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, middleware.PathDashboardJump, nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, middleware.PathRoleSelect, w.Header().Get("Location"))
	})
}
