package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/notes-ninja-backend/middleware"
	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/utils"
)

// Các route trang trả JSON shell cho SPA render. Điều hướng
// (đá về /auth, đưa về đúng dashboard...) do route guard xử lý trước đó.

func HomePage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "home"})
}

func RoleSelectPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":  "role-select",
		"roles": []models.UserRole{models.RoleStudent, models.RoleTeacher},
	})
}

func StudentDashboardPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "student-dashboard"})
}

func TeacherDashboardPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "teacher-dashboard"})
}

func AdminDashboardPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "admin-dashboard"})
}

// GET /dashboard-redirect
// Đưa user về dashboard theo role trong session. role=undefined đã được
// route guard chặn và đá về /auth trước khi tới đây.
func DashboardRedirect(c *gin.Context) {
	tokenStr, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || tokenStr == "" {
		c.Redirect(http.StatusFound, middleware.PathRoleSelect)
		return
	}
	claims, err := utils.VerifyToken(tokenStr)
	if err != nil {
		c.Redirect(http.StatusFound, middleware.PathRoleSelect)
		return
	}
	c.Redirect(http.StatusFound, middleware.DashboardPath(claims.Role))
}
