package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/controllers"
	"github.com/vnkhanh/notes-ninja-backend/middleware"
	"github.com/vnkhanh/notes-ninja-backend/services"
	"github.com/vnkhanh/notes-ninja-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	// Resolver dùng chung cho mọi đường gán role
	userStore := services.NewGormUserStore(db)
	resolver := services.NewRoleResolver(userStore)
	roleCtrl := controllers.NewRoleController(resolver, userStore)

	// Route trang: guard đọc session cookie và điều hướng trước khi handler chạy
	r.Use(middleware.RouteGuard())
	{
		r.GET(middleware.PathRoot, controllers.HomePage)
		r.GET(middleware.PathRoleSelect, controllers.RoleSelectPage)
		r.GET(middleware.PathApplyRole, roleCtrl.ApplyRolePage)
		r.GET(middleware.PathDashboardJump, controllers.DashboardRedirect)
		r.GET("/student/dashboard", controllers.StudentDashboardPage)
		r.GET("/teacher/dashboard", controllers.TeacherDashboardPage)
		r.GET("/admin/dashboard", controllers.AdminDashboardPage)
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)

		authed := auth.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/role", roleCtrl.AssignRole)
			authed.POST("/session-role", roleCtrl.AssignSessionRole)
			authed.GET("/me", roleCtrl.Me)
			authed.POST("/change-password", controllers.ChangePassword)
		}
	}

	// Danh sách môn học công khai (đăng nhập thì thấy thêm tài liệu của mình)
	subjects := api.Group("/subjects", middleware.OptionalAuthMiddleware(), middleware.DBMiddleware(db))
	{
		subjects.GET("", controllers.GetActiveSubjects)
		subjects.GET("/popular", controllers.GetPopularSubjects)
		subjects.GET("/slug/:slug", controllers.GetSubjectBySlug)
	}

	user := api.Group("/user")
	{
		user.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))

		// Tài liệu
		user.POST("/documents", controllers.UploadDocument)
		user.GET("/documents", controllers.GetDocuments)
		user.GET("/documents/:id", controllers.GetDocumentDetail)
		user.DELETE("/documents/:id", controllers.DeleteDocument)

		// Tóm tắt
		user.POST("/documents/:id/summary", controllers.GenerateSummary)
		user.GET("/documents/:id/summary", controllers.GetSummary)

		// Flashcards + ôn tập
		user.POST("/documents/:id/flashcards", controllers.GenerateFlashcardsFromDocument)
		user.GET("/documents/:id/flashcards", controllers.GetFlashcardsByDocument)
		user.POST("/documents/:id/flashcards/manual", controllers.CreateFlashcard)
		user.POST("/flashcards/:id/review", controllers.ReviewFlashcard)
		user.DELETE("/flashcards/:id", controllers.DeleteFlashcard)

		// Quiz
		user.POST("/documents/:id/quizzes", controllers.GenerateQuizzesFromDocument)
		user.GET("/documents/:id/quiz-sets", controllers.GetQuizSetsByDocument)
		user.GET("/quiz-sets/:id/questions", controllers.GetQuizQuestions)
		user.POST("/quiz-sets/:id/attempts", controllers.SubmitQuizAttempt)
		user.GET("/quiz-sets/:id/attempts", controllers.GetQuizAttemptsBySet)
		user.GET("/quiz-attempts", controllers.GetUserQuizAttempts)
		user.GET("/quiz-attempts/:attemptID", controllers.GetQuizAttemptDetail)

		// Ghi chú
		user.POST("/notes", controllers.CreateNote)
		user.GET("/documents/:id/notes", controllers.GetNotesByDocument)
		user.PUT("/notes/:id", controllers.UpdateNote)
		user.DELETE("/notes/:id", controllers.DeleteNote)

		// Thông báo
		user.GET("/notifications", controllers.GetNotifications)
		user.GET("/notifications/unread-count", controllers.GetUnreadCount)
		user.PATCH("/notifications/:id/read", controllers.MarkNotificationAsRead)
		user.PATCH("/notifications/read-all", controllers.MarkAllAsRead)
		user.DELETE("/notifications/:id", controllers.DeleteNotification)
		user.DELETE("/notifications", controllers.DeleteAllNotifications)
		user.DELETE("/notifications/read", controllers.DeleteReadNotifications)

		// Tìm kiếm
		user.GET("/search", controllers.SearchFullHandler(db))
		user.GET("/search/autocomplete", controllers.SearchAutocomplete(db))

		// Tiến độ học
		user.GET("/progress/overview", controllers.GetStudyOverview)
		user.GET("/progress/daily-reviews", controllers.GetDailyReviews)
		user.GET("/progress/mastery", controllers.GetDocumentMastery)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.RequireRoles("admin", "teacher"))

		// Quản lý môn học
		admin.POST("/subjects", controllers.CreateSubject)
		admin.GET("/subjects/:id", controllers.GetSubjectDetail)
		admin.GET("/subjects", controllers.GetSubjects)
		admin.DELETE("/subjects/:id", controllers.DeleteSubject)
		admin.PUT("/subjects/:id", controllers.UpdateSubject)
		admin.PATCH("/subjects/:id/toggle-status", controllers.ToggleSubjectStatus)

		// Quản lý tài liệu (admin thấy tất cả)
		admin.GET("/documents", controllers.GetDocuments)
		admin.GET("/documents/:id", controllers.GetDocumentDetail)
		admin.DELETE("/documents/:id", controllers.DeleteDocument)

		// Dashboard + tài khoản giáo viên (chỉ admin)
		adminOnly := admin.Group("")
		adminOnly.Use(middleware.RequireRoles("admin"))
		{
			adminOnly.GET("/overview", controllers.GetAdminOverview)
			adminOnly.POST("/teachers", controllers.AdminCreateTeacher)
		}
	}

	r.GET("/ws/document/:id", ws.HandleDocumentWebSocket)
	r.GET("/ws/user", ws.HandleUserWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
