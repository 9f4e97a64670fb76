package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/models"
)

type (
	ReviewPoint struct {
		Date  string `json:"date"`
		Known int64  `json:"known"`
		Total int64  `json:"total"`
	}

	DocumentMastery struct {
		DocumentID   string  `json:"document_id"`
		OriginalName string  `json:"original_name"`
		TotalCards   int64   `json:"total_cards"`
		KnownCards   int64   `json:"known_cards"`
		Mastery      float64 `json:"mastery"` // 0-100
	}
)

// ===================== Tổng quan học tập của user =====================
func GetStudyOverview(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var totalDocuments, totalFlashcards, totalReviews, knownReviews int64
	db.Model(&models.Document{}).Where("user_id = ?", userID).Count(&totalDocuments)
	db.Model(&models.Flashcard{}).Where("user_id = ?", userID).Count(&totalFlashcards)
	db.Model(&models.FlashcardReview{}).Where("user_id = ?", userID).Count(&totalReviews)
	db.Model(&models.FlashcardReview{}).
		Where("user_id = ? AND outcome = ?", userID, models.ReviewKnown).
		Count(&knownReviews)

	knownRate := 0.0
	if totalReviews > 0 {
		knownRate = (float64(knownReviews) / float64(totalReviews)) * 100
	}

	var totalAttempts int64
	var avgScore float64
	db.Model(&models.QuizAttempt{}).Where("user_id = ?", userID).Count(&totalAttempts)
	db.Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avgScore)

	c.JSON(http.StatusOK, gin.H{
		"total_documents":  totalDocuments,
		"total_flashcards": totalFlashcards,
		"total_reviews":    totalReviews,
		"known_rate":       knownRate,
		"quiz_attempts":    totalAttempts,
		"avg_quiz_score":   avgScore,
	})
}

// ===================== Lượt ôn flashcard theo ngày =====================
func GetDailyReviews(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	fromStr, toStr := c.Query("from"), c.Query("to")
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	if fromStr != "" {
		if t, err := time.Parse("2006-01-02", fromStr); err == nil {
			from = t
		}
	}
	if toStr != "" {
		if t, err := time.Parse("2006-01-02", toStr); err == nil {
			to = t
		}
	}

	var res []ReviewPoint
	db.Raw(`
		SELECT TO_CHAR(reviewed_at, 'YYYY-MM-DD') AS date,
		       SUM(CASE WHEN outcome = 'known' THEN 1 ELSE 0 END) AS known,
		       COUNT(*) AS total
		FROM flashcard_reviews
		WHERE user_id = ? AND reviewed_at BETWEEN ? AND ?
		GROUP BY date
		ORDER BY date
	`, userID, from, to.Add(24*time.Hour)).Scan(&res)

	c.JSON(http.StatusOK, res)
}

// ===================== Độ thành thạo theo tài liệu =====================
// Một thẻ tính là "đã thuộc" khi lần ôn gần nhất có outcome = known.
func GetDocumentMastery(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID := c.GetString("user_id")

	var res []DocumentMastery
	db.Raw(`
		SELECT d.id AS document_id,
		       d.original_name,
		       COUNT(DISTINCT f.id) AS total_cards,
		       COUNT(DISTINCT CASE WHEN last_review.outcome = 'known' THEN f.id END) AS known_cards
		FROM documents d
		JOIN flashcards f ON f.document_id = d.id AND f.user_id = ?
		LEFT JOIN LATERAL (
			SELECT r.outcome
			FROM flashcard_reviews r
			WHERE r.flashcard_id = f.id AND r.user_id = ?
			ORDER BY r.reviewed_at DESC
			LIMIT 1
		) last_review ON TRUE
		WHERE d.user_id = ?
		GROUP BY d.id, d.original_name
		ORDER BY d.created_at DESC
	`, userID, userID, userID).Scan(&res)

	for i := range res {
		if res[i].TotalCards > 0 {
			res[i].Mastery = (float64(res[i].KnownCards) / float64(res[i].TotalCards)) * 100
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

// ===================== Dashboard admin =====================
func GetAdminOverview(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	now := time.Now()

	var totalUsers, totalStudents, totalTeachers int64
	db.Model(&models.User{}).Count(&totalUsers)
	db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents)
	db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&totalTeachers)

	var newUsers30d int64
	db.Model(&models.User{}).
		Where("created_at >= ?", now.AddDate(0, 0, -30)).
		Count(&newUsers30d)

	var totalDocuments, totalQuizAttempts int64
	db.Model(&models.Document{}).Count(&totalDocuments)
	db.Model(&models.QuizAttempt{}).Count(&totalQuizAttempts)

	// Người dùng chưa chọn vai trò (role còn trống trong directory)
	var pendingRole int64
	db.Model(&models.User{}).Where("role = '' OR role IS NULL").Count(&pendingRole)

	c.JSON(http.StatusOK, gin.H{
		"total_users":         totalUsers,
		"total_students":      totalStudents,
		"total_teachers":      totalTeachers,
		"new_users_30d":       newUsers30d,
		"users_without_role":  pendingRole,
		"total_documents":     totalDocuments,
		"total_quiz_attempts": totalQuizAttempts,
	})
}
