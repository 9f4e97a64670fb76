package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/services"
)

// Tóm tắt fallback khi Gemini không gọi được. Vẫn trả 200 kèm degraded = true
// để client biết đây không phải tóm tắt thật.
const cannedSummary = "Chưa tạo được tóm tắt tự động cho tài liệu này. Bạn có thể đọc nội dung đã trích xuất và thử tạo lại tóm tắt sau."

func cannedBullets(doc models.Document) string {
	return strings.Join([]string{
		"Tài liệu: " + doc.OriginalName,
		"Nội dung đã được trích xuất thành công",
		"Tóm tắt tự động tạm thời không khả dụng, hãy thử lại sau",
	}, "\n")
}

// POST /api/documents/:id/summary
// Sinh tóm tắt + ý chính bằng Gemini từ nội dung đã trích xuất.
func GenerateSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var doc models.Document
	if err := db.First(&doc, "id = ?", docID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}
	if doc.ExtractedText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tài liệu chưa có nội dung trích xuất"})
		return
	}

	summary := models.Summary{
		DocumentID: docID,
		UserID:     userID,
	}

	summaryText, serr := services.SummaryText(doc.ExtractedText)
	bullets, berr := services.BulletPointsText(doc.ExtractedText)
	if serr != nil || berr != nil {
		// Gemini lỗi: dùng nội dung canned, đánh dấu degraded
		log.Printf("Gemini lỗi khi tóm tắt tài liệu %s: summary=%v bullets=%v", docID, serr, berr)
		summary.SummaryText = cannedSummary
		summary.BulletPoints = cannedBullets(doc)
		summary.Degraded = true
	} else {
		summary.SummaryText = summaryText
		summary.BulletPoints = bullets
	}

	if err := db.Create(&summary).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tóm tắt"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Tạo tóm tắt thành công",
		"summary":  summary,
		"degraded": summary.Degraded,
	})
}

// GET /api/documents/:id/summary
// Trả tóm tắt mới nhất của tài liệu.
func GetSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	docID := c.Param("id")
	var summary models.Summary
	if err := db.Where("document_id = ?", docID).
		Order("created_at DESC").First(&summary).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tài liệu chưa có tóm tắt"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
