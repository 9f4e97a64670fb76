package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/services"
)

// ======== HÀM CHIA NHỎ VĂN BẢN ========
// chia văn bản dài thành các đoạn ~3000 ký tự (để tránh vượt token limit)
func SplitTextIntoChunks(text string, maxLen int) []string {
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += maxLen {
		end := i + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// ======== API TẠO FLASHCARDS ========

func GenerateFlashcardsFromDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	documentID := c.Param("id")
	var doc models.Document
	if err := db.First(&doc, "id = ?", documentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy document"})
		return
	}

	if doc.ExtractedText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document chưa có ExtractedText"})
		return
	}

	text := strings.TrimSpace(doc.ExtractedText)
	chunks := SplitTextIntoChunks(text, 3000)

	if len(chunks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có nội dung để xử lý"})
		return
	}

	allFlashcards := []models.Flashcard{}

	for idx, chunk := range chunks {
		prompt := fmt.Sprintf(`
Bạn là AI hỗ trợ học tập.
Từ đoạn văn sau, hãy tạo ra 5 flashcard bằng tiếng Việt.
Mỗi flashcard gồm:
- "front": câu hỏi, định nghĩa hoặc khái niệm
- "back": câu trả lời hoặc giải thích ngắn gọn
Trả kết quả đúng **định dạng JSON** như ví dụ:
[
  {"front": "Câu hỏi 1?", "back": "Trả lời 1"},
  {"front": "Câu hỏi 2?", "back": "Trả lời 2"}
]

Đây là đoạn văn số %d:
%s
`, idx+1, chunk)

		var rawResp string
		var try int
		for try = 0; try < 3; try++ { // thử lại tối đa 3 lần
			rawResp, err = services.GeminiGenerateText(prompt)
			if err == nil {
				break
			}
			time.Sleep(1 * time.Second)
		}

		if err != nil {
			fmt.Printf("Gemini lỗi ở đoạn %d: %v\n", idx+1, err)
			continue
		}

		clean := services.CleanModelJSON(rawResp)

		// Parse JSON
		type QA struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		}
		var arr []QA
		if err := json.Unmarshal([]byte(clean), &arr); err != nil {
			fmt.Printf("Parse JSON lỗi ở đoạn %d: %v\n", idx+1, err)
			continue
		}

		for _, qa := range arr {
			if qa.Front == "" || qa.Back == "" {
				continue
			}
			fc := models.Flashcard{
				UserID:     userUUID,
				DocumentID: doc.ID,
				FrontText:  qa.Front,
				BackText:   qa.Back,
				SourceText: chunk,
				ChunkIndex: idx,
			}
			if err := db.Create(&fc).Error; err == nil {
				allFlashcards = append(allFlashcards, fc)
			}
		}
	}

	if len(allFlashcards) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Không tạo được flashcard nào",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Tạo flashcards thành công từ Gemini (nhiều đoạn)",
		"total":      len(allFlashcards),
		"chunks":     len(chunks),
		"flashcards": allFlashcards,
	})
}

// GET /api/documents/:id/flashcards
func GetFlashcardsByDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	documentIDStr := c.Param("id")

	userUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	documentUUID, err := uuid.Parse(documentIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_id không hợp lệ"})
		return
	}

	var flashcards []models.Flashcard
	if err := db.
		Where("user_id = ? AND document_id = ?", userUUID, documentUUID).
		Order("created_at ASC").
		Find(&flashcards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy flashcards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  flashcards,
		"count": len(flashcards),
	})
}

// ======== TẠO / XOÁ FLASHCARD THỦ CÔNG ========
type CreateFlashcardInput struct {
	FrontText string `json:"front_text" binding:"required"`
	BackText  string `json:"back_text" binding:"required"`
}

// POST /api/documents/:id/flashcards/manual
func CreateFlashcard(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	documentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_id không hợp lệ"})
		return
	}

	var input CreateFlashcardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var doc models.Document
	if err := db.First(&doc, "id = ?", documentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy document"})
		return
	}

	card := models.Flashcard{
		UserID:     userUUID,
		DocumentID: documentUUID,
		FrontText:  input.FrontText,
		BackText:   input.BackText,
	}
	if err := db.Create(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được flashcard"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Đã tạo flashcard", "flashcard": card})
}

// DELETE /api/flashcards/:id
func DeleteFlashcard(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	cardUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flashcard_id không hợp lệ"})
		return
	}

	result := db.Where("id = ? AND user_id = ?", cardUUID, userUUID).Delete(&models.Flashcard{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không xoá được flashcard"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy flashcard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã xoá flashcard"})
}

// ======== ÔN TẬP FLASHCARD ========
type ReviewFlashcardInput struct {
	Outcome string `json:"outcome" binding:"required"` // known | unknown
}

// POST /api/flashcards/:id/review
// Ghi lại kết quả 1 lần ôn để thống kê tiến độ học.
func ReviewFlashcard(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userUUID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	cardUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flashcard_id không hợp lệ"})
		return
	}

	var input ReviewFlashcardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Outcome != models.ReviewKnown && input.Outcome != models.ReviewUnknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "outcome phải là known hoặc unknown"})
		return
	}

	var card models.Flashcard
	if err := db.Where("id = ? AND user_id = ?", cardUUID, userUUID).First(&card).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy flashcard"})
		return
	}

	review := models.FlashcardReview{
		UserID:      userUUID,
		FlashcardID: cardUUID,
		Outcome:     input.Outcome,
		ReviewedAt:  time.Now(),
	}
	if err := db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được kết quả ôn tập"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã ghi nhận kết quả ôn tập", "review": review})
}
