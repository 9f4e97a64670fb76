package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/notes-ninja-backend/config"
	"github.com/vnkhanh/notes-ninja-backend/models"
)

type CreateNoteRequest struct {
	DocumentID uuid.UUID `json:"document_id" binding:"required"`
	Content    string    `json:"content" binding:"required"`
	Position   int       `json:"position" binding:"required"`
}

// currentUserID lấy user_id an toàn (middleware thường set kiểu string)
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	switch id := v.(type) {
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	case uuid.UUID:
		return id, true
	default:
		return uuid.Nil, false
	}
}

// Tạo ghi chú
func CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy user_id"})
		return
	}

	var doc models.Document
	if err := config.DB.First(&doc, "id = ?", req.DocumentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	note := models.Note{
		UserID:     userID,
		DocumentID: req.DocumentID,
		Content:    req.Content,
		Position:   &req.Position,
	}

	if err := config.DB.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo ghi chú"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// Lấy tất cả ghi chú của mình theo tài liệu
func GetNotesByDocument(c *gin.Context) {
	documentID := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy user_id"})
		return
	}

	var notes []models.Note
	if err := config.DB.
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Order("position ASC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy ghi chú"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// Cập nhật nội dung ghi chú
type UpdateNoteRequest struct {
	Content  string `json:"content" binding:"required"`
	Position *int   `json:"position"`
}

func UpdateNote(c *gin.Context) {
	noteID := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy user_id"})
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var note models.Note
	if err := config.DB.
		Where("id = ? AND user_id = ?", noteID, userID).
		First(&note).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy ghi chú"})
		return
	}

	note.Content = req.Content
	if req.Position != nil {
		note.Position = req.Position
	}
	if err := config.DB.Save(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật ghi chú"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

// Xoá ghi chú (chỉ xoá nếu đúng user)
func DeleteNote(c *gin.Context) {
	noteID := c.Param("id")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy user_id"})
		return
	}

	if err := config.DB.
		Where("id = ? AND user_id = ?", noteID, userID).
		Delete(&models.Note{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xoá ghi chú"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã xoá ghi chú"})
}
