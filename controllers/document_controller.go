package controllers

import (
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/config"
	"github.com/vnkhanh/notes-ninja-backend/models"
	"github.com/vnkhanh/notes-ninja-backend/services"
	"github.com/vnkhanh/notes-ninja-backend/utils"
	"github.com/vnkhanh/notes-ninja-backend/ws"
)

func UploadDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	// Convert user_id từ string -> uuid.UUID
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
		return
	}
	if file.Size > 20*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá 20MB"})
		return
	}

	ext := filepath.Ext(file.Filename)
	inputType, err := services.GetInputTypeFromExt(ext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Môn học đính kèm (không bắt buộc)
	var subjectID *uuid.UUID
	if sidStr := c.PostForm("subject_id"); sidStr != "" {
		sid, perr := uuid.Parse(sidStr)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id không hợp lệ"})
			return
		}
		var subject models.Subject
		if err := db.First(&subject, "id = ?", sid).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Môn học không tồn tại"})
			return
		}
		subjectID = &sid
	}

	docID := uuid.New()

	publicURL, err := utils.UploadFileToSupabase(file, docID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload Supabase", "details": err.Error()})
		return
	}

	// Tạo Document
	doc := models.Document{
		ID:           docID,
		OriginalName: file.Filename,
		FilePath:     publicURL,
		FileType:     strings.TrimPrefix(ext, "."),
		FileSize:     file.Size,
		Status:       "Đã tải lên",
		UserID:       uid,
		SubjectID:    subjectID,
	}
	if err := db.Create(&doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tài liệu", "details": err.Error()})
		return
	}

	ws.BroadcastDocumentListChanged()
	ws.SendStatusUpdate(docID.String(), doc.Status, 0.1, "")

	// Trích xuất + làm sạch chạy nền, client theo dõi qua websocket
	go processDocument(doc, services.InputSource{
		Type:       inputType,
		FileHeader: file,
	})

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Tải lên thành công, đang xử lý nội dung",
		"tai_lieu": doc,
	})
}

// processDocument chạy pipeline trích xuất -> làm sạch cho 1 tài liệu.
// Mỗi bước đều phát trạng thái qua websocket, xong thì tạo thông báo cho chủ tài liệu.
func processDocument(doc models.Document, source services.InputSource) {
	db := config.DB
	docID := doc.ID.String()

	fail := func(stage string, err error) {
		log.Printf("Xử lý tài liệu %s lỗi ở bước %s: %v", docID, stage, err)
		db.Model(&doc).Update("status", "Lỗi")
		ws.SendStatusUpdate(docID, "Lỗi", 1, err.Error())
		ws.BroadcastDocumentListChanged()
	}

	db.Model(&doc).Update("status", "Đang trích xuất")
	ws.SendStatusUpdate(docID, "Đang trích xuất", 0.3, "")

	rawText, err := services.NormalizeInput(source)
	if err != nil {
		fail("trích xuất", err)
		return
	}

	cleaned, err := services.CleanTextPipeline(rawText)
	if err != nil {
		fail("làm sạch", err)
		return
	}

	db.Model(&doc).Updates(map[string]interface{}{
		"status":         "Đã trích xuất",
		"extracted_text": cleaned,
	})
	ws.SendStatusUpdate(docID, "Đã trích xuất", 0.8, "")

	now := time.Now()
	db.Model(&doc).Updates(map[string]interface{}{
		"status":       "Hoàn thành",
		"processed_at": &now,
	})
	ws.SendStatusUpdate(docID, "Hoàn thành", 1, "")
	ws.BroadcastDocumentListChanged()

	notifyDocumentDone(db, doc)
}

// notifyDocumentDone tạo thông báo + đẩy badge cho chủ tài liệu
func notifyDocumentDone(db *gorm.DB, doc models.Document) {
	relatedURL := "/documents/" + doc.ID.String()
	notif := models.Notification{
		UserID:     doc.UserID,
		Title:      "Tài liệu đã xử lý xong",
		Message:    "Tài liệu \"" + doc.OriginalName + "\" đã sẵn sàng để học",
		Type:       models.NotificationDocumentDone,
		DocumentID: &doc.ID,
		RelatedURL: &relatedURL,
	}
	if err := db.Create(&notif).Error; err != nil {
		log.Printf("Không tạo được thông báo cho user %s: %v", doc.UserID, err)
		return
	}

	var unread int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", doc.UserID, false).
		Count(&unread)
	ws.SendBadgeUpdate(doc.UserID.String(), unread)
}

func GetDocuments(c *gin.Context) {
	var documents []models.Document
	query := config.DB.Model(&models.Document{}).Preload("Subject")
	// Lấy userID và role từ context
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	var userUUID *uuid.UUID
	if userIDStr != "" {
		parsed, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
			return
		}
		userUUID = &parsed
	}

	// Phân quyền: admin xem tất cả, còn lại chỉ xem tài liệu của mình
	if role != string(models.RoleAdmin) {
		query = query.Where("user_id = ?", userUUID)
	}

	// lọc theo trạng thái
	if status := c.Query("status"); status != "" {
		switch status {
		case "Đã tải lên", "Đang trích xuất", "Đã trích xuất", "Hoàn thành", "Lỗi":
			query = query.Where("status = ?", status)
		}
	}

	// lọc theo môn học
	if sid := c.Query("subject_id"); sid != "" {
		query = query.Where("subject_id = ?", sid)
	}

	// tìm kiếm theo tên
	if search := c.Query("search"); search != "" {
		query = query.Where("original_name ILIKE ?", "%"+search+"%")
	}

	// phân trang
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số tài liệu"})
		return
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  documents,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func GetDocumentDetail(c *gin.Context) {
	id := c.Param("id")
	var document models.Document
	if err := config.DB.Preload("Subject").First(&document, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}
	c.JSON(http.StatusOK, document)
}

// Delete Tài liệu
func DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	documentID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var doc models.Document
	if err := config.DB.First(&doc, "id = ?", documentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	// Chỉ chủ tài liệu hoặc admin được xóa
	role := c.GetString("role")
	if role != string(models.RoleAdmin) && doc.UserID.String() != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền xóa tài liệu này"})
		return
	}

	if err := config.DB.Delete(&models.Document{}, "id = ?", documentID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa tài liệu"})
		return
	}

	// Xóa file trên storage, lỗi chỉ log
	if err := utils.DeleteFileFromSupabase(doc.FilePath); err != nil {
		log.Printf("Không xóa được file Supabase của tài liệu %s: %v", documentID, err)
	}

	ws.BroadcastDocumentListChanged()
	c.JSON(http.StatusOK, gin.H{"message": "Xóa thành công"})
}
