package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/config"
	"github.com/vnkhanh/notes-ninja-backend/models"
)

// Input cho Create / Update
type CreateSubjectInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /api/admin/subjects
func CreateSubject(c *gin.Context) {
	var input CreateSubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học bắt buộc"})
		return
	}

	userUUID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	// === Kiểm tra trùng tên ===
	var count int64
	config.DB.Model(&models.Subject{}).Where("LOWER(name) = LOWER(?)", input.Name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học đã tồn tại"})
		return
	}

	subject := models.Subject{
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   userUUID,
		Status:      true, // mặc định active
		Slug:        slug.Make(input.Name),
	}

	if err := config.DB.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo môn học"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo môn học thành công",
		"subject": subject,
	})
}

// GET /api/admin/subjects
func GetSubjects(c *gin.Context) {
	db := config.DB

	role := c.GetString("role")
	userIDStr := c.GetString("user_id")

	var subjects []models.Subject
	query := db.Model(&models.Subject{})

	// Giáo viên chỉ thấy môn của mình, admin thấy tất cả
	if role == string(models.RoleTeacher) {
		query = query.Where("subjects.created_by = ?", userIDStr)
	}

	// Lọc theo trạng thái
	if status := c.Query("status"); status != "" {
		switch status {
		case "true":
			query = query.Where("subjects.status = ?", true)
		case "false":
			query = query.Where("subjects.status = ?", false)
		}
	}

	// Tìm kiếm theo tên môn học
	if search := c.Query("search"); search != "" {
		query = query.Where("subjects.name ILIKE ?", "%"+search+"%")
	}

	// Lọc theo ngày tạo
	fromDateStr := c.Query("from_date")
	toDateStr := c.Query("to_date")
	if fromDateStr != "" || toDateStr != "" {
		const layout = "2006-01-02"
		if fromDateStr != "" && toDateStr != "" {
			fromDate, err1 := time.Parse(layout, fromDateStr)
			toDate, err2 := time.Parse(layout, toDateStr)
			if err1 == nil && err2 == nil {
				toDate = toDate.Add(24 * time.Hour)
				query = query.Where("subjects.created_at BETWEEN ? AND ?", fromDate, toDate)
			}
		} else if fromDateStr != "" {
			fromDate, err := time.Parse(layout, fromDateStr)
			if err == nil {
				query = query.Where("subjects.created_at >= ?", fromDate)
			}
		} else if toDateStr != "" {
			toDate, err := time.Parse(layout, toDateStr)
			if err == nil {
				toDate = toDate.Add(24 * time.Hour)
				query = query.Where("subjects.created_at < ?", toDate)
			}
		}
	}

	// Phân trang
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tổng số môn học"})
		return
	}

	if err := query.
		Order("subjects.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  subjects,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/admin/subjects/:id
func GetSubjectDetail(c *gin.Context) {
	idParam := c.Param("id")
	subjectID, err := uuid.Parse(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := config.DB.
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, subject_id, original_name, file_type, status, created_at").
				Order("created_at DESC")
		}).
		First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject})
}

type UpdateSubjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
}

// PUT /api/admin/subjects/:id
func UpdateSubject(c *gin.Context) {
	var input UpdateSubjectInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ"})
		return
	}

	idParam := c.Param("id")
	subjectID, err := uuid.Parse(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := config.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Môn học không tồn tại"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học không được trống"})
		return
	}

	slugValue := slug.Make(name)
	var count int64
	config.DB.Model(&models.Subject{}).
		Where("(LOWER(TRIM(name)) = ? OR slug = ?) AND id <> ?", strings.ToLower(name), slugValue, subjectID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học đã tồn tại"})
		return
	}

	subject.Name = name
	subject.Slug = slugValue
	if input.Description != nil {
		subject.Description = *input.Description
	}
	if input.Status != nil {
		subject.Status = *input.Status
	}

	if err := config.DB.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cập nhật môn học thất bại"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật thành công",
		"subject": subject,
	})
}

// DELETE /api/admin/subjects/:id
func DeleteSubject(c *gin.Context) {
	idParam := c.Param("id")
	subjectID, err := uuid.Parse(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := config.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	// Không xóa được khi còn tài liệu gắn với môn học
	var docCount int64
	config.DB.Model(&models.Document{}).Where("subject_id = ?", subjectID).Count(&docCount)
	if docCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Không thể xóa '%s' vì môn học này có %d tài liệu liên quan", subject.Name, docCount),
		})
		return
	}

	if err := config.DB.Delete(&subject).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa môn học thành công"})
}

// PATCH /api/admin/subjects/:id/toggle-status
func ToggleSubjectStatus(c *gin.Context) {
	idParam := c.Param("id")
	subjectID, err := uuid.Parse(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := config.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	// đảo trạng thái
	subject.Status = !subject.Status

	if err := config.DB.Save(&subject).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật trạng thái thành công",
		"subject": subject,
	})
}

// Lấy danh sách Subject đang hoạt động
func GetActiveSubjects(c *gin.Context) {
	var subjects []models.Subject
	query := config.DB.Model(&models.Subject{})

	if err := query.Where("status = ?", true).Order("created_at desc").Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách môn học"})
		return
	}

	c.JSON(http.StatusOK, subjects)
}

/*========= USER ==========*/
// Môn học phổ biến
type SubjectStats struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	DocumentCount int    `json:"document_count"`
	QuizCount     int    `json:"quiz_count"`
}

// API: Lấy 5 môn học phổ biến (status = true)
func GetPopularSubjects(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var results []SubjectStats

	// Truy vấn gộp dữ liệu: subject → document → quiz set
	query := `
	SELECT
		s.id,
		s.name,
		s.slug,
		COUNT(DISTINCT d.id) AS document_count,
		COUNT(DISTINCT qs.id) AS quiz_count
	FROM subjects s
	LEFT JOIN documents d ON d.subject_id = s.id AND d.status = 'Hoàn thành'
	LEFT JOIN quiz_sets qs ON qs.document_id = d.id
	WHERE s.status = TRUE
	GROUP BY s.id, s.name, s.slug
	ORDER BY document_count DESC
	LIMIT 5;
	`

	if err := db.Raw(query).Scan(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Không thể lấy danh sách môn học phổ biến",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lấy danh sách môn học phổ biến thành công",
		"data":    results,
	})
}

// Chi tiết môn học theo slug, kèm tài liệu đã xử lý xong
func GetSubjectBySlug(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	slugParam := c.Param("slug")

	// Khách chỉ thấy tài liệu đã hoàn thành; user đăng nhập thấy thêm
	// tài liệu của chính mình đang xử lý dở
	userIDStr := c.GetString("user_id")

	var subject models.Subject
	if err := db.
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			q := db.Order("created_at DESC")
			if userIDStr != "" {
				return q.Where("documents.status = ? OR documents.user_id = ?", "Hoàn thành", userIDStr)
			}
			return q.Where("documents.status = ?", "Hoàn thành")
		}).
		Where("slug = ? AND status = ?", slugParam, true).
		First(&subject).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Không tìm thấy môn học",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lấy chi tiết môn học thành công",
		"data":    subject,
	})
}
