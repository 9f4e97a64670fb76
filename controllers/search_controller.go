package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/notes-ninja-backend/models"
)

// -----------------------------
// Struct trả về
// -----------------------------
type SearchFullResult struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`             // document | subject
	Status string `json:"status,omitempty"` // trạng thái xử lý của tài liệu
	Slug   string `json:"slug,omitempty"`   // subject slug
}

type SearchFullResponse struct {
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
	Results []SearchFullResult `json:"results"`
}

type SearchResult struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"` // document
	Name  string `json:"name,omitempty"`  // subject
	Type  string `json:"type"`            // document | subject
	Slug  string `json:"slug,omitempty"`  // subject slug
}

// -----------------------------
// Search Full (search page)
// -----------------------------
func SearchFullHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query không được để trống"})
			return
		}

		// Phân trang
		page := 1
		perPage := 10
		if p := c.Query("page"); p != "" {
			if val, err := strconv.Atoi(p); err == nil && val > 0 {
				page = val
			}
		}
		if pp := c.Query("per_page"); pp != "" {
			if val, err := strconv.Atoi(pp); err == nil && val > 0 {
				perPage = val
			}
		}
		offset := (page - 1) * perPage

		userID := c.GetString("user_id")

		var documents []models.Document
		var subjects []models.Subject
		var totalDocuments, totalSubjects int64

		// Tìm tài liệu của chính user
		documentQuery := db.Model(&models.Document{}).
			Where("user_id = ?", userID).
			Where("LOWER(original_name) LIKE ?", "%"+strings.ToLower(query)+"%")
		documentQuery.Count(&totalDocuments)
		documentQuery.Offset(offset).Limit(perPage).Find(&documents)

		// Tìm subjects
		subjectQuery := db.Model(&models.Subject{}).
			Where("status = ?", true).
			Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
		subjectQuery.Count(&totalSubjects)
		subjectQuery.Offset(offset).Limit(perPage).Find(&subjects)

		total := totalDocuments + totalSubjects

		// Map results
		var results []SearchFullResult
		for _, d := range documents {
			results = append(results, SearchFullResult{
				ID:     d.ID.String(),
				Title:  d.OriginalName,
				Type:   "document",
				Status: d.Status,
			})
		}
		for _, s := range subjects {
			results = append(results, SearchFullResult{
				ID:   s.ID.String(),
				Name: s.Name,
				Type: "subject",
				Slug: s.Slug,
			})
		}

		c.JSON(http.StatusOK, SearchFullResponse{
			Total:   total,
			Page:    page,
			PerPage: perPage,
			Results: results,
		})
	}
}

// -----------------------------
// Search Autocomplete (gợi ý khi nhập)
// -----------------------------
func SearchAutocomplete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query không được để trống"})
			return
		}

		limit := 10
		if l := c.Query("limit"); l != "" {
			if val, err := strconv.Atoi(l); err == nil && val > 0 {
				limit = val
			}
		}

		userID := c.GetString("user_id")

		var documents []models.Document
		var subjects []models.Subject

		// Tìm tài liệu của chính user
		if err := db.Select("id, original_name").
			Where("user_id = ?", userID).
			Where("LOWER(original_name) LIKE ?", "%"+strings.ToLower(query)+"%").
			Limit(limit).
			Find(&documents).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tìm tài liệu"})
			return
		}

		// Tìm subject, trả slug
		if err := db.Select("id, name, slug").
			Where("status = ?", true).
			Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%").
			Limit(limit).
			Find(&subjects).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tìm môn học"})
			return
		}

		var results []SearchResult
		for _, d := range documents {
			results = append(results, SearchResult{
				ID:    d.ID.String(),
				Title: d.OriginalName,
				Type:  "document",
			})
		}
		for _, s := range subjects {
			results = append(results, SearchResult{
				ID:   s.ID.String(),
				Name: s.Name,
				Slug: s.Slug,
				Type: "subject",
			})
		}

		c.JSON(http.StatusOK, results)
	}
}
