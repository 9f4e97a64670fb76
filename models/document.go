package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"` // người tải lên
	User          User       `gorm:"constraint:OnDelete:CASCADE;" json:"user"`
	SubjectID     *uuid.UUID `gorm:"type:uuid" json:"subject_id,omitempty"`
	Subject       *Subject   `json:"subject,omitempty"`
	OriginalName  string     `gorm:"size:255;not null" json:"original_name"`
	FilePath      string     `gorm:"type:text;not null" json:"file_path"`
	FileType      string     `gorm:"size:50" json:"file_type"`
	FileSize      int64      `json:"file_size"` // bytes
	ExtractedText string     `gorm:"type:text" json:"extracted_text"`
	Status        string     `gorm:"size:30;default:'Đang tải lên'" json:"status"` // Đang tải lên|Đã tải lên|Đang trích xuất|Đã trích xuất|Hoàn thành|Lỗi
	ProcessedAt   *time.Time `json:"processed_at"`                                 // thời gian hoàn thành trích xuất
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Summaries []Summary `json:"summaries,omitempty"`
	Notes     []Note    `json:"notes,omitempty"`
	QuizSets  []QuizSet `json:"quiz_sets,omitempty"`
}
