package models

import (
	"time"

	"github.com/google/uuid"
)

type Flashcard struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE;" json:"user"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	Document   Document  `gorm:"constraint:OnDelete:CASCADE;" json:"document"`
	FrontText  string    `gorm:"type:text;not null" json:"front_text"`
	BackText   string    `gorm:"type:text;not null" json:"back_text"`

	SourceText string `gorm:"type:text" json:"source_text"` // đoạn tài liệu gốc (để hiển thị trích dẫn)
	ChunkIndex int    `json:"chunk_index"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
